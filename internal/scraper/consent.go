package scraper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/vitor-labes/category-scraper/internal/browser"
	"github.com/vitor-labes/category-scraper/internal/metrics"
)

// AcceptConsent clicks the cookie banner button if it becomes visible within
// timeout. Waiting and clicking share the same budget. A missing banner is
// normal and only logged.
func AcceptConsent(ctx context.Context, session Session, selector string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)

	button, err := session.WaitForElement(ctx, selector, timeout)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			slog.Info("nenhum modal de cookies encontrado ou já aceito", "reason", err)
		}
		metrics.ConsentOutcomes.WithLabelValues("absent").Inc()
		return
	}

	remaining := time.Until(deadline)
	if remaining <= 0 {
		slog.Info("não foi possível aceitar cookies", "error", browser.ErrTimeout)
		metrics.ConsentOutcomes.WithLabelValues("click_failed").Inc()
		return
	}

	if err := button.Click(remaining); err != nil {
		slog.Info("não foi possível aceitar cookies", "error", err)
		metrics.ConsentOutcomes.WithLabelValues("click_failed").Inc()
		return
	}

	slog.Info("cookies aceitos")
	metrics.ConsentOutcomes.WithLabelValues("accepted").Inc()
}
