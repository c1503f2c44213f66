package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitor-labes/category-scraper/internal/config"
	"github.com/vitor-labes/category-scraper/internal/domain"
	"github.com/vitor-labes/category-scraper/internal/metrics"
)

var ErrNoProducts = errors.New("nenhum produto válido encontrado")

const scrollScript = `window.scrollTo({ top: %d, behavior: "smooth" });`

type ScrollCollector struct {
	cfg       *config.Config
	extractor *Extractor
	open      SessionFactory
	sleep     func(ctx context.Context, d time.Duration) error
}

func NewScrollCollector(cfg *config.Config, open SessionFactory) *ScrollCollector {
	return &ScrollCollector{
		cfg:       cfg,
		extractor: NewExtractor(cfg.Selectors),
		open:      open,
		sleep:     sleepContext,
	}
}

// Scrape opens a session on url, dismisses the cookie banner and collects
// products. The session is closed on every return path.
func (c *ScrollCollector) Scrape(ctx context.Context, url string) ([]domain.Product, error) {
	session, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			slog.Warn("erro ao fechar sessão", "error", cerr)
		}
	}()

	slog.Info("acessando página", "url", url)
	if err := session.Open(ctx, url); err != nil {
		return nil, err
	}

	AcceptConsent(ctx, session, c.cfg.Selectors.ConsentButton, c.cfg.ConsentTimeout)

	return c.Collect(ctx, session)
}

// Collect runs the scroll loop on an already opened page. It stops once
// TargetCount products are held or MaxScrollAttempts scrolls were made.
func (c *ScrollCollector) Collect(ctx context.Context, session Session) ([]domain.Product, error) {
	var collected []domain.Product
	seen := make(map[string]bool)
	attempts := 0
	lastCount := 0

	for len(collected) < c.cfg.TargetCount && attempts < c.cfg.MaxScrollAttempts {
		startTime := time.Now()

		offset := (attempts + 1) * c.cfg.ScrollDistance
		if err := session.ExecuteScript(ctx, fmt.Sprintf(scrollScript, offset)); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("erro ao rolar página", "attempt", attempts+1, "error", err)
		}

		if err := c.waitForContent(ctx, session, lastCount); err != nil {
			return nil, err
		}

		elements, err := session.FindAll(ctx, c.cfg.Selectors.Card)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("erro ao listar cards", "attempt", attempts+1, "error", err)
		}
		lastCount = len(elements)

		var fresh []domain.Product
		duplicates, rejected := 0, 0
		baseURL := session.URL()

		for _, element := range elements {
			html, err := element.InnerHTML()
			if err != nil {
				rejected++
				slog.Warn("falha ao ler produto", "error", err)
				continue
			}

			product, err := c.extractor.Extract(html, baseURL)
			if err != nil {
				rejected++
				slog.Warn("falha ao extrair produto", "error", err)
				continue
			}

			key := product.UniqueKey()
			if seen[key] {
				duplicates++
				continue
			}
			seen[key] = true

			fresh = append(fresh, product)
			slog.Info("produto coletado", "title", product.Title, "price", product.Price)
		}

		collected = append(collected, fresh...)
		attempts++

		duration := time.Since(startTime).Seconds()
		metrics.ScrollAttempts.Inc()
		metrics.ScrollPassDuration.Observe(duration)
		metrics.ProductsScraped.Add(float64(len(fresh)))
		metrics.CardsRejected.Add(float64(rejected))
		metrics.DuplicatesSkipped.Add(float64(duplicates))

		slog.Info("rolagem processada",
			"attempt", attempts,
			"offset", offset,
			"cards", len(elements),
			"new_products", len(fresh),
			"duplicates", duplicates,
			"rejected", rejected,
			"total", len(collected),
		)
	}

	if len(collected) > c.cfg.TargetCount {
		collected = collected[:c.cfg.TargetCount]
	}

	if len(collected) == 0 {
		return nil, fmt.Errorf("%w após %d rolagens", ErrNoProducts, attempts)
	}

	return collected, nil
}

// waitForContent gives lazy-loaded cards time to render. By default it is a
// fixed pause; with PollForIncrease it returns as soon as the card count grows,
// never waiting longer than the same pause.
func (c *ScrollCollector) waitForContent(ctx context.Context, session Session, lastCount int) error {
	if !c.cfg.PollForIncrease || c.cfg.PollInterval <= 0 {
		return c.sleep(ctx, c.cfg.ScrollDelay)
	}

	for waited := time.Duration(0); waited < c.cfg.ScrollDelay; waited += c.cfg.PollInterval {
		if err := c.sleep(ctx, c.cfg.PollInterval); err != nil {
			return err
		}
		elements, err := session.FindAll(ctx, c.cfg.Selectors.Card)
		if err == nil && len(elements) > lastCount {
			return nil
		}
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
