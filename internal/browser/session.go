package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/playwright-community/playwright-go"
	"github.com/vitor-labes/category-scraper/internal/config"
)

var ErrTimeout = errors.New("tempo esgotado aguardando elemento")

// Element is one DOM node matched on the page.
type Element interface {
	InnerHTML() (string, error)
	Click(timeout time.Duration) error
}

// Session owns a single browser page for the whole run. Close must always be
// called, it releases the page, context, browser and driver.
type Session struct {
	cfg     *config.Config
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page
}

// LaunchArgs is the fixed Chromium profile.
func LaunchArgs(cfg *config.Config) []string {
	return []string{
		"--disable-gpu",
		fmt.Sprintf("--window-size=%d,%d", cfg.WindowWidth, cfg.WindowHeight),
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-web-security",
		"--allow-running-insecure-content",
		"--disable-blink-features=AutomationControlled",
		"--user-agent=" + cfg.UserAgent,
	}
}

// New starts the driver and the browser, retrying with exponential backoff.
func New(ctx context.Context, cfg *config.Config) (*Session, error) {
	var s *Session

	op := func() error {
		var err error
		s, err = start(cfg)
		if err != nil {
			slog.Warn("falha ao iniciar sessão do navegador", "error", err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(cfg.SessionRetries)), ctx)

	if err := backoff.Retry(op, bo); err != nil {
		return nil, fmt.Errorf("erro ao iniciar navegador: %w", err)
	}
	return s, nil
}

func start(cfg *config.Config) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("erro ao iniciar playwright: %w", err)
	}
	s := &Session{cfg: cfg, pw: pw}

	if cfg.CDPURL != "" {
		s.browser, err = pw.Chromium.ConnectOverCDP(cfg.CDPURL)
	} else {
		s.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless:          playwright.Bool(cfg.Headless),
			Args:              LaunchArgs(cfg),
			IgnoreDefaultArgs: []string{"--enable-automation"},
		})
	}
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("erro ao abrir navegador: %w", err)
	}

	s.bctx, err = s.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String(cfg.UserAgent),
		IgnoreHttpsErrors: playwright.Bool(true),
		Viewport: &playwright.Size{
			Width:  cfg.WindowWidth,
			Height: cfg.WindowHeight,
		},
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("erro ao criar contexto: %w", err)
	}

	s.page, err = s.bctx.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("erro ao criar página: %w", err)
	}

	slog.Info("sessão do navegador iniciada",
		"headless", cfg.Headless,
		"cdp", cfg.CDPURL != "",
	)
	return s, nil
}

func (s *Session) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(s.cfg.NavigationTimeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("erro ao navegar para %s: %w", url, err)
	}
	return nil
}

func (s *Session) URL() string {
	return s.page.URL()
}

func (s *Session) ExecuteScript(ctx context.Context, js string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.page.Evaluate(js); err != nil {
		return fmt.Errorf("erro ao executar script: %w", err)
	}
	return nil
}

func (s *Session) FindAll(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items, err := s.page.Locator(selector).All()
	if err != nil {
		return nil, fmt.Errorf("erro ao obter itens %q: %w", selector, err)
	}

	elements := make([]Element, 0, len(items))
	for _, item := range items {
		elements = append(elements, locatorElement{item})
	}
	return elements, nil
}

// WaitForElement waits until the first match of selector is visible.
func (s *Session) WaitForElement(ctx context.Context, selector string, timeout time.Duration) (Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	locator := s.page.Locator(selector).First()
	err := locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return nil, fmt.Errorf("%w: %s", ErrTimeout, selector)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao aguardar %q: %w", selector, err)
	}
	return locatorElement{locator}, nil
}

// Close releases everything that was acquired, in reverse order. Safe on a
// partially started session.
func (s *Session) Close() error {
	var errs []error
	if s.bctx != nil {
		errs = append(errs, s.bctx.Close())
	}
	if s.browser != nil {
		errs = append(errs, s.browser.Close())
	}
	if s.pw != nil {
		errs = append(errs, s.pw.Stop())
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("erro ao encerrar navegador: %w", err)
	}
	slog.Debug("sessão do navegador encerrada")
	return nil
}

type locatorElement struct {
	locator playwright.Locator
}

func (e locatorElement) InnerHTML() (string, error) {
	return e.locator.InnerHTML()
}

func (e locatorElement) Click(timeout time.Duration) error {
	err := e.locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return fmt.Errorf("%w: clique", ErrTimeout)
	}
	return err
}
