package scraper

import (
	"context"
	"time"

	"github.com/vitor-labes/category-scraper/internal/browser"
	"github.com/vitor-labes/category-scraper/internal/domain"
)

type Scraper interface {
	Scrape(ctx context.Context, url string) ([]domain.Product, error)
}

// Session is the part of the browser the scraper drives. *browser.Session
// implements it.
type Session interface {
	Open(ctx context.Context, url string) error
	URL() string
	ExecuteScript(ctx context.Context, js string) error
	FindAll(ctx context.Context, selector string) ([]browser.Element, error)
	WaitForElement(ctx context.Context, selector string, timeout time.Duration) (browser.Element, error)
	Close() error
}

type SessionFactory func(ctx context.Context) (Session, error)
