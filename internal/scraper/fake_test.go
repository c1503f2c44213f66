package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitor-labes/category-scraper/internal/browser"
)

type fakeElement struct {
	html         string
	err          error
	clickErr     error
	clicked      int
	clickTimeout time.Duration
}

func (e *fakeElement) InnerHTML() (string, error) {
	return e.html, e.err
}

func (e *fakeElement) Click(timeout time.Duration) error {
	e.clicked++
	e.clickTimeout = timeout
	return e.clickErr
}

// fakeSession returns passes[n-1] after the n-th scroll; the last pass repeats.
type fakeSession struct {
	url         string
	passes      [][]browser.Element
	scripts     []string
	scrollErr   error
	findErr     error
	openErr     error
	consent     *fakeElement
	consentWait time.Duration
	waitTimeout time.Duration
	opened      []string
	closed      int
}

func (s *fakeSession) Open(ctx context.Context, url string) error {
	s.opened = append(s.opened, url)
	return s.openErr
}

func (s *fakeSession) URL() string {
	return s.url
}

func (s *fakeSession) ExecuteScript(ctx context.Context, js string) error {
	s.scripts = append(s.scripts, js)
	return s.scrollErr
}

func (s *fakeSession) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if len(s.passes) == 0 || len(s.scripts) == 0 {
		return nil, nil
	}
	i := len(s.scripts) - 1
	if i >= len(s.passes) {
		i = len(s.passes) - 1
	}
	return s.passes[i], nil
}

func (s *fakeSession) WaitForElement(ctx context.Context, selector string, timeout time.Duration) (browser.Element, error) {
	s.waitTimeout = timeout
	if s.consentWait > 0 {
		time.Sleep(s.consentWait)
	}
	if s.consent == nil {
		return nil, fmt.Errorf("%w: %s", browser.ErrTimeout, selector)
	}
	return s.consent, nil
}

func (s *fakeSession) Close() error {
	s.closed++
	return nil
}

func cardHTML(title, price, image, href string) string {
	return fmt.Sprintf(`<div class="product-card">
  <a class="product-card__media-link" href="%s"><img class="product-card__image" src="%s"></a>
  <h2><a class="product-card__title-link" href="%s">%s</a></h2>
  <span class="product-card__price">%s</span>
</div>`, href, image, href, title, price)
}

func card(title, price string) *fakeElement {
	return &fakeElement{html: cardHTML(title, price, "https://static.example.com/img/"+title+".jpg", "/p/"+title)}
}

func cards(titles ...string) []browser.Element {
	var out []browser.Element
	for _, title := range titles {
		out = append(out, card(title, "9,99 €"))
	}
	return out
}

var errBoom = errors.New("boom")

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}
