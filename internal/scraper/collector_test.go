package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitor-labes/category-scraper/internal/browser"
	"github.com/vitor-labes/category-scraper/internal/config"
	"github.com/vitor-labes/category-scraper/internal/domain"
)

func newTestCollector(cfg *config.Config, session *fakeSession) *ScrollCollector {
	c := NewScrollCollector(cfg, func(ctx context.Context) (Session, error) {
		return session, nil
	})
	c.sleep = noSleep
	return c
}

func titles(products []domain.Product) []string {
	var out []string
	for _, p := range products {
		out = append(out, p.Title)
	}
	return out
}

func TestCollectStopsAtTargetAndTruncates(t *testing.T) {
	session := &fakeSession{
		url: "https://www.example.com/category",
		passes: [][]browser.Element{
			cards("A", "B"),
			cards("A", "B", "C", "D"),
			cards("A", "B", "C", "D", "E", "F"),
		},
	}
	c := newTestCollector(config.NewDefault(), session)

	products, err := c.Collect(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, titles(products))
	require.Len(t, session.scripts, 3)
	assert.Equal(t, `window.scrollTo({ top: 800, behavior: "smooth" });`, session.scripts[0])
	assert.Equal(t, `window.scrollTo({ top: 2400, behavior: "smooth" });`, session.scripts[2])
}

func TestCollectSucceedsWithFewerThanTarget(t *testing.T) {
	session := &fakeSession{passes: [][]browser.Element{cards("A", "B")}}
	c := newTestCollector(config.NewDefault(), session)

	products, err := c.Collect(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, titles(products))
	assert.Len(t, session.scripts, 10)
}

func TestCollectFailsWhenAllPricesAreZero(t *testing.T) {
	session := &fakeSession{passes: [][]browser.Element{{
		card("A", "0,00"),
		card("B", "0,00"),
	}}}
	c := newTestCollector(config.NewDefault(), session)

	products, err := c.Collect(context.Background(), session)
	assert.ErrorIs(t, err, ErrNoProducts)
	assert.Nil(t, products)
	assert.Len(t, session.scripts, 10)
}

func TestCollectNeverExceedsMaxAttempts(t *testing.T) {
	cfg := config.NewDefault()
	cfg.MaxScrollAttempts = 3
	session := &fakeSession{}
	c := newTestCollector(cfg, session)

	_, err := c.Collect(context.Background(), session)
	assert.ErrorIs(t, err, ErrNoProducts)
	assert.Len(t, session.scripts, 3)
}

func TestCollectKeepsFirstOfDuplicateTitles(t *testing.T) {
	session := &fakeSession{passes: [][]browser.Element{{
		card("A", "10,00"),
		&fakeElement{html: cardHTML("  A\n ", "20,00", "https://img.example.com/a2.jpg", "/p/a2")},
		card("a", "30,00"),
	}}}
	cfg := config.NewDefault()
	cfg.MaxScrollAttempts = 1
	c := newTestCollector(cfg, session)

	products, err := c.Collect(context.Background(), session)
	require.NoError(t, err)

	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].Title)
	assert.Equal(t, 10.0, products[0].Price)
	assert.Equal(t, "a", products[1].Title)
}

func TestCollectSkipsBrokenCards(t *testing.T) {
	session := &fakeSession{
		url: "https://www.example.com/c",
		passes: [][]browser.Element{{
			&fakeElement{err: errBoom},
			&fakeElement{html: `<div><span class="product-card__price">1,00</span></div>`},
			&fakeElement{html: cardHTML("NoImage", "5,00", "data:image/gif;base64,R0lGOD", "/p/x")},
			&fakeElement{html: cardHTML("NoLink", "5,00", "https://img.example.com/x.jpg", "")},
			&fakeElement{html: cardHTML("", "5,00", "https://img.example.com/x.jpg", "/p/y")},
			card("Free", "0"),
			&fakeElement{html: cardHTML("Relative", "3,50 €", "/img/r.jpg", "/p/r")},
		}},
	}
	cfg := config.NewDefault()
	cfg.MaxScrollAttempts = 1
	c := newTestCollector(cfg, session)

	products, err := c.Collect(context.Background(), session)
	require.NoError(t, err)

	require.Len(t, products, 1)
	assert.Equal(t, domain.Product{
		Title:      "Relative",
		Price:      3.5,
		ImageURL:   "https://www.example.com/img/r.jpg",
		ProductURL: "/p/r",
	}, products[0])
}

func TestCollectContinuesAfterScrollAndFindErrors(t *testing.T) {
	session := &fakeSession{scrollErr: errBoom, findErr: errBoom}
	cfg := config.NewDefault()
	cfg.MaxScrollAttempts = 2
	c := newTestCollector(cfg, session)

	_, err := c.Collect(context.Background(), session)
	assert.ErrorIs(t, err, ErrNoProducts)
	assert.Len(t, session.scripts, 2)
}

func TestCollectStopsOnCancel(t *testing.T) {
	session := &fakeSession{passes: [][]browser.Element{cards("A")}}
	c := newTestCollector(config.NewDefault(), session)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Collect(ctx, session)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCollectPollForIncrease(t *testing.T) {
	cfg := config.NewDefault()
	cfg.PollForIncrease = true
	cfg.MaxScrollAttempts = 2

	session := &fakeSession{passes: [][]browser.Element{
		cards("A", "B"),
		cards("A", "B"),
	}}
	c := newTestCollector(cfg, session)

	var sleeps []time.Duration
	c.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	products, err := c.Collect(context.Background(), session)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	// First pass grows from 0 at once; second never grows and uses the full budget.
	polls := int(cfg.ScrollDelay / cfg.PollInterval)
	assert.Len(t, sleeps, 1+polls)
	for _, d := range sleeps {
		assert.Equal(t, cfg.PollInterval, d)
	}
}

func TestScrapeClosesSessionOnEveryPath(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		consent := &fakeElement{}
		session := &fakeSession{consent: consent, passes: [][]browser.Element{cards("A")}}
		c := newTestCollector(config.NewDefault(), session)

		products, err := c.Scrape(context.Background(), "https://www.example.com/c")
		require.NoError(t, err)
		assert.Len(t, products, 1)
		assert.Equal(t, []string{"https://www.example.com/c"}, session.opened)
		assert.Equal(t, 1, consent.clicked)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("no products", func(t *testing.T) {
		session := &fakeSession{}
		c := newTestCollector(config.NewDefault(), session)

		_, err := c.Scrape(context.Background(), "https://www.example.com/c")
		assert.ErrorIs(t, err, ErrNoProducts)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("navigation error", func(t *testing.T) {
		session := &fakeSession{openErr: errBoom}
		c := newTestCollector(config.NewDefault(), session)

		_, err := c.Scrape(context.Background(), "https://www.example.com/c")
		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, session.scripts)
		assert.Equal(t, 1, session.closed)
	})

	t.Run("session error", func(t *testing.T) {
		c := NewScrollCollector(config.NewDefault(), func(ctx context.Context) (Session, error) {
			return nil, errBoom
		})

		_, err := c.Scrape(context.Background(), "https://www.example.com/c")
		assert.ErrorIs(t, err, errBoom)
	})
}
