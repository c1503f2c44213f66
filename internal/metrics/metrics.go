package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Scraper
	ScrollAttempts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_scroll_attempts_total",
			Help: "Total number of scroll passes executed",
		},
	)

	ScrollPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_scroll_pass_duration_seconds",
			Help:    "Time taken by one scroll, wait and scan pass",
			Buckets: prometheus.DefBuckets,
		},
	)

	ProductsScraped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_products_scraped_total",
			Help: "Total number of valid unique products collected",
		},
	)

	CardsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_cards_rejected_total",
			Help: "Total number of product cards skipped as unreadable or invalid",
		},
	)

	DuplicatesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_duplicates_skipped_total",
			Help: "Total number of duplicate products skipped",
		},
	)

	ConsentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_cookie_consent_total",
			Help: "Cookie consent handling outcomes",
		},
		[]string{"outcome"},
	)

	ProductsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_products_emitted_total",
			Help: "Total number of products handed to an output sink",
		},
		[]string{"sink", "status"},
	)

	// Consumer
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "consumer_messages_processed_total",
			Help: "Total number of messages processed",
		},
		[]string{"status"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "consumer_message_processing_duration_seconds",
			Help:    "Time taken to process a message",
			Buckets: prometheus.DefBuckets,
		},
	)

	DatabaseInserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_inserts_total",
			Help: "Total number of product inserts",
		},
		[]string{"status"},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return http.ListenAndServe(addr, mux)
}
