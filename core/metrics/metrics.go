// Package metrics exposes Prometheus collectors shared by the bot runtime.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/filestore-bot/core/logger"
)

var (
	// Updates counts handled Telegram updates.
	Updates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_updates_total",
			Help: "Total number of handled Telegram updates",
		},
		[]string{"update", "status"}, // status: ok|error
	)

	// UpdateDuration tracks handler latency.
	UpdateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filestore_update_duration_seconds",
			Help:    "Update handling duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
		},
		[]string{"update"},
	)

	// MessagesSent counts outgoing messages by delivery path.
	MessagesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_messages_sent_total",
			Help: "Total number of messages sent or edited by the bot",
		},
		[]string{"kind", "status"}, // kind: send|reply|edit|queue
	)

	// PromptOutcomes counts settled prompt sessions.
	PromptOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_prompt_outcomes_total",
			Help: "Settled prompt sessions by outcome",
		},
		[]string{"status"}, // fulfilled|timeout|cancelled|superseded
	)

	// PromptsWaiting reports the number of open prompt sessions.
	PromptsWaiting = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "filestore_prompts_waiting",
			Help: "Number of prompt sessions waiting for a reply",
		},
	)

	// MenuActions counts admin menu callbacks.
	MenuActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_menu_actions_total",
			Help: "Admin menu actions by key and result",
		},
		[]string{"action", "status"}, // status: ok|fail|skip
	)

	// SettingsCache counts settings cache lookups.
	SettingsCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filestore_settings_cache_total",
			Help: "Settings cache lookups by result",
		},
		[]string{"result"}, // hit|miss
	)

	// LinksGenerated counts deep links produced by the generator.
	LinksGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "filestore_links_generated_total",
			Help: "Deep links produced for stored posts",
		},
	)
)

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(Updates)
		prometheus.MustRegister(UpdateDuration)
		prometheus.MustRegister(MessagesSent)
		prometheus.MustRegister(PromptOutcomes)
		prometheus.MustRegister(PromptsWaiting)
		prometheus.MustRegister(MenuActions)
		prometheus.MustRegister(SettingsCache)
		prometheus.MustRegister(LinksGenerated)
	})
}

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes the scrape endpoint on addr until ctx is done.
func Serve(ctx context.Context, addr, path string) error {
	if path == "" {
		path = "/metrics"
	}
	Init()

	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.With("component", "metrics").Info("metrics listening",
			slog.String("event", "startup"),
			slog.String("listen", addr),
			slog.String("path", path),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
