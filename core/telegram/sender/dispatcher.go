package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/filestore-bot/core/logger"
	"github.com/m3rciful/filestore-bot/core/metrics"
	"github.com/m3rciful/filestore-bot/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

const component = "tg.sender"

var (
	// ErrQueueClosed is returned when enqueue is attempted after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")

	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on a single job, flood waits included.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 30 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound Telegram calls on a worker pool. Transient
// failures are retried with linear backoff; flood errors wait for the
// interval Telegram asks for.
type Dispatcher struct {
	opts   Options
	jobs   chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	errs   atomic.Uint64
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewDispatcher starts the worker pool. Zero options get defaults.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{
		opts:  opts,
		jobs:  make(chan job, opts.QueueSize),
		sleep: sleepCtx,
	}
	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run for asynchronous execution. run must be safe to
// repeat when retries are enabled.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs dropped after their last attempt.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) process(j job) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(j.ctx), d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = j.run(); err == nil {
			if attempt > 1 {
				logger.Info(j.ctx, component, "send.retry",
					append(jobAttrs(j),
						slog.String("status", "ok"),
						slog.Int("attempts", attempt),
						slog.Duration("duration", logger.RoundMS(time.Since(start))),
					)...,
				)
			}
			return
		}
		if attempt == attempts {
			break
		}

		wait, status, retry := d.backoff(err, attempt)
		if !retry {
			break
		}
		metrics.MessagesSent.WithLabelValues("queue", status).Inc()
		logger.Debug(j.ctx, component, "send.retry",
			append(jobAttrs(j),
				slog.String("status", status),
				slog.Int("attempts", attempt),
				slog.Int64("backoff_ms", wait.Milliseconds()),
			)...,
		)
		if serr := d.sleep(ctx, wait); serr != nil {
			err = serr
			break
		}
	}

	d.errs.Add(1)
	logger.Error(j.ctx, component, "send.fail",
		append(jobAttrs(j),
			slog.String("status", "fail"),
			slog.String("err", redact(err)),
			slog.String("err_code", classify(err)),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)...,
	)
}

// backoff decides whether err is worth another attempt and how long to wait.
func (d *Dispatcher) backoff(err error, attempt int) (time.Duration, string, bool) {
	var flood tele.FloodError
	if errors.As(err, &flood) {
		wait := time.Duration(flood.RetryAfter) * time.Second
		if wait <= 0 {
			wait = d.opts.RetryBackoff
		}
		return wait, "rate_limited", true
	}
	if !netutil.ShouldRetry(err) {
		return 0, "", false
	}
	return d.opts.RetryBackoff * time.Duration(attempt), "retry", true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func jobAttrs(j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("operation", j.endpoint))
	}
	return attrs
}

// redact strips bot tokens that Telegram client errors may embed in URLs.
func redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

// classify maps a send error onto a short code for logs.
func classify(err error) string {
	var (
		apiErr   *tele.Error
		flood    tele.FloodError
		group    tele.GroupError
		netErr   net.Error
		dnsErr   *net.DNSError
		opErr    *net.OpError
		alertErr tls.AlertError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &flood):
		return "flood"
	case errors.As(err, &group):
		return "chat_migrated"
	case errors.As(err, &apiErr):
		return httpClass(apiErr.Code)
	case errors.As(err, &dnsErr):
		return "dns"
	case errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.As(err, &opErr) && opErr.Op == "dial":
		return "dial"
	case errors.As(err, &alertErr):
		return "tls"
	}
	return "unknown"
}

func httpClass(code int) string {
	switch {
	case code == http.StatusTooManyRequests:
		return "flood"
	case code >= 500:
		return "http_5xx"
	case code >= 400:
		return "http_4xx"
	}
	return "unknown"
}
