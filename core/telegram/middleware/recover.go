package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"

	"github.com/m3rciful/filestore-bot/core/logger"
	tghelpers "github.com/m3rciful/filestore-bot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// ErrPanic wraps a value recovered from a handler panic.
var ErrPanic = errors.New("handler panic")

// PanicReporter receives recovered panics, e.g. an error tracker.
type PanicReporter func(ctx context.Context, err error)

var panicReporter atomic.Pointer[PanicReporter]

// SetPanicReporter installs r for every RecoverMiddleware. nil removes it.
func SetPanicReporter(r PanicReporter) {
	if r == nil {
		panicReporter.Store(nil)
		return
	}
	panicReporter.Store(&r)
}

// RecoverMiddleware turns a handler panic into an ErrPanic error, logged with
// the update's context and handed to the panic reporter.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			err = fmt.Errorf("%w: %v", ErrPanic, r)
			ctx := tghelpers.BuildContext(c)
			logger.Error(ctx, "tg", "tg.panic",
				slog.String("status", "fail"),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				slog.String("stack", string(debug.Stack())),
			)
			if rep := panicReporter.Load(); rep != nil {
				(*rep)(ctx, err)
			}
		}()
		return next(c)
	}
}
