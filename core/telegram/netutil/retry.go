// Package netutil classifies Telegram API failures for retry decisions.
package netutil

import (
	"errors"
	"net"
	"net/url"

	tele "gopkg.in/telebot.v4"
)

// ShouldRetry reports whether err is a transient failure: a timeout, a
// refused or reset dial, or a 5xx answer from the Bot API. Flood errors are
// left to the caller, which knows how long Telegram asked it to wait.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && urlErr.Err != err {
			return ShouldRetry(urlErr.Err)
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Timeout() || opErr.Op == "dial" || ShouldRetry(opErr.Err)
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
