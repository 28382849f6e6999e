package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler lets keep out of every `of` events through. A zero ratio
// lets everything through.
type ratioSampler struct {
	mu   sync.Mutex
	keep int
	of   int
	n    int
}

func newRatioSampler(keep, of int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(keep, of)
	return s
}

// Set replaces the ratio and restarts the cycle.
func (s *ratioSampler) Set(keep, of int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if keep <= 0 || of <= 0 {
		keep, of = 0, 0
	}
	s.keep, s.of, s.n = min(keep, of), of, 0
}

// Allow reports whether the next event passes.
func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.of == 0 {
		return true
	}
	s.n = s.n%s.of + 1
	return s.n <= s.keep
}

// parseRatioSpec reads "k/n" or "n" (meaning 1/n). A zero or negative
// value disables sampling and yields 0, 0. ok is false when spec does not
// parse, so callers can keep their default.
func parseRatioSpec(spec string) (keep, of int, ok bool) {
	spec = strings.TrimSpace(spec)
	num, den, hasSlash := strings.Cut(spec, "/")
	if !hasSlash {
		num, den = "1", spec
	}
	k, err := strconv.Atoi(strings.TrimSpace(num))
	if err != nil {
		return 0, 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(den))
	if err != nil {
		return 0, 0, false
	}
	if k <= 0 || n <= 0 {
		return 0, 0, true
	}
	return k, n, true
}
