package prompt

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = Key{ChatID: -100, UserID: 111}

func awaitAsync(s *Session, ctx context.Context) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() { ch <- s.Await(ctx) }()
	return ch
}

func recv(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case out := <-ch:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("await did not return")
		return Outcome{}
	}
}

func TestDeliverFulfills(t *testing.T) {
	m := NewManager()
	s := m.Open(context.Background(), testKey, time.Minute, KindNumeric)
	ch := awaitAsync(s, context.Background())

	require.True(t, m.Deliver(testKey, Reply{Text: "222", MessageID: 9}))
	out := recv(t, ch)
	assert.Equal(t, Fulfilled, out.Status)
	assert.Equal(t, "222", out.Reply.Text)
	assert.Equal(t, 9, out.Reply.MessageID)
	assert.False(t, m.Waiting(testKey))
}

func TestOpenSupersedesWaitingSession(t *testing.T) {
	m := NewManager()
	first := m.Open(context.Background(), testKey, time.Minute, KindText)
	firstCh := awaitAsync(first, context.Background())

	second := m.Open(context.Background(), testKey, time.Minute, KindText)
	assert.Equal(t, Superseded, recv(t, firstCh).Status)
	assert.Equal(t, 1, m.Len())

	// The reply belongs to the newest session only.
	require.True(t, m.Deliver(testKey, Reply{Text: "hello"}))
	out := second.Await(context.Background())
	assert.Equal(t, Fulfilled, out.Status)
	assert.Equal(t, Superseded, first.Await(context.Background()).Status)
}

func TestAtMostOneWaitingPerKeyUnderContention(t *testing.T) {
	m := NewManager()
	const n = 50
	sessions := make([]*Session, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sessions[i] = m.Open(context.Background(), testKey, time.Minute, KindText)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, m.Len())

	waiting := 0
	for _, s := range sessions {
		select {
		case <-s.Done():
			assert.Equal(t, Superseded, s.Await(context.Background()).Status)
		default:
			waiting++
		}
	}
	assert.Equal(t, 1, waiting)
	require.True(t, m.Cancel(testKey))
}

func TestAwaitTimesOut(t *testing.T) {
	m := NewManager()
	timeout := 30 * time.Millisecond
	s := m.Open(context.Background(), testKey, timeout, KindText)

	start := time.Now()
	out := s.Await(context.Background())
	elapsed := time.Since(start)

	assert.Equal(t, TimedOut, out.Status)
	assert.GreaterOrEqual(t, elapsed, timeout)
	assert.Less(t, elapsed, timeout+time.Second)
	assert.False(t, m.Waiting(testKey))
}

func TestLateReplyIsIgnored(t *testing.T) {
	m := NewManager()
	s := m.Open(context.Background(), testKey, 10*time.Millisecond, KindText)
	require.Equal(t, TimedOut, s.Await(context.Background()).Status)

	assert.False(t, m.Deliver(testKey, Reply{Text: "too late"}))
	assert.Equal(t, TimedOut, s.Await(context.Background()).Status)
}

func TestCancel(t *testing.T) {
	m := NewManager()
	assert.False(t, m.Cancel(testKey), "cancel without a session is a no-op")

	s := m.Open(context.Background(), testKey, time.Minute, KindURL)
	ch := awaitAsync(s, context.Background())
	assert.True(t, m.Cancel(testKey))
	assert.Equal(t, Cancelled, recv(t, ch).Status)
	assert.False(t, m.Cancel(testKey))
	assert.False(t, m.Deliver(testKey, Reply{Text: "https://example.com"}))
}

func TestAwaitContextEndCancels(t *testing.T) {
	m := NewManager()
	s := m.Open(context.Background(), testKey, time.Minute, KindText)
	ctx, cancel := context.WithCancel(context.Background())
	ch := awaitAsync(s, ctx)
	cancel()
	assert.Equal(t, Cancelled, recv(t, ch).Status)
	assert.Equal(t, 0, m.Len())
}

func TestKeysAreIndependent(t *testing.T) {
	m := NewManager()
	other := Key{ChatID: testKey.ChatID, UserID: 222}
	a := m.Open(context.Background(), testKey, time.Minute, KindText)
	b := m.Open(context.Background(), other, time.Minute, KindText)
	assert.Equal(t, 2, m.Len())

	require.True(t, m.Deliver(other, Reply{Text: "b"}))
	assert.Equal(t, Fulfilled, b.Await(context.Background()).Status)

	select {
	case <-a.Done():
		t.Fatal("session for another key must stay waiting")
	default:
	}
	assert.True(t, m.Cancel(testKey))
}

func TestNonPositiveTimeoutUsesDefault(t *testing.T) {
	m := NewManager()
	s := m.Open(context.Background(), testKey, 0, KindText)
	assert.Equal(t, DefaultTimeout, s.Timeout)
	assert.NotEmpty(t, s.ID)
	m.Cancel(testKey)
}

func TestSessionCancelOnlyAffectsItself(t *testing.T) {
	m := NewManager()
	first := m.Open(context.Background(), testKey, time.Minute, KindText)
	second := m.Open(context.Background(), testKey, time.Minute, KindText)

	assert.False(t, first.Cancel())
	assert.True(t, m.Waiting(testKey))

	require.True(t, second.Cancel())
	assert.Equal(t, Cancelled, second.Await(context.Background()).Status)
	assert.False(t, m.Waiting(testKey))
	assert.False(t, second.Cancel())
}
