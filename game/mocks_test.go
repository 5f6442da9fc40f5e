package game

import (
	"api/domain"
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

// --- PromptSource ---

type MockPromptSource struct {
	mock.Mock
}

func (m *MockPromptSource) RandomPrompt(ctx context.Context) (domain.Prompt, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Prompt), args.Error(1)
}

// --- ScoreStore ---

type MockScoreStore struct {
	mock.Mock
}

func (m *MockScoreStore) UpdateUserPoints(ctx context.Context, userId string, points int) error {
	args := m.Called(ctx, userId, points)
	return args.Error(0)
}

// --- Broadcaster ---

// fakeBroadcaster records every send so tests can assert on ordering
// and targeting. Target is the conn id for SendTo, "*" for SendToAll
// and "!<connId>" for SendToAllExcept.

type sentEvent struct {
	target  string
	event   string
	payload any
}

type fakeBroadcaster struct {
	mu   sync.Mutex
	sent []sentEvent
}

func (b *fakeBroadcaster) SendTo(connId string, event string, payload any) {
	b.record(connId, event, payload)
}

func (b *fakeBroadcaster) SendToAllExcept(connId string, event string, payload any) {
	b.record("!"+connId, event, payload)
}

func (b *fakeBroadcaster) SendToAll(event string, payload any) {
	b.record("*", event, payload)
}

func (b *fakeBroadcaster) record(target, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, sentEvent{target: target, event: event, payload: payload})
}

func (b *fakeBroadcaster) named(event string) []sentEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []sentEvent
	for _, s := range b.sent {
		if s.event == event {
			out = append(out, s)
		}
	}
	return out
}

func (b *fakeBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = nil
}

// --- Scheduler ---

// fakeScheduler captures scheduled callbacks so tests fire timers by
// hand. fire runs the callback even when it was cancelled, which is
// exactly the race a real time.AfterFunc can lose.

type scheduledCall struct {
	d         time.Duration
	fn        func()
	cancelled bool
}

type fakeScheduler struct {
	mu    sync.Mutex
	calls []*scheduledCall
}

func (s *fakeScheduler) Schedule(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := &scheduledCall{d: d, fn: fn}
	s.calls = append(s.calls, call)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if call.cancelled {
			return false
		}
		call.cancelled = true
		return true
	}
}

func (s *fakeScheduler) fire(i int) {
	s.mu.Lock()
	call := s.calls[i]
	s.mu.Unlock()
	call.fn()
}

func (s *fakeScheduler) at(i int) *scheduledCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[i]
}

func (s *fakeScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
