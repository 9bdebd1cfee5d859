package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/bnema/pioneer-tx-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// platform stands in for the remote side: committed transfers show up in the
// ledger the next time it is read.
type platform struct {
	mu        sync.Mutex
	completed int
	runs      int
	loginErr  error
	// failAt makes the n-th workflow run (1-based) fail with failErr.
	failAt  int
	failErr error
}

func (p *platform) EnsureLoggedIn(context.Context, ports.Page, domain.Credential) error {
	return p.loginErr
}

func (p *platform) Run(ctx context.Context, _ ports.Page, _ domain.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.runs++
	if p.failAt > 0 && p.runs == p.failAt {
		return p.failErr
	}
	p.completed++
	return nil
}

func (p *platform) CompletedToday(context.Context, ports.Page, domain.Account) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed, nil
}

type countRecorder struct {
	mu     sync.Mutex
	counts []int
}

func (r *countRecorder) record(_ context.Context, _ string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts = append(r.counts, count)
	return nil
}

func (r *countRecorder) values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.counts...)
}

func sequence(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func testSessionConfig(quota int) SessionConfig {
	cfg := DefaultSessionConfig()
	cfg.Quota.Daily = quota
	return cfg
}

func TestSessionRunResumesFromLedgerFeed(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.feed = []byte(`{"data":[{"id":9,"type":4,"typeKey":"2024-05-07","point":"150"}]}`)
	clock := newFakeClock(time.Date(2024, 5, 7, 9, 0, 0, 0, time.UTC))

	workflow := &platform{}
	progress := mocks.NewMockProgressStore(t)
	recorder := &countRecorder{}
	progress.EXPECT().SetCount(mock.Anything, "alice", mock.Anything).RunAndReturn(recorder.record)

	session := NewSession(DefaultSessionConfig(), workflow, NewLedgerQuery(DefaultLedgerConfig(), clock), progress, nil, nil, clock)

	result, err := session.Run(context.Background(), page, testCredential)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Start)
	assert.Equal(t, 97, result.Committed)
	assert.Equal(t, 100, result.Final())
	assert.Equal(t, 97, workflow.runs)
	assert.Equal(t, sequence(4, 100), recorder.values())

	sleeps := clock.sleeps()
	require.Len(t, sleeps, 96)
	for _, d := range sleeps {
		assert.Equal(t, 5*time.Second, d)
	}
}

func TestSessionRunProgressIsStrictlyIncreasing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start int
		quota int
	}{
		{name: "fresh day", start: 0, quota: 5},
		{name: "partially done", start: 3, quota: 7},
		{name: "one left", start: 9, quota: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			workflow := &platform{completed: tt.start}
			progress := mocks.NewMockProgressStore(t)
			recorder := &countRecorder{}
			progress.EXPECT().SetCount(mock.Anything, "alice", mock.Anything).RunAndReturn(recorder.record)
			clock := newFakeClock(ledgerToday)

			session := NewSession(testSessionConfig(tt.quota), workflow, workflow, progress, nil, nil, clock)
			result, err := session.Run(context.Background(), newFakePage(), testCredential)
			require.NoError(t, err)

			assert.Equal(t, tt.quota-tt.start, workflow.runs)
			assert.Equal(t, sequence(tt.start+1, tt.quota), recorder.values())
			assert.Equal(t, tt.quota, result.Final())
			assert.Len(t, clock.sleeps(), tt.quota-tt.start-1)
		})
	}
}

func TestSessionRunQuotaAlreadyReached(t *testing.T) {
	t.Parallel()

	workflow := &platform{completed: 100}
	progress := mocks.NewMockProgressStore(t)

	session := NewSession(DefaultSessionConfig(), workflow, workflow, progress, nil, nil, newFakeClock(ledgerToday))
	result, err := session.Run(context.Background(), newFakePage(), testCredential)
	require.NoError(t, err)

	assert.Zero(t, workflow.runs)
	assert.Zero(t, result.Committed)
	assert.Equal(t, 100, result.Final())
}

func TestSessionRunStopsOnFatalError(t *testing.T) {
	t.Parallel()

	fatal := fmt.Errorf("%w: fee 12, balance 10", domain.ErrInsufficientBalance)
	workflow := &platform{failAt: 3, failErr: fatal}
	progress := mocks.NewMockProgressStore(t)
	recorder := &countRecorder{}
	progress.EXPECT().SetCount(mock.Anything, "alice", mock.Anything).RunAndReturn(recorder.record)

	session := NewSession(testSessionConfig(10), workflow, workflow, progress, nil, nil, newFakeClock(ledgerToday))
	result, err := session.Run(context.Background(), newFakePage(), testCredential)

	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.ErrorContains(t, err, "transfer 3/10")
	assert.Equal(t, 3, workflow.runs)
	assert.Equal(t, 2, result.Committed)
	assert.Equal(t, []int{1, 2}, recorder.values())
}

func TestSessionRunReinvokedAfterCrashCompletesExactlyQuota(t *testing.T) {
	t.Parallel()

	crash := fmt.Errorf("%w: send button vanished", domain.ErrWidgetStepFailed)
	workflow := &platform{failAt: 5, failErr: crash}
	progress := mocks.NewMockProgressStore(t)
	recorder := &countRecorder{}
	progress.EXPECT().SetCount(mock.Anything, "alice", mock.Anything).RunAndReturn(recorder.record)
	session := NewSession(testSessionConfig(8), workflow, workflow, progress, nil, nil, newFakeClock(ledgerToday))

	first, err := session.Run(context.Background(), newFakePage(), testCredential)
	require.Error(t, err)
	assert.Equal(t, 4, first.Final())

	second, err := session.Run(context.Background(), newFakePage(), testCredential)
	require.NoError(t, err)
	assert.Equal(t, 4, second.Start)
	assert.Equal(t, 8, second.Final())

	assert.Equal(t, 8, workflow.completed)
	assert.Equal(t, sequence(1, 8), recorder.values())
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestSessionRunToleratesProgressStoreFailures(t *testing.T) {
	t.Parallel()

	workflow := &platform{}
	progress := mocks.NewMockProgressStore(t)
	progress.EXPECT().SetCount(mock.Anything, "alice", mock.Anything).Return(errors.New("connection refused")).Times(3)

	session := NewSession(testSessionConfig(3), workflow, workflow, progress, nil, nil, newFakeClock(ledgerToday))
	result, err := session.Run(context.Background(), newFakePage(), testCredential)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Committed)
}

func TestSessionRunPublishesProgressEvents(t *testing.T) {
	t.Parallel()

	workflow := &platform{completed: 1}
	progress := mocks.NewMockProgressStore(t)
	progress.EXPECT().SetCount(mock.Anything, "alice", mock.Anything).Return(nil)
	events := mocks.NewMockEventPublisher(t)

	var published []ProgressEvent
	events.EXPECT().Publish(mock.Anything, DefaultProgressSubject, mock.Anything).
		RunAndReturn(func(_ context.Context, _ string, event any) error {
			// Round-trip through JSON the way the NATS publisher encodes it.
			raw, err := json.Marshal(event)
			require.NoError(t, err)
			var decoded ProgressEvent
			require.NoError(t, json.Unmarshal(raw, &decoded))
			published = append(published, decoded)
			return nil
		}).Times(2)

	session := NewSession(testSessionConfig(3), workflow, workflow, progress, events, nil, newFakeClock(ledgerToday))
	session.newRunID = func() string { return "run-1" }

	_, err := session.Run(context.Background(), newFakePage(), testCredential)
	require.NoError(t, err)

	require.Len(t, published, 2)
	assert.Equal(t, "run-1", published[0].RunID)
	assert.Equal(t, "alice", published[0].Account)
	assert.Equal(t, []int{2, 3}, []int{published[0].Count, published[1].Count})
	assert.Equal(t, 3, published[1].Quota)
}

func TestSessionRunFailsWhenSignInFails(t *testing.T) {
	t.Parallel()

	workflow := &platform{loginErr: fmt.Errorf("%w: wrong password", domain.ErrLoginFailed)}
	session := NewSession(testSessionConfig(3), workflow, workflow, mocks.NewMockProgressStore(t), nil, nil, newFakeClock(ledgerToday))

	_, err := session.Run(context.Background(), newFakePage(), testCredential)
	require.ErrorIs(t, err, domain.ErrLoginFailed)
	assert.Zero(t, workflow.runs)
}

func TestSessionRunRecordsMetrics(t *testing.T) {
	t.Parallel()

	workflow := &platform{}
	progress := mocks.NewMockProgressStore(t)
	progress.EXPECT().SetCount(mock.Anything, "alice", mock.Anything).Return(nil)
	metrics := &metricsSpy{}

	session := NewSession(testSessionConfig(2), workflow, workflow, progress, nil, metrics, newFakeClock(ledgerToday))
	_, err := session.Run(context.Background(), newFakePage(), testCredential)
	require.NoError(t, err)

	assert.Equal(t, []string{"ok", "ok"}, metrics.attemptOutcomes())
	assert.Equal(t, 2, metrics.lastCommitted())
}

type metricsSpy struct {
	mu        sync.Mutex
	attempts  []string
	committed []int
	sessions  map[string]string
}

var _ ports.MetricsRecorder = (*metricsSpy)(nil)

func (m *metricsSpy) ObserveAttempt(_ string, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, outcome)
}

func (m *metricsSpy) ObserveCommitted(_ string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = append(m.committed, count)
}

func (m *metricsSpy) ObserveSession(account string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions == nil {
		m.sessions = map[string]string{}
	}
	m.sessions[account] = outcome
}

func (m *metricsSpy) attemptOutcomes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.attempts...)
}

func (m *metricsSpy) lastCommitted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.committed) == 0 {
		return 0
	}
	return m.committed[len(m.committed)-1]
}

func (m *metricsSpy) sessionOutcome(account string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[account]
}
