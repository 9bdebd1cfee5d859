package confirm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClock struct {
	slept []time.Duration
}

func (c *stubClock) Now() time.Time { return time.Time{} }

func (c *stubClock) Sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	return ctx.Err()
}

// stubPage implements only what the surfaces touch.
type stubPage struct {
	ports.Page

	viewport  ports.Viewport
	responses []ports.ResponseInfo
	clicks    []Point
	watches   []*stubPending
}

func (p *stubPage) Viewport(context.Context) (ports.Viewport, error) {
	return p.viewport, nil
}

func (p *stubPage) ClickAt(_ context.Context, x, y float64) error {
	p.clicks = append(p.clicks, Point{X: x, Y: y})
	return nil
}

func (p *stubPage) OnResponse(_ context.Context, filter ports.ResponseFilter) (ports.PendingResponse, error) {
	pending := &stubPending{responses: p.responses, filter: filter}
	p.watches = append(p.watches, pending)
	return pending, nil
}

type stubPending struct {
	responses []ports.ResponseInfo
	filter    ports.ResponseFilter
	canceled  int
}

func (s *stubPending) Await(ctx context.Context, _ time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, info := range s.responses {
		if s.filter(info) {
			return []byte(`{}`), nil
		}
	}
	return nil, ports.ErrWaitTimeout
}

func (s *stubPending) Cancel() { s.canceled++ }

func TestBlindClickSettlesThenClicksConfirmPoint(t *testing.T) {
	t.Parallel()

	clock := &stubClock{}
	page := &stubPage{viewport: ports.Viewport{Width: 900, Height: 788}}

	armed, err := NewBlindClick(clock, 3*time.Second).Arm(context.Background(), page)
	require.NoError(t, err)
	assert.Empty(t, clock.slept)

	ok, err := armed.Confirm(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []time.Duration{3 * time.Second}, clock.slept)
	assert.Equal(t, []Point{{X: 546, Y: 652}}, page.clicks)
}

func TestBlindClickRefusesUnexpectedViewport(t *testing.T) {
	t.Parallel()

	page := &stubPage{viewport: ports.Viewport{Width: 1280, Height: 720}}

	armed, err := NewBlindClick(&stubClock{}, time.Second).Arm(context.Background(), page)
	require.NoError(t, err)

	ok, err := armed.Confirm(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "viewport 1280x720, want 900x788")
	assert.Empty(t, page.clicks)
}

func TestSignalConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		responses []ports.ResponseInfo
		want      bool
	}{
		{
			name: "user operation posted",
			responses: []ports.ResponseInfo{{
				URL:      DefaultSignalURL,
				Method:   "POST",
				Status:   200,
				PostData: `{"jsonrpc":"2.0","id":3,"method":"universal_createCrossChainUserOperation","params":[]}`,
			}},
			want: true,
		},
		{
			name: "other calls to the universal api",
			responses: []ports.ResponseInfo{
				{URL: DefaultSignalURL, Method: "POST", Status: 200, PostData: `{"jsonrpc":"2.0","id":1,"method":"universal_getTokens","params":[]}`},
				{URL: DefaultSignalURL, Method: "POST", Status: 200},
				{URL: DefaultSignalURL, Method: "POST", Status: 200, PostData: "method=universal_createCrossChainUserOperation"},
			},
			want: false,
		},
		{
			name: "only unrelated traffic",
			responses: []ports.ResponseInfo{
				{URL: DefaultSignalURL, Method: "GET", Status: 200},
				{URL: DefaultSignalURL, Method: "POST", Status: 502},
				{URL: "https://rpc.particle.network/", Method: "POST", Status: 200},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			clock := &stubClock{}
			page := &stubPage{viewport: ExpectedViewport, responses: tt.responses}

			armed, err := NewSignal(clock, "", 20*time.Second, time.Second).Arm(context.Background(), page)
			require.NoError(t, err)

			ok, err := armed.Confirm(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.Equal(t, []Point{ConfirmPoint}, page.clicks)
				assert.Equal(t, []time.Duration{time.Second}, clock.slept)
			} else {
				assert.Empty(t, page.clicks)
			}
		})
	}
}

func TestSignalConfirmCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	armed, err := NewSignal(&stubClock{}, "", time.Second, time.Second).Arm(context.Background(), &stubPage{viewport: ExpectedViewport})
	require.NoError(t, err)

	_, err = armed.Confirm(ctx)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestSignalArmWatchesBeforeConfirm(t *testing.T) {
	t.Parallel()

	clock := &stubClock{}
	page := &stubPage{viewport: ExpectedViewport}

	armed, err := NewSignal(clock, "", time.Second, time.Second).Arm(context.Background(), page)
	require.NoError(t, err)
	require.Len(t, page.watches, 1)
	assert.Empty(t, page.clicks)
	assert.Empty(t, clock.slept)

	ok, err := armed.Confirm(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Len(t, page.watches, 1)
	assert.Positive(t, page.watches[0].canceled)
}

func TestSignalReleaseStopsWatching(t *testing.T) {
	t.Parallel()

	page := &stubPage{viewport: ExpectedViewport}
	armed, err := NewSignal(&stubClock{}, "", time.Second, time.Second).Arm(context.Background(), page)
	require.NoError(t, err)

	armed.Release()
	armed.Release()

	require.Len(t, page.watches, 1)
	assert.Equal(t, 2, page.watches[0].canceled)
	assert.Empty(t, page.clicks)
}

func TestNewSelectsStrategy(t *testing.T) {
	t.Parallel()

	surface, err := New("", nil, time.Second, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &BlindClick{}, surface)

	surface, err = New("Signal", nil, time.Second, time.Second)
	require.NoError(t, err)
	assert.IsType(t, &Signal{}, surface)

	_, err = New("telepathy", nil, time.Second, time.Second)
	assert.ErrorContains(t, err, "unknown confirmation strategy")
}
