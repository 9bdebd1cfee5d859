package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	return nil
}

func (c *fakeClock) sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

type waitCall struct {
	locator ports.Locator
	state   ports.ElementState
	timeout time.Duration
}

// fakePage is a scripted widget. Waits succeed and texts come from the texts
// map unless a hook overrides them.
type fakePage struct {
	mu sync.Mutex

	texts    map[ports.Locator]string
	viewport ports.Viewport
	feed     []byte
	feedErr  error

	waitHook func(call waitCall) (bool, error)
	textHook func(locator ports.Locator) (string, error)

	navigations []string
	clicks      []ports.Locator
	typed       []string
	waits       []waitCall
	clickedAt   [][2]float64
	closed      bool
}

func newFakePage() *fakePage {
	sel := DefaultWidgetSelectors()
	return &fakePage{
		texts: map[ports.Locator]string{
			sel.NetworkSwitcher: "Ethereum Sepolia",
			sel.UsdEstimate:     "≈0.01 USD",
			sel.FeeTokenName:    "USDG",
			sel.FeeAmount:       "-0.5",
			sel.FeeBalance:      "1,000.25",
		},
		viewport: ports.Viewport{Width: 900, Height: 788},
	}
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.navigations = append(p.navigations, url)
	return ctx.Err()
}

func (p *fakePage) WaitFor(ctx context.Context, locator ports.Locator, state ports.ElementState, timeout time.Duration) (bool, error) {
	call := waitCall{locator: locator, state: state, timeout: timeout}
	p.mu.Lock()
	p.waits = append(p.waits, call)
	hook := p.waitHook
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return false, err
	}
	if hook != nil {
		return hook(call)
	}
	return true, nil
}

func (p *fakePage) WaitForURL(ctx context.Context, _ string, _ time.Duration) (bool, error) {
	return true, ctx.Err()
}

func (p *fakePage) Click(ctx context.Context, locator ports.Locator) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clicks = append(p.clicks, locator)
	return ctx.Err()
}

func (p *fakePage) Clear(ctx context.Context, _ ports.Locator) error {
	return ctx.Err()
}

func (p *fakePage) Type(ctx context.Context, _ ports.Locator, text string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.typed = append(p.typed, text)
	return ctx.Err()
}

func (p *fakePage) ReadText(ctx context.Context, locator ports.Locator) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	hook := p.textHook
	text, ok := p.texts[locator]
	p.mu.Unlock()

	if hook != nil {
		return hook(locator)
	}
	if !ok {
		return "", errors.New("element not found: " + locator.String())
	}
	return text, nil
}

func (p *fakePage) ClickAt(ctx context.Context, x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clickedAt = append(p.clickedAt, [2]float64{x, y})
	return ctx.Err()
}

func (p *fakePage) Viewport(ctx context.Context) (ports.Viewport, error) {
	return p.viewport, ctx.Err()
}

func (p *fakePage) OnResponse(_ context.Context, filter ports.ResponseFilter) (ports.PendingResponse, error) {
	return &fakePending{page: p, filter: filter}, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePage) clickCount(locator ports.Locator) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, clicked := range p.clicks {
		if clicked == locator {
			n++
		}
	}
	return n
}

type fakePending struct {
	page   *fakePage
	filter ports.ResponseFilter
}

func (f *fakePending) Await(ctx context.Context, _ time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.page.feedErr != nil {
		return nil, f.page.feedErr
	}
	if !f.filter(ports.ResponseInfo{URL: DefaultFeedURL + "?page=1", Method: "GET", Status: 200}) {
		return nil, ports.ErrWaitTimeout
	}
	return f.page.feed, nil
}

func (f *fakePending) Cancel() {}
