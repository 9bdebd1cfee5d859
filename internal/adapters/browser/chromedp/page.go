package chromedp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

const urlPollInterval = 250 * time.Millisecond

type queryFunc func(sel any, opts ...chromedp.QueryOption) chromedp.QueryAction

// Page drives one tab. Calls take the caller's context for cancellation and
// run against the tab's chromedp context.
type Page struct {
	tabCtx context.Context
	cancel context.CancelFunc
	opts   Options
}

var _ ports.Page = (*Page)(nil)

func newPage(tabCtx context.Context, cancel context.CancelFunc, opts Options) *Page {
	return &Page{tabCtx: tabCtx, cancel: cancel, opts: opts}
}

// bind derives a tab context that also ends when ctx ends or timeout passes.
func (p *Page) bind(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	stop := context.AfterFunc(ctx, cancel)

	if timeout <= 0 {
		return runCtx, func() {
			stop()
			cancel()
		}
	}

	timed, cancelTimed := context.WithTimeout(runCtx, timeout)
	return timed, func() {
		cancelTimed()
		stop()
		cancel()
	}
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := p.bind(ctx, p.opts.ActionTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return p.fail(ctx, fmt.Errorf("navigate to %s: %w", url, err))
	}
	return nil
}

func (p *Page) WaitFor(ctx context.Context, locator ports.Locator, state ports.ElementState, timeout time.Duration) (bool, error) {
	wait, err := waitAction(state)
	if err != nil {
		return false, err
	}

	runCtx, cancel := p.bind(ctx, timeout)
	defer cancel()

	sel, opts, found, err := p.locate(runCtx, locator, state != ports.StateDetached && state != ports.StateHidden)
	if err != nil {
		return p.timedOut(ctx, err)
	}
	if !found {
		// The enclosing frame is gone, so is everything inside it.
		return true, nil
	}

	if err := chromedp.Run(runCtx, wait(sel, opts...)); err != nil {
		return p.timedOut(ctx, err)
	}
	return true, nil
}

func (p *Page) WaitForURL(ctx context.Context, prefix string, timeout time.Duration) (bool, error) {
	runCtx, cancel := p.bind(ctx, timeout)
	defer cancel()

	for {
		var location string
		if err := chromedp.Run(runCtx, chromedp.Location(&location)); err != nil {
			return p.timedOut(ctx, err)
		}
		if strings.HasPrefix(location, prefix) {
			return true, nil
		}

		select {
		case <-runCtx.Done():
			return p.timedOut(ctx, runCtx.Err())
		case <-time.After(urlPollInterval):
		}
	}
}

func (p *Page) Click(ctx context.Context, locator ports.Locator) error {
	return p.act(ctx, locator, p.opts.ActionTimeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
		return chromedp.Click(sel, append(opts, chromedp.NodeVisible)...)
	})
}

func (p *Page) Clear(ctx context.Context, locator ports.Locator) error {
	return p.act(ctx, locator, p.opts.ActionTimeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
		return chromedp.Clear(sel, opts...)
	})
}

// Type focuses the element and sends one key event per rune, pausing
// perCharDelay between them like a person typing.
func (p *Page) Type(ctx context.Context, locator ports.Locator, text string, perCharDelay time.Duration) error {
	timeout := p.opts.ActionTimeout + time.Duration(len([]rune(text)))*perCharDelay
	return p.act(ctx, locator, timeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
		return typingTasks(sel, opts, text, perCharDelay)
	})
}

func (p *Page) ReadText(ctx context.Context, locator ports.Locator) (string, error) {
	var text string
	err := p.act(ctx, locator, p.opts.ReadTimeout, func(sel string, opts []chromedp.QueryOption) chromedp.Action {
		return chromedp.Text(sel, &text, opts...)
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (p *Page) ClickAt(ctx context.Context, x, y float64) error {
	runCtx, cancel := p.bind(ctx, p.opts.ActionTimeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.MouseClickXY(x, y)); err != nil {
		return p.fail(ctx, fmt.Errorf("click at %.0f,%.0f: %w", x, y, err))
	}
	return nil
}

func (p *Page) Viewport(ctx context.Context) (ports.Viewport, error) {
	runCtx, cancel := p.bind(ctx, p.opts.ReadTimeout)
	defer cancel()

	var dims []int
	if err := chromedp.Run(runCtx, chromedp.Evaluate(`[window.innerWidth, window.innerHeight]`, &dims)); err != nil {
		return ports.Viewport{}, p.fail(ctx, fmt.Errorf("read viewport: %w", err))
	}
	if len(dims) != 2 {
		return ports.Viewport{}, fmt.Errorf("read viewport: unexpected result %v", dims)
	}

	return ports.Viewport{Width: dims[0], Height: dims[1]}, nil
}

func (p *Page) OnResponse(ctx context.Context, filter ports.ResponseFilter) (ports.PendingResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return watchResponses(p.tabCtx, filter), nil
}

func (p *Page) Close() error {
	err := chromedp.Cancel(p.tabCtx)
	p.cancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("close page: %w", err)
	}
	return nil
}

func (p *Page) act(ctx context.Context, locator ports.Locator, timeout time.Duration, build func(sel string, opts []chromedp.QueryOption) chromedp.Action) error {
	runCtx, cancel := p.bind(ctx, timeout)
	defer cancel()

	sel, opts, _, err := p.locate(runCtx, locator, true)
	if err == nil {
		err = chromedp.Run(runCtx, build(sel, opts))
	}
	if err != nil {
		return p.fail(ctx, fmt.Errorf("%s: %w", locator, err))
	}
	return nil
}

// locate turns a locator into a chromedp selector. Inside a frame, CSS
// selectors run against the frame's document through FromNode, and XPath or
// text locators are evaluated against that document only. With waitFrame
// false a missing frame is reported through found instead of being waited
// for.
func (p *Page) locate(runCtx context.Context, locator ports.Locator, waitFrame bool) (sel string, opts []chromedp.QueryOption, found bool, err error) {
	sel, by := selectorFor(locator)
	if locator.Frame == "" {
		return sel, []chromedp.QueryOption{by}, true, nil
	}

	var frames []*cdp.Node
	frameQuery := []chromedp.QueryOption{chromedp.ByQuery}
	if !waitFrame {
		frameQuery = []chromedp.QueryOption{chromedp.ByQueryAll, chromedp.AtLeast(0)}
	}
	if err := chromedp.Run(runCtx, chromedp.Nodes(locator.Frame, &frames, frameQuery...)); err != nil {
		return "", nil, false, err
	}
	if len(frames) == 0 {
		return sel, nil, false, nil
	}

	if locator.Kind == ports.SelectorCSS {
		return sel, []chromedp.QueryOption{by, chromedp.FromNode(frames[0])}, true, nil
	}
	return sel, []chromedp.QueryOption{
		chromedp.ByFunc(byDocumentXPath(sel, cdpDocumentQuery{})),
		chromedp.FromNode(frames[0]),
	}, true, nil
}

// timedOut maps a deadline hit on the wait's own timeout to (false, nil).
func (p *Page) timedOut(ctx context.Context, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return false, nil
	}
	return false, err
}

func (p *Page) fail(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}

func waitAction(state ports.ElementState) (queryFunc, error) {
	switch state {
	case ports.StateAttached:
		return chromedp.WaitReady, nil
	case ports.StateVisible:
		return chromedp.WaitVisible, nil
	case ports.StateHidden:
		return chromedp.WaitNotVisible, nil
	case ports.StateDetached:
		return chromedp.WaitNotPresent, nil
	default:
		return nil, fmt.Errorf("unsupported element state %q", state)
	}
}

func typingTasks(sel string, opts []chromedp.QueryOption, text string, delay time.Duration) chromedp.Tasks {
	tasks := chromedp.Tasks{chromedp.Focus(sel, opts...)}
	for i, r := range []rune(text) {
		if i > 0 && delay > 0 {
			tasks = append(tasks, chromedp.Sleep(delay))
		}
		tasks = append(tasks, chromedp.KeyEvent(string(r)))
	}
	return tasks
}
