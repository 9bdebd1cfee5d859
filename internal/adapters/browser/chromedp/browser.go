package chromedp

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/chromedp/chromedp"
)

const (
	DefaultWidth  = 900
	DefaultHeight = 788

	defaultActionTimeout = 30 * time.Second
	defaultReadTimeout   = 5 * time.Second
)

type Options struct {
	Headless    bool
	ExecPath    string
	UserDataDir string
	Width       int
	Height      int
	// ActionTimeout bounds clicks and typing on elements that never show up.
	ActionTimeout time.Duration
	ReadTimeout   time.Duration
}

func DefaultOptions() Options {
	return Options{
		Headless:      true,
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		ActionTimeout: defaultActionTimeout,
		ReadTimeout:   defaultReadTimeout,
	}
}

// Browser owns one Chrome process. Every page it hands out lives in its own
// browser context so accounts never share cookies.
type Browser struct {
	opts Options

	allocCtx      context.Context
	cancelAlloc   context.CancelFunc
	browserCtx    context.Context
	cancelBrowser context.CancelFunc

	mu     sync.Mutex
	closed bool
	logger *slog.Logger
}

var _ ports.Browser = (*Browser)(nil)

// Launch starts Chrome and keeps it running until Close.
func Launch(ctx context.Context, opts Options) (*Browser, error) {
	opts = withDefaults(opts)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocatorOptions(opts)...)
	log := logger.Named("browser")
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, args ...any) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	log.Info("browser started", slog.Bool("headless", opts.Headless), slog.Int("width", opts.Width), slog.Int("height", opts.Height))

	return &Browser{
		opts:          opts,
		allocCtx:      allocCtx,
		cancelAlloc:   cancelAlloc,
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		logger:        log,
	}, nil
}

func (b *Browser) NewPage(ctx context.Context) (ports.Page, error) {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, fmt.Errorf("browser is closed")
	}

	tabCtx, cancelTab := chromedp.NewContext(b.browserCtx, chromedp.WithNewBrowserContext())

	setupCtx, cancelSetup := context.WithCancel(tabCtx)
	stop := context.AfterFunc(ctx, cancelSetup)
	err := chromedp.Run(setupCtx, chromedp.EmulateViewport(int64(b.opts.Width), int64(b.opts.Height)))
	stop()
	cancelSetup()
	if err != nil {
		cancelTab()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return newPage(tabCtx, cancelTab, b.opts), nil
}

func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	err := chromedp.Cancel(b.browserCtx)
	b.cancelBrowser()
	b.cancelAlloc()
	if err != nil {
		return fmt.Errorf("close chrome: %w", err)
	}

	return nil
}

func withDefaults(opts Options) Options {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = defaultActionTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = defaultReadTimeout
	}
	return opts
}

func allocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	allocOpts := make([]chromedp.ExecAllocatorOption, 0, len(chromedp.DefaultExecAllocatorOptions)+4)
	allocOpts = append(allocOpts, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}
	return allocOpts
}
