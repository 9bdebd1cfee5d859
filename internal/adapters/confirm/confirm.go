// Package confirm holds the ways of answering the wallet's signing prompt.
// The prompt renders in a closed shadow root, so neither strategy can read it;
// both click where its confirm button sits in a 900x788 viewport.
package confirm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

const (
	StrategyBlind  = "blind"
	StrategySignal = "signal"

	DefaultSignalURL = "https://universal-api.particle.network/"
	// SignalRPCMethod is the JSON-RPC call the wallet makes once the user
	// operation is ready to be signed.
	SignalRPCMethod = "universal_createCrossChainUserOperation"
)

var (
	ExpectedViewport = ports.Viewport{Width: 900, Height: 788}
	ConfirmPoint     = Point{X: 546, Y: 652}
)

type Point struct {
	X float64
	Y float64
}

// BlindClick waits for the prompt to settle and clicks the confirm button
// position. It always reports the prompt as present.
type BlindClick struct {
	clock    ports.Clock
	settle   time.Duration
	viewport ports.Viewport
	point    Point
	logger   *slog.Logger
}

var _ ports.ConfirmationSurface = (*BlindClick)(nil)

func NewBlindClick(clock ports.Clock, settle time.Duration) *BlindClick {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &BlindClick{
		clock:    clock,
		settle:   settle,
		viewport: ExpectedViewport,
		point:    ConfirmPoint,
		logger:   logger.Named("confirm"),
	}
}

// Arm has nothing to watch: the blind click only needs the prompt to settle.
func (b *BlindClick) Arm(ctx context.Context, page ports.Page) (ports.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &blindConfirmation{surface: b, page: page}, nil
}

type blindConfirmation struct {
	surface *BlindClick
	page    ports.Page
}

func (c *blindConfirmation) Confirm(ctx context.Context) (bool, error) {
	b := c.surface
	if err := b.clock.Sleep(ctx, b.settle); err != nil {
		return false, err
	}

	if err := clickConfirm(ctx, c.page, b.viewport, b.point); err != nil {
		return false, err
	}

	b.logger.Debug("signing prompt clicked", slog.Float64("x", b.point.X), slog.Float64("y", b.point.Y))
	return true, nil
}

func (c *blindConfirmation) Release() {}

// Signal waits for the wallet to POST the cross-chain user operation to the
// universal API before clicking. No such request within the timeout means
// the prompt never opened and Confirm returns false.
type Signal struct {
	clock    ports.Clock
	url      string
	method   string
	timeout  time.Duration
	settle   time.Duration
	viewport ports.Viewport
	point    Point
	logger   *slog.Logger
}

var _ ports.ConfirmationSurface = (*Signal)(nil)

func NewSignal(clock ports.Clock, url string, timeout, settle time.Duration) *Signal {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if url == "" {
		url = DefaultSignalURL
	}

	return &Signal{
		clock:    clock,
		url:      url,
		method:   SignalRPCMethod,
		timeout:  timeout,
		settle:   settle,
		viewport: ExpectedViewport,
		point:    ConfirmPoint,
		logger:   logger.Named("confirm"),
	}
}

// Arm starts watching for the signing request. It must run before the click
// that sends the transfer, which is what fires the request.
func (s *Signal) Arm(ctx context.Context, page ports.Page) (ports.Confirmation, error) {
	pending, err := page.OnResponse(ctx, s.matches)
	if err != nil {
		return nil, fmt.Errorf("watch signing request: %w", err)
	}
	return &signalConfirmation{surface: s, page: page, pending: pending}, nil
}

type signalConfirmation struct {
	surface *Signal
	page    ports.Page
	pending ports.PendingResponse
}

func (c *signalConfirmation) Confirm(ctx context.Context) (bool, error) {
	s := c.surface
	defer c.Release()

	if _, err := c.pending.Await(ctx, s.timeout); err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		s.logger.Info("no signing request observed", slog.Duration("timeout", s.timeout), slog.String("error", err.Error()))
		return false, nil
	}

	// The request precedes the prompt being attached to the DOM.
	if err := s.clock.Sleep(ctx, s.settle); err != nil {
		return false, err
	}

	if err := clickConfirm(ctx, c.page, s.viewport, s.point); err != nil {
		return false, err
	}
	return true, nil
}

func (c *signalConfirmation) Release() {
	c.pending.Cancel()
}

func (s *Signal) matches(info ports.ResponseInfo) bool {
	if !info.OK() || !strings.EqualFold(info.Method, http.MethodPost) || info.URL != s.url {
		return false
	}
	return rpcMethod(info.PostData) == s.method
}

// rpcMethod reads the method of a JSON-RPC request body, or "" when the body
// is not one.
func rpcMethod(body string) string {
	var call struct {
		Method string `json:"method"`
	}
	if err := json.Unmarshal([]byte(body), &call); err != nil {
		return ""
	}
	return call.Method
}

// New picks a surface by its configured strategy name.
func New(strategy string, clock ports.Clock, settle, signalTimeout time.Duration) (ports.ConfirmationSurface, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyBlind:
		return NewBlindClick(clock, settle), nil
	case StrategySignal:
		return NewSignal(clock, DefaultSignalURL, signalTimeout, time.Second), nil
	default:
		return nil, fmt.Errorf("unknown confirmation strategy %q (want %s or %s)", strategy, StrategyBlind, StrategySignal)
	}
}

func clickConfirm(ctx context.Context, page ports.Page, want ports.Viewport, at Point) error {
	got, err := page.Viewport(ctx)
	if err != nil {
		return fmt.Errorf("read viewport: %w", err)
	}
	if got != want {
		return fmt.Errorf("viewport %dx%d, want %dx%d: confirm button position is unknown", got.Width, got.Height, want.Width, want.Height)
	}

	if err := page.ClickAt(ctx, at.X, at.Y); err != nil {
		return fmt.Errorf("click signing prompt: %w", err)
	}
	return nil
}
