package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

type State string

const (
	StateStart                 State = "start"
	StateEnsureLoggedIn        State = "ensure_logged_in"
	StatePerformLogin          State = "perform_login"
	StateWidgetReady           State = "widget_ready"
	StateOpenWidget            State = "open_widget"
	StateSelectNetwork         State = "select_network"
	StateOpenTransferForm      State = "open_transfer_form"
	StateFillTransferForm      State = "fill_transfer_form"
	StateSubmitTransferForm    State = "submit_transfer_form"
	StateAwaitFeeReview        State = "await_fee_review"
	StateConfirmFeeReview      State = "confirm_fee_review"
	StateAwaitSignConfirmation State = "await_sign_confirmation"
	StateAwaitSuccess          State = "await_success"
	StateCloseSuccessModal     State = "close_success_modal"
	StateIdle                  State = "idle"
)

// retryEntry is where a retryable outcome re-enters the machine.
const retryEntry = StateFillTransferForm

const pollInterval = 250 * time.Millisecond

type WorkflowConfig struct {
	PointURL  string
	Transfer  domain.TransferSpec
	Selectors WidgetSelectors
	// MaxAttempts bounds the form-filling restarts within one Run.
	MaxAttempts    int
	TypeDelay      time.Duration
	LoginTimeout   time.Duration
	StepTimeout    time.Duration
	ReviewTimeout  time.Duration
	SuccessTimeout time.Duration
}

func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		PointURL:       DefaultPointURL,
		Transfer:       domain.DefaultTransferSpec(),
		Selectors:      DefaultWidgetSelectors(),
		MaxAttempts:    10,
		TypeDelay:      100 * time.Millisecond,
		LoginTimeout:   20 * time.Second,
		StepTimeout:    20 * time.Second,
		ReviewTimeout:  60 * time.Second,
		SuccessTimeout: 60 * time.Second,
	}
}

// StepObserver is notified before each state is executed.
type StepObserver func(account domain.AccountID, state State, attempt int)

type Workflow struct {
	cfg     WorkflowConfig
	auth    ports.Authenticator
	confirm ports.ConfirmationSurface
	clock   ports.Clock
	logger  *slog.Logger
	observe StepObserver
}

func NewWorkflow(cfg WorkflowConfig, auth ports.Authenticator, confirm ports.ConfirmationSurface, clock ports.Clock) *Workflow {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	return &Workflow{
		cfg:     cfg,
		auth:    auth,
		confirm: confirm,
		clock:   clock,
		logger:  logger.Named("workflow"),
		observe: func(domain.AccountID, State, int) {},
	}
}

func (w *Workflow) WithObserver(observe StepObserver) *Workflow {
	if observe != nil {
		w.observe = observe
	}
	return w
}

// Run performs one transfer end to end. Retryable outcomes restart the
// machine at the form-filling step; after MaxAttempts attempts the run fails
// with ErrRetryBudgetExhausted.
func (w *Workflow) Run(ctx context.Context, page ports.Page, credential domain.Credential) error {
	account := credential.Account.ID
	state := StateStart
	attempt := 1

	run := &transferRun{}
	defer run.release()

	for state != StateIdle {
		if err := ctx.Err(); err != nil {
			return err
		}

		w.observe(account, state, attempt)

		next, err := w.step(ctx, page, credential, run, state)
		if err == nil {
			state = next
			continue
		}

		if !domain.IsRetryable(err) {
			return fmt.Errorf("%s: %w", state, err)
		}

		w.logger.Warn("transfer attempt not confirmed",
			slog.String("account", string(account)),
			slog.String("state", string(state)),
			slog.Int("attempt", attempt),
			slog.String("reason", err.Error()),
		)

		if attempt >= w.cfg.MaxAttempts {
			// The last retryable cause is kept as text only so the result
			// classifies as fatal.
			return fmt.Errorf("%w after %d attempts (last: %v)", domain.ErrRetryBudgetExhausted, attempt, err)
		}

		attempt++
		state = retryEntry
	}

	return nil
}

// EnsureLoggedIn loads the platform page and signs in when the widget entry
// point is missing.
func (w *Workflow) EnsureLoggedIn(ctx context.Context, page ports.Page, credential domain.Credential) error {
	present, err := w.probeEntryPoint(ctx, page)
	if err != nil {
		return err
	}
	if present {
		return nil
	}

	return w.performLogin(ctx, page, credential)
}

// transferRun carries state that spans steps of one Run.
type transferRun struct {
	armed ports.Confirmation
}

// take hands the armed confirmation to the caller, leaving none behind.
func (r *transferRun) take() ports.Confirmation {
	armed := r.armed
	r.armed = nil
	return armed
}

func (r *transferRun) release() {
	if armed := r.take(); armed != nil {
		armed.Release()
	}
}

func (w *Workflow) step(ctx context.Context, page ports.Page, credential domain.Credential, run *transferRun, state State) (State, error) {
	sel := w.cfg.Selectors

	switch state {
	case StateStart:
		return StateEnsureLoggedIn, nil

	case StateEnsureLoggedIn:
		present, err := w.probeEntryPoint(ctx, page)
		if err != nil {
			return "", err
		}
		if present {
			return StateWidgetReady, nil
		}
		return StatePerformLogin, nil

	case StatePerformLogin:
		if err := w.performLogin(ctx, page, credential); err != nil {
			return "", err
		}
		return StateWidgetReady, nil

	case StateWidgetReady:
		return StateOpenWidget, nil

	case StateOpenWidget:
		if err := w.click(ctx, page, sel.EntryButton); err != nil {
			return "", err
		}
		if err := w.expect(ctx, page, sel.IndexPage, ports.StateVisible, w.cfg.StepTimeout); err != nil {
			return "", err
		}
		return StateSelectNetwork, nil

	case StateSelectNetwork:
		if err := w.selectNetwork(ctx, page); err != nil {
			return "", err
		}
		return StateOpenTransferForm, nil

	case StateOpenTransferForm:
		if err := w.click(ctx, page, sel.SendLink); err != nil {
			return "", err
		}
		if err := w.expect(ctx, page, sel.SendPage, ports.StateVisible, w.cfg.StepTimeout); err != nil {
			return "", err
		}
		return StateFillTransferForm, nil

	case StateFillTransferForm:
		if err := w.fillTransferForm(ctx, page); err != nil {
			return "", err
		}
		return StateSubmitTransferForm, nil

	case StateSubmitTransferForm:
		if err := w.click(ctx, page, sel.SendButton); err != nil {
			return "", err
		}
		return StateAwaitFeeReview, nil

	case StateAwaitFeeReview:
		if err := w.reviewFee(ctx, page); err != nil {
			return "", err
		}
		return StateConfirmFeeReview, nil

	case StateConfirmFeeReview:
		// The confirmation surface watches for the signing request, which
		// fires as soon as the send button is pressed.
		run.release()
		armed, err := w.confirm.Arm(ctx, page)
		if err != nil {
			return "", w.stepFailure(ctx, "arm sign confirmation", err)
		}
		run.armed = armed
		if err := w.click(ctx, page, sel.FeeSendButton); err != nil {
			run.release()
			return "", err
		}
		return StateAwaitSignConfirmation, nil

	case StateAwaitSignConfirmation:
		armed := run.take()
		if armed == nil {
			return "", fmt.Errorf("%w: sign confirmation was not armed", domain.ErrWidgetStepFailed)
		}
		defer armed.Release()

		confirmed, err := armed.Confirm(ctx)
		if err != nil {
			return "", w.stepFailure(ctx, "confirm signature", err)
		}
		if !confirmed {
			return "", domain.ErrAmbiguousSignOutcome
		}
		return StateAwaitSuccess, nil

	case StateAwaitSuccess:
		visible, err := page.WaitFor(ctx, sel.SuccessIndicator, ports.StateVisible, w.cfg.SuccessTimeout)
		if err != nil {
			return "", w.stepFailure(ctx, "wait for success indicator", err)
		}
		if !visible {
			return "", fmt.Errorf("%w within %s", domain.ErrSuccessNotObserved, w.cfg.SuccessTimeout)
		}
		return StateCloseSuccessModal, nil

	case StateCloseSuccessModal:
		if err := w.click(ctx, page, sel.SuccessClose); err != nil {
			return "", err
		}
		if err := w.expect(ctx, page, sel.IndexPage, ports.StateVisible, w.cfg.StepTimeout); err != nil {
			return "", err
		}
		return StateIdle, nil

	default:
		return "", fmt.Errorf("unknown workflow state %q", state)
	}
}

func (w *Workflow) probeEntryPoint(ctx context.Context, page ports.Page) (bool, error) {
	if err := page.Navigate(ctx, w.cfg.PointURL); err != nil {
		return false, w.stepFailure(ctx, "load platform page", err)
	}

	present, err := page.WaitFor(ctx, w.cfg.Selectors.EntryButton, ports.StateAttached, w.cfg.LoginTimeout)
	if err != nil {
		return false, w.stepFailure(ctx, "probe widget entry point", err)
	}

	return present, nil
}

func (w *Workflow) performLogin(ctx context.Context, page ports.Page, credential domain.Credential) error {
	w.logger.Info("signing in", slog.Any("credential", credential))

	if err := w.auth.Login(ctx, page, credential); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s: %w", domain.ErrLoginFailed, credential.Account.Provider, err)
	}

	present, err := w.probeEntryPoint(ctx, page)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", domain.ErrLoginFailed, err)
	}
	if !present {
		return fmt.Errorf("%w: widget entry point missing after sign-in", domain.ErrLoginFailed)
	}

	return nil
}

func (w *Workflow) selectNetwork(ctx context.Context, page ports.Page) error {
	sel := w.cfg.Selectors
	network := w.cfg.Transfer.Network

	if err := w.expect(ctx, page, sel.NetworkAvatar, ports.StateAttached, w.cfg.StepTimeout); err != nil {
		return err
	}
	if err := w.click(ctx, page, sel.NetworkSwitcher); err != nil {
		return err
	}
	if err := w.expect(ctx, page, sel.SwitcherModal, ports.StateVisible, w.cfg.StepTimeout); err != nil {
		return err
	}
	if err := w.click(ctx, page, sel.ChainItem(network.ID)); err != nil {
		return err
	}
	if err := w.expect(ctx, page, sel.SwitcherModal, ports.StateHidden, w.cfg.StepTimeout); err != nil {
		return err
	}

	_, err := w.waitForText(ctx, page, sel.NetworkSwitcher, w.cfg.StepTimeout, func(text string) bool {
		return strings.Contains(text, network.Name)
	})
	if err != nil {
		return w.stepFailure(ctx, fmt.Sprintf("switch to network %s", network.Name), err)
	}

	return nil
}

func (w *Workflow) fillTransferForm(ctx context.Context, page ports.Page) error {
	sel := w.cfg.Selectors
	transfer := w.cfg.Transfer

	fields := []struct {
		locator ports.Locator
		value   string
	}{
		{locator: sel.AddressField, value: transfer.Destination},
		{locator: sel.AmountField, value: transfer.Amount},
	}
	for _, field := range fields {
		if err := page.Clear(ctx, field.locator); err != nil {
			return w.stepFailure(ctx, "clear "+field.locator.String(), err)
		}
		if err := page.Type(ctx, field.locator, field.value, w.cfg.TypeDelay); err != nil {
			return w.stepFailure(ctx, "type into "+field.locator.String(), err)
		}
	}

	_, err := w.waitForText(ctx, page, sel.UsdEstimate, w.cfg.StepTimeout, func(text string) bool {
		trimmed := strings.TrimSpace(text)
		return trimmed != "" && !strings.Contains(trimmed, zeroEstimate)
	})
	if err != nil {
		return w.stepFailure(ctx, "transfer was not priced", err)
	}

	return nil
}

func (w *Workflow) reviewFee(ctx context.Context, page ports.Page) error {
	sel := w.cfg.Selectors
	feeToken := w.cfg.Transfer.FeeToken

	visible, err := page.WaitFor(ctx, sel.FeeModal, ports.StateVisible, w.cfg.ReviewTimeout)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", domain.ErrFeeReviewUnreadable, err)
	}
	if !visible {
		return fmt.Errorf("%w: panel did not appear within %s", domain.ErrFeeReviewUnreadable, w.cfg.ReviewTimeout)
	}

	token, err := w.waitForText(ctx, page, sel.FeeTokenName, w.cfg.StepTimeout, func(text string) bool {
		return strings.TrimSpace(text) == feeToken
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: fee token %q, want %q", domain.ErrFeeReviewUnreadable, strings.TrimSpace(token), feeToken)
	}

	feeText, err := page.ReadText(ctx, sel.FeeAmount)
	if err != nil {
		return w.readFailure(ctx, "fee amount", err)
	}
	balanceText, err := page.ReadText(ctx, sel.FeeBalance)
	if err != nil {
		return w.readFailure(ctx, "token balance", err)
	}

	review, err := domain.ParseFeeReview(token, feeText, balanceText)
	if err != nil {
		return err
	}
	if !review.Covered() {
		return fmt.Errorf("%w: balance %s %s does not cover fee %s", domain.ErrInsufficientBalance, review.Balance, review.Token, review.Fee.Abs())
	}

	w.logger.Debug("fee review accepted",
		slog.String("token", review.Token),
		slog.String("fee", review.Fee.String()),
		slog.String("balance", review.Balance.String()),
	)

	return nil
}

func (w *Workflow) readFailure(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: read %s: %w", domain.ErrFeeReviewUnreadable, what, err)
}

// waitForText polls locator until accept returns true or timeout elapses. It
// returns the last text read.
func (w *Workflow) waitForText(ctx context.Context, page ports.Page, locator ports.Locator, timeout time.Duration, accept func(string) bool) (string, error) {
	deadline := w.clock.Now().Add(timeout)

	var (
		text    string
		lastErr error
	)
	for {
		read, err := page.ReadText(ctx, locator)
		if err == nil {
			text = read
			if accept(text) {
				return text, nil
			}
		} else {
			lastErr = err
		}

		if !w.clock.Now().Before(deadline) {
			if lastErr != nil && text == "" {
				return text, lastErr
			}
			return text, fmt.Errorf("%w: %s reads %q", ports.ErrWaitTimeout, locator, text)
		}

		if err := w.clock.Sleep(ctx, pollInterval); err != nil {
			return text, err
		}
	}
}

func (w *Workflow) click(ctx context.Context, page ports.Page, locator ports.Locator) error {
	if err := page.Click(ctx, locator); err != nil {
		return w.stepFailure(ctx, "click "+locator.String(), err)
	}
	return nil
}

func (w *Workflow) expect(ctx context.Context, page ports.Page, locator ports.Locator, state ports.ElementState, timeout time.Duration) error {
	ok, err := page.WaitFor(ctx, locator, state, timeout)
	if err != nil {
		return w.stepFailure(ctx, fmt.Sprintf("wait for %s to be %s", locator, state), err)
	}
	if !ok {
		return w.stepFailure(ctx, fmt.Sprintf("wait for %s to be %s", locator, state), ports.ErrWaitTimeout)
	}
	return nil
}

// stepFailure classifies an adapter error raised by a widget step. Context
// errors pass through so budget expiry is reported as such.
func (w *Workflow) stepFailure(ctx context.Context, what string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrWidgetStepFailed, what, err)
}
