package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/sourcegraph/conc/pool"
)

type AccountSession interface {
	Run(ctx context.Context, page ports.Page, credential domain.Credential) (SessionResult, error)
}

type AccountResult struct {
	Account domain.Account
	Session SessionResult
	Err     error
}

// Runner starts one worker per account. Workers share nothing but the
// browser launcher; each gets its own page and wall-clock budget.
type Runner struct {
	browser  ports.Browser
	session  AccountSession
	progress ports.ProgressStore
	metrics  ports.MetricsRecorder
	budget   time.Duration
	logger   *slog.Logger
}

func NewRunner(browser ports.Browser, session AccountSession, progress ports.ProgressStore, metrics ports.MetricsRecorder, budget time.Duration) *Runner {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if budget <= 0 {
		budget = domain.DefaultAccountBudget
	}

	return &Runner{
		browser:  browser,
		session:  session,
		progress: progress,
		metrics:  metrics,
		budget:   budget,
		logger:   logger.Named("runner"),
	}
}

// RunAll resets the progress mirror to the given accounts and runs them in
// parallel. Results follow the order of credentials.
func (r *Runner) RunAll(ctx context.Context, credentials []domain.Credential) []AccountResult {
	keys := make([]string, 0, len(credentials))
	for _, credential := range credentials {
		keys = append(keys, credential.Account.ProgressKey())
	}
	if err := r.progress.SetAccounts(ctx, keys); err != nil {
		r.logger.Warn("progress store reset failed", slog.String("error", err.Error()))
	}

	type indexed struct {
		index  int
		result AccountResult
	}

	p := pool.NewWithResults[indexed]()
	for i, credential := range credentials {
		p.Go(func() indexed {
			return indexed{index: i, result: r.runOne(ctx, credential)}
		})
	}

	collected := p.Wait()
	sort.Slice(collected, func(a, b int) bool { return collected[a].index < collected[b].index })

	results := make([]AccountResult, 0, len(collected))
	for _, item := range collected {
		results = append(results, item.result)
	}

	return results
}

func (r *Runner) runOne(ctx context.Context, credential domain.Credential) AccountResult {
	account := credential.Account
	result := AccountResult{Account: account}

	ctx, cancel := context.WithTimeout(ctx, r.budget)
	defer cancel()

	page, err := r.browser.NewPage(ctx)
	if err != nil {
		result.Err = fmt.Errorf("open browser page for %s: %w", account.Label(), err)
		r.metrics.ObserveSession(account.ProgressKey(), domain.FailureKind(result.Err))
		return result
	}
	defer func() {
		if closeErr := page.Close(); closeErr != nil {
			r.logger.Warn("close browser page", slog.String("account", string(account.ID)), slog.String("error", closeErr.Error()))
		}
	}()

	result.Session, result.Err = r.session.Run(ctx, page, credential)
	r.metrics.ObserveSession(account.ProgressKey(), domain.FailureKind(result.Err))

	if result.Err != nil {
		r.logger.Error("account run aborted",
			slog.String("account", string(account.ID)),
			slog.String("kind", domain.FailureKind(result.Err)),
			slog.Int("completed", result.Session.Final()),
			slog.String("error", result.Err.Error()),
		)
		return result
	}

	r.logger.Info("account run finished",
		slog.String("account", string(account.ID)),
		slog.Int("completed", result.Session.Final()),
	)
	return result
}
