package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/google/uuid"
)

const DefaultProgressSubject = "ptx.progress"

type TransferWorkflow interface {
	EnsureLoggedIn(ctx context.Context, page ports.Page, credential domain.Credential) error
	Run(ctx context.Context, page ports.Page, credential domain.Credential) error
}

type LedgerReader interface {
	CompletedToday(ctx context.Context, page ports.Page, account domain.Account) (int, error)
}

type SessionConfig struct {
	Quota        domain.Quota
	Pacing       time.Duration
	EventSubject string
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Quota:        domain.DefaultQuota(),
		Pacing:       domain.DefaultPacing,
		EventSubject: DefaultProgressSubject,
	}
}

type SessionResult struct {
	RunID     string
	Account   domain.AccountID
	Start     int
	Committed int
}

// Final is the day's completed count once the session stopped.
func (r SessionResult) Final() int {
	return r.Start + r.Committed
}

// ProgressEvent is published after every committed transfer.
type ProgressEvent struct {
	RunID     string    `json:"run_id"`
	Account   string    `json:"account"`
	Count     int       `json:"count"`
	Quota     int       `json:"quota"`
	Timestamp time.Time `json:"timestamp"`
}

// Session drives one account from its ledger-derived resume point up to the
// daily quota.
type Session struct {
	cfg      SessionConfig
	workflow TransferWorkflow
	ledger   LedgerReader
	progress ports.ProgressStore
	events   ports.EventPublisher
	metrics  ports.MetricsRecorder
	clock    ports.Clock
	logger   *slog.Logger
	newRunID func() string
}

func NewSession(
	cfg SessionConfig,
	workflow TransferWorkflow,
	ledger LedgerReader,
	progress ports.ProgressStore,
	events ports.EventPublisher,
	metrics ports.MetricsRecorder,
	clock ports.Clock,
) *Session {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}

	return &Session{
		cfg:      cfg,
		workflow: workflow,
		ledger:   ledger,
		progress: progress,
		events:   events,
		metrics:  metrics,
		clock:    clock,
		logger:   logger.Named("session"),
		newRunID: func() string { return uuid.NewString() },
	}
}

// Run signs in, resolves the resume point from the ledger and loops the
// transfer workflow until the quota is reached. A fatal workflow error stops
// the loop; everything committed before it stays committed.
func (s *Session) Run(ctx context.Context, page ports.Page, credential domain.Credential) (SessionResult, error) {
	account := credential.Account
	result := SessionResult{RunID: s.newRunID(), Account: account.ID}
	log := s.logger.With(slog.String("run_id", result.RunID), slog.String("account", string(account.ID)))

	if err := s.workflow.EnsureLoggedIn(ctx, page, credential); err != nil {
		return result, fmt.Errorf("sign in before resume: %w", err)
	}

	start, err := s.ledger.CompletedToday(ctx, page, account)
	if err != nil {
		return result, err
	}
	result.Start = start

	quota := s.cfg.Quota.Daily
	if s.cfg.Quota.Reached(start) {
		log.Info("daily quota already reached", slog.Int("completed", start), slog.Int("quota", quota))
		return result, nil
	}

	log.Info("session started", slog.Int("start", start), slog.Int("quota", quota))

	for i := start; i < quota; i++ {
		began := s.clock.Now()
		err := s.workflow.Run(ctx, page, credential)
		s.metrics.ObserveAttempt(account.ProgressKey(), domain.FailureKind(err), s.clock.Now().Sub(began))
		if err != nil {
			log.Error("transfer failed",
				slog.Int("transfer", i+1),
				slog.String("kind", domain.FailureKind(err)),
				slog.String("error", err.Error()),
			)
			return result, fmt.Errorf("transfer %d/%d: %w", i+1, quota, err)
		}

		result.Committed++
		s.mirror(ctx, log, account, result.RunID, i+1)

		if i+1 < quota {
			if err := s.clock.Sleep(ctx, s.cfg.Pacing); err != nil {
				return result, err
			}
		}
	}

	log.Info("daily quota reached", slog.Int("committed", result.Committed))
	return result, nil
}

// mirror reports a committed count. The progress store and event stream are
// observers only, so their failures are logged and swallowed.
func (s *Session) mirror(ctx context.Context, log *slog.Logger, account domain.Account, runID string, count int) {
	key := account.ProgressKey()
	s.metrics.ObserveCommitted(key, count)

	if err := s.progress.SetCount(ctx, key, count); err != nil {
		log.Warn("progress store update failed", slog.Int("count", count), slog.String("error", err.Error()))
	}

	if s.events == nil {
		return
	}

	event := ProgressEvent{
		RunID:     runID,
		Account:   key,
		Count:     count,
		Quota:     s.cfg.Quota.Daily,
		Timestamp: s.clock.Now().UTC(),
	}
	if err := s.events.Publish(ctx, s.cfg.EventSubject, event); err != nil {
		log.Warn("progress event publish failed", slog.Int("count", count), slog.String("error", err.Error()))
	}
}
