package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/logger"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
)

type LedgerConfig struct {
	PointURL string
	// FeedURL is matched as a substring of captured response URLs.
	FeedURL string
	Trigger ports.Locator
	Timeout time.Duration
	Reward  int
}

func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		PointURL: DefaultPointURL,
		FeedURL:  DefaultFeedURL,
		Trigger:  ports.Text("Points History"),
		Timeout:  30 * time.Second,
		Reward:   domain.DefaultRewardPerTransfer,
	}
}

// LedgerQuery derives today's completed transfers from the platform's point
// history. It only reads.
type LedgerQuery struct {
	cfg    LedgerConfig
	clock  ports.Clock
	logger *slog.Logger
}

func NewLedgerQuery(cfg LedgerConfig, clock ports.Clock) *LedgerQuery {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &LedgerQuery{cfg: cfg, clock: clock, logger: logger.Named("ledger")}
}

// CompletedToday returns how many transfers the ledger credits for the current
// UTC day. Every failure is reported as domain.ErrResumptionUnavailable.
func (q *LedgerQuery) CompletedToday(ctx context.Context, page ports.Page, account domain.Account) (int, error) {
	if err := page.Navigate(ctx, q.cfg.PointURL); err != nil {
		return 0, q.unavailable("load point page", err)
	}

	pending, err := page.OnResponse(ctx, func(info ports.ResponseInfo) bool {
		return info.OK() && strings.Contains(info.URL, q.cfg.FeedURL)
	})
	if err != nil {
		return 0, q.unavailable("watch ledger feed", err)
	}
	defer pending.Cancel()

	if err := page.Click(ctx, q.cfg.Trigger); err != nil {
		return 0, q.unavailable("open points history", err)
	}

	body, err := pending.Await(ctx, q.cfg.Timeout)
	if err != nil {
		return 0, q.unavailable("await ledger feed", err)
	}

	entries, err := decodeLedgerFeed(body)
	if err != nil {
		return 0, q.unavailable("decode ledger feed", err)
	}

	day := domain.DayKey(q.clock.Now())
	count, err := domain.CompletedTransfers(entries, day, q.cfg.Reward)
	if err != nil {
		return 0, q.unavailable("count daily transfers", err)
	}

	q.logger.Info("resume point resolved",
		slog.String("account", string(account.ID)),
		slog.String("day", day),
		slog.Int("entries", len(entries)),
		slog.Int("completed", count),
	)

	return count, nil
}

func (q *LedgerQuery) unavailable(what string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrResumptionUnavailable, what, err)
}

type pointRecord struct {
	ID        int64      `json:"id"`
	CreatedAt feedTime   `json:"created_at"`
	UpdatedAt feedTime   `json:"updated_at"`
	Address   string     `json:"address"`
	Type      int        `json:"type"`
	TypeKey   string     `json:"typeKey"`
	Point     pointValue `json:"point"`
}

// feedTime is informational only, so a timestamp in an unknown layout
// decodes to the zero time instead of failing the whole feed.
type feedTime time.Time

var feedTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (f *feedTime) UnmarshalJSON(data []byte) error {
	*f = feedTime{}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	raw = strings.TrimSpace(raw)
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			*f = feedTime(t)
			return nil
		}
	}
	return nil
}

// pointValue accepts the point amount as a JSON string or number.
type pointValue string

func (p *pointValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		unquoted, err := strconv.Unquote(string(trimmed))
		if err != nil {
			return fmt.Errorf("decode point: %w", err)
		}
		*p = pointValue(unquoted)
		return nil
	}

	*p = pointValue(trimmed)
	return nil
}

// decodeLedgerFeed accepts the bare record array or the {"data": [...]}
// envelope the platform wraps it in.
func decodeLedgerFeed(body []byte) ([]domain.LedgerEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty ledger feed")
	}

	var records []pointRecord
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
	} else {
		var envelope struct {
			Data []pointRecord `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		records = envelope.Data
	}

	entries := make([]domain.LedgerEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, domain.LedgerEntry{
			ID:        record.ID,
			CreatedAt: time.Time(record.CreatedAt),
			UpdatedAt: time.Time(record.UpdatedAt),
			Address:   record.Address,
			Type:      record.Type,
			TypeKey:   record.TypeKey,
			Point:     string(record.Point),
		})
	}

	return entries, nil
}
