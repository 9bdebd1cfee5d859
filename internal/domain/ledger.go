package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CategoryDailyTransfer is the ledger category code crediting daily transfers.
const CategoryDailyTransfer = 4

const dayKeyLayout = "2006-01-02"

type LedgerEntry struct {
	ID        int64
	CreatedAt time.Time
	UpdatedAt time.Time
	Address   string
	Type      int
	TypeKey   string
	Point     string
}

// DayKey renders the ledger's per-day bucket key, which is the UTC calendar date.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// CompletedTransfers returns floor(sum(points)/reward) over the daily-transfer
// entries credited under dayKey.
func CompletedTransfers(entries []LedgerEntry, dayKey string, reward int) (int, error) {
	if reward <= 0 {
		return 0, fmt.Errorf("reward per transfer must be positive, got %d", reward)
	}

	total := decimal.Zero
	for _, entry := range entries {
		if entry.Type != CategoryDailyTransfer || entry.TypeKey != dayKey {
			continue
		}

		points, err := decimal.NewFromString(strings.TrimSpace(entry.Point))
		if err != nil {
			return 0, fmt.Errorf("parse points of ledger entry %d: %w", entry.ID, err)
		}
		total = total.Add(points)
	}

	count := total.Div(decimal.NewFromInt(int64(reward))).Floor().IntPart()
	if count < 0 {
		return 0, nil
	}

	return int(count), nil
}
