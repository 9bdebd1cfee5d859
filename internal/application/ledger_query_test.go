package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/bnema/pioneer-tx-cli/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ledgerToday = time.Date(2024, 5, 7, 23, 30, 0, 0, time.UTC)

func TestLedgerQueryCompletedToday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		feed string
		want int
	}{
		{
			name: "bare array with string points",
			feed: `[{"id":1,"type":4,"typeKey":"2024-05-07","point":"150"}]`,
			want: 3,
		},
		{
			name: "envelope with numeric points",
			feed: `{"data":[{"id":1,"type":4,"typeKey":"2024-05-07","point":149}]}`,
			want: 2,
		},
		{
			name: "other days and categories ignored",
			feed: `[
				{"id":1,"type":4,"typeKey":"2024-05-06","point":"5000"},
				{"id":2,"type":2,"typeKey":"2024-05-07","point":"500"},
				{"id":3,"type":4,"typeKey":"2024-05-07","point":"100"}
			]`,
			want: 2,
		},
		{
			name: "timestamps without zone",
			feed: `{"data":[
				{"id":7,"created_at":"2024-05-07 16:24:31","updated_at":"2024-05-07 16:24:31","type":4,"typeKey":"2024-05-07","point":"200"}
			]}`,
			want: 4,
		},
		{
			name: "empty history",
			feed: `{"data":[]}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page := newFakePage()
			page.feed = []byte(tt.feed)
			query := NewLedgerQuery(DefaultLedgerConfig(), newFakeClock(ledgerToday))

			got, err := query.CompletedToday(context.Background(), page, testCredential.Account)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, []string{DefaultPointURL}, page.navigations)
			assert.Equal(t, 1, page.clickCount(ports.Text("Points History")))
		})
	}
}

func TestLedgerQueryUsesUTCDay(t *testing.T) {
	t.Parallel()

	// 01:30 in UTC+3 is still the previous UTC day.
	local := time.Date(2024, 5, 8, 1, 30, 0, 0, time.FixedZone("MSK", 3*60*60))
	page := newFakePage()
	page.feed = []byte(`[{"id":1,"type":4,"typeKey":"2024-05-07","point":"250"}]`)

	got, err := NewLedgerQuery(DefaultLedgerConfig(), newFakeClock(local)).CompletedToday(context.Background(), page, testCredential.Account)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestLedgerQueryResumptionUnavailable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(page *fakePage, cfg *LedgerConfig)
	}{
		{
			name:  "feed never arrives",
			setup: func(page *fakePage, _ *LedgerConfig) { page.feedErr = ports.ErrWaitTimeout },
		},
		{
			name: "response filter does not match",
			setup: func(page *fakePage, cfg *LedgerConfig) {
				page.feed = []byte(`[]`)
				cfg.FeedURL = "https://elsewhere.example/points"
			},
		},
		{
			name:  "malformed body",
			setup: func(page *fakePage, _ *LedgerConfig) { page.feed = []byte(`<html>`) },
		},
		{
			name:  "empty body",
			setup: func(page *fakePage, _ *LedgerConfig) { page.feed = nil },
		},
		{
			name: "unparsable points on a matching entry",
			setup: func(page *fakePage, _ *LedgerConfig) {
				page.feed = []byte(`[{"id":1,"type":4,"typeKey":"2024-05-07","point":"lots"}]`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			page := newFakePage()
			cfg := DefaultLedgerConfig()
			tt.setup(page, &cfg)

			_, err := NewLedgerQuery(cfg, newFakeClock(ledgerToday)).CompletedToday(context.Background(), page, testCredential.Account)
			require.ErrorIs(t, err, domain.ErrResumptionUnavailable)
			assert.True(t, domain.IsFatal(err))
		})
	}
}

func TestLedgerQueryKeepsUnderlyingCause(t *testing.T) {
	t.Parallel()

	page := newFakePage()
	page.feedErr = ports.ErrWaitTimeout

	_, err := NewLedgerQuery(DefaultLedgerConfig(), newFakeClock(ledgerToday)).CompletedToday(context.Background(), page, testCredential.Account)
	assert.True(t, errors.Is(err, ports.ErrWaitTimeout))
}

func TestDecodeLedgerFeedMapsFields(t *testing.T) {
	t.Parallel()

	entries, err := decodeLedgerFeed([]byte(`{"data":[{
		"id": 42,
		"created_at": "2024-05-07T08:00:00Z",
		"updated_at": "2024-05-07T08:00:01Z",
		"address": "0xabc",
		"type": 4,
		"typeKey": "2024-05-07",
		"point": 50
	}]}`))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.LedgerEntry{
		ID:        42,
		CreatedAt: time.Date(2024, 5, 7, 8, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 5, 7, 8, 0, 1, 0, time.UTC),
		Address:   "0xabc",
		Type:      4,
		TypeKey:   "2024-05-07",
		Point:     "50",
	}, entries[0])
}

func TestDecodeLedgerFeedToleratesTimestampLayouts(t *testing.T) {
	t.Parallel()

	entries, err := decodeLedgerFeed([]byte(`[
		{"id":1,"created_at":"2024-05-07 16:24:31","updated_at":"2024-05-07T16:24:31.250","type":4,"typeKey":"2024-05-07","point":"50"},
		{"id":2,"created_at":"yesterday","updated_at":null,"type":4,"typeKey":"2024-05-07","point":"50"},
		{"id":3,"created_at":1715099071,"type":4,"typeKey":"2024-05-07","point":"50"}
	]`))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, time.Date(2024, 5, 7, 16, 24, 31, 0, time.UTC), entries[0].CreatedAt)
	assert.Equal(t, time.Date(2024, 5, 7, 16, 24, 31, 250_000_000, time.UTC), entries[0].UpdatedAt)
	assert.True(t, entries[1].CreatedAt.IsZero())
	assert.True(t, entries[1].UpdatedAt.IsZero())
	assert.True(t, entries[2].CreatedAt.IsZero())
	assert.Equal(t, "50", entries[2].Point)
}
