package widget

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"payout-sync/internal/models"
	"payout-sync/internal/storage"
)

const maxRecent = 3

// Summary is the compact home-screen view of the payout data: the
// payable amount if one exists, the most recent payouts, and when the
// data was last refreshed.
type Summary struct {
	HasData         bool            `json:"has_data"`
	PayableAmount   string          `json:"payable_amount,omitempty"`
	PayableCurrency string          `json:"payable_currency,omitempty"`
	Recent          []models.Payout `json:"recent,omitempty"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
}

// Provider builds summaries strictly from the payout cache; it never
// calls the remote API. The rendered summary is kept until the core
// signals a data change, then rebuilt lazily on the next read.
type Provider struct {
	log   *slog.Logger
	cache *storage.Cache

	mu      sync.Mutex
	current Summary
	dirty   bool
}

func NewProvider(log *slog.Logger, cache *storage.Cache) *Provider {
	return &Provider{log: log, cache: cache, dirty: true}
}

// DataChanged implements the core's notifier. Fire-and-forget: it only
// marks the summary for rebuild.
func (p *Provider) DataChanged() {
	p.mu.Lock()
	p.dirty = true
	p.mu.Unlock()
	p.log.Debug("widget_marked_dirty")
}

// Summary returns the current summary, rebuilding from cache when a
// data change was signalled since the last read.
func (p *Provider) Summary(ctx context.Context) Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dirty {
		p.current = p.build(ctx)
		p.dirty = false
	}
	return p.current
}

func (p *Provider) build(ctx context.Context) Summary {
	payouts, stamp := p.cache.LoadPayouts(ctx)
	if len(payouts) == 0 {
		return Summary{}
	}

	s := Summary{HasData: true, UpdatedAt: stamp}
	for _, payout := range payouts {
		if payout.Status == models.StatusPayable {
			s.PayableAmount = payout.Amount
			s.PayableCurrency = payout.Currency
			break
		}
	}

	n := len(payouts)
	if n > maxRecent {
		n = maxRecent
	}
	s.Recent = payouts[:n]
	return s
}
