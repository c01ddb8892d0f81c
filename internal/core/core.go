package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"payout-sync/internal/gumroad"
	"payout-sync/internal/logging"
	"payout-sync/internal/models"
	"payout-sync/internal/storage"
)

// background refreshes run off a request context; cap them the same
// way the shared HTTP client caps a single round trip
const backgroundRefreshTimeout = 60 * time.Second

// Remote is the read-only commerce API surface the core needs.
type Remote interface {
	GetPayouts(ctx context.Context, token string, q gumroad.PayoutsQuery) ([]models.Payout, error)
	GetPayout(ctx context.Context, token, id string) (models.Payout, error)
	GetUser(ctx context.Context, token string) (models.User, error)
}

// Cache is the local store the core hydrates from and falls back to.
type Cache interface {
	SavePayouts(ctx context.Context, payouts []models.Payout) error
	LoadPayouts(ctx context.Context) ([]models.Payout, *time.Time)
	ClearPayouts(ctx context.Context) error
	SaveProfile(ctx context.Context, user models.User) error
	LoadProfile(ctx context.Context) (*models.User, *time.Time)
	ClearProfile(ctx context.Context) error
}

// Settings is the durable credential and cadence store.
type Settings interface {
	SaveAccessToken(ctx context.Context, token string) error
	LoadAccessToken(ctx context.Context) (string, error)
	SaveInterval(ctx context.Context, iv models.UpdateInterval) error
	LoadInterval(ctx context.Context) (models.UpdateInterval, error)
}

// Notifier hears about successful data refreshes, fire-and-forget.
type Notifier interface {
	DataChanged()
}

// Core orchestrates refreshes between the remote API, the cache, and
// the settings store, and owns the observable state streams consumers
// watch. All stream publications are last-write-wins; overlapping
// manual and automatic refreshes are allowed and the later publication
// simply wins.
type Core struct {
	log      *slog.Logger
	remote   Remote
	cache    Cache
	settings Settings
	notifier Notifier
	archiver storage.SnapshotArchiver

	Payouts    *Stream[PayoutsState]
	Detail     *Stream[DetailState]
	Profile    *Stream[ProfileState]
	Credential *Stream[string]
	Interval   *Stream[models.UpdateInterval]

	timerStop chan struct{}
	timerMu   sync.Mutex
}

type Options struct {
	// Notifier and Archiver are optional
	Notifier Notifier
	Archiver storage.SnapshotArchiver
}

func New(log *slog.Logger, remote Remote, cache Cache, settings Settings, opts Options) *Core {
	return &Core{
		log:        log,
		remote:     remote,
		cache:      cache,
		settings:   settings,
		notifier:   opts.Notifier,
		archiver:   opts.Archiver,
		Payouts:    NewStream(payoutsInitial()),
		Detail:     NewStream(detailIdle()),
		Profile:    NewStream(profileIdle()),
		Credential: NewStream(""),
		Interval:   NewStream(models.IntervalManual),
	}
}

// Start hydrates the core from durable settings: publishes the stored
// credential and cadence, runs the credential protocol, and arms the
// auto-refresh timer. Call once after construction.
func (c *Core) Start(ctx context.Context) error {
	token, err := c.settings.LoadAccessToken(ctx)
	if err != nil {
		return err
	}
	iv, err := c.settings.LoadInterval(ctx)
	if err != nil {
		return err
	}

	c.log.Info("core_starting",
		"has_credential", token != "",
		"interval", iv.String(),
	)

	c.Credential.Publish(token)
	c.applyCredential(ctx, token)

	c.Interval.Publish(iv)
	c.rearmTimer(iv)
	return nil
}

// Close cancels the pending auto-refresh timer, if any.
func (c *Core) Close() {
	c.rearmTimer(models.IntervalManual)
}

// applyCredential runs the credential-emission protocol. An empty
// credential does nothing here: clearing state is ClearCredential's
// job alone, so a restart with no stored token cannot wipe anything.
func (c *Core) applyCredential(ctx context.Context, token string) {
	if token == "" {
		return
	}

	cached, stamp := c.cache.LoadPayouts(ctx)
	if len(cached) > 0 {
		c.Payouts.Publish(PayoutsState{
			Phase:     PhaseSuccess,
			Payouts:   cached,
			Stale:     true,
			UpdatedAt: stamp,
		})
		go c.refreshPayoutsDetached(true)
	} else {
		// Loading is published here once; the detached refresh runs
		// silent so it cannot re-publish it later
		c.Payouts.Publish(payoutsLoading())
		go c.refreshPayoutsDetached(true)
	}

	// profile hydrates from cache only; no forced fetch
	if user, pstamp := c.cache.LoadProfile(ctx); user != nil {
		c.Profile.Publish(ProfileState{
			Phase:     PhaseSuccess,
			User:      user,
			UpdatedAt: pstamp,
		})
	}
}

func (c *Core) refreshPayoutsDetached(silent bool) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
	defer cancel()
	c.RefreshPayouts(ctx, silent)
}

// RefreshPayouts fetches the payout list and publishes the outcome.
// silent skips the Loading publication so an up-to-date view is not
// flashed away during a background refresh. On failure the cache is
// re-read and non-empty cached data masks the error as stale Success.
func (c *Core) RefreshPayouts(ctx context.Context, silent bool) {
	token := c.Credential.Current()
	if token == "" {
		c.Payouts.Publish(payoutsError(gumroad.MsgMissingCredential))
		return
	}

	if !silent {
		c.Payouts.Publish(payoutsLoading())
	}

	payouts, err := c.remote.GetPayouts(ctx, token, gumroad.PayoutsQuery{})
	if err != nil {
		c.publishPayoutsFallback(ctx, err)
		return
	}

	if err := c.cache.SavePayouts(ctx, payouts); err != nil {
		c.log.Warn("payout_cache_save_failed", "error", err)
	}
	now := time.Now().UTC()
	c.Payouts.Publish(PayoutsState{
		Phase:     PhaseSuccess,
		Payouts:   payouts,
		UpdatedAt: &now,
	})
	c.log.Info("payouts_refreshed", "count", len(payouts), "silent", silent)

	if c.notifier != nil {
		c.notifier.DataChanged()
	}
	if c.archiver != nil && len(payouts) > 0 {
		go c.archiveSnapshot(payouts)
	}
}

func (c *Core) publishPayoutsFallback(ctx context.Context, cause error) {
	cached, stamp := c.cache.LoadPayouts(ctx)
	if len(cached) > 0 {
		c.Payouts.Publish(PayoutsState{
			Phase:     PhaseSuccess,
			Payouts:   cached,
			Stale:     true,
			UpdatedAt: stamp,
		})
		c.log.Warn("payouts_refresh_failed_served_cache", "error", cause.Error())
		return
	}
	c.Payouts.Publish(payoutsError(cause.Error()))
	c.log.Warn("payouts_refresh_failed", "error", cause.Error())
}

func (c *Core) archiveSnapshot(payouts []models.Payout) {
	ctx, cancel := context.WithTimeout(context.Background(), backgroundRefreshTimeout)
	defer cancel()

	url, err := c.archiver.ArchiveSnapshot(ctx, payouts)
	if err != nil {
		c.log.Warn("snapshot_archive_failed", "error", err)
		return
	}
	c.log.Info("snapshot_archived", "url", url, "count", len(payouts))
}

// FetchDetail fetches a single payout into the detail stream. No cache
// behind this stream; failures surface directly. Loading always comes
// first, even when the credential guard fails the fetch immediately.
func (c *Core) FetchDetail(ctx context.Context, id string) {
	c.Detail.Publish(detailLoading())

	token := c.Credential.Current()
	if token == "" {
		c.Detail.Publish(DetailState{Phase: PhaseError, Err: gumroad.MsgMissingCredential})
		return
	}

	payout, err := c.remote.GetPayout(ctx, token, id)
	if err != nil {
		c.Detail.Publish(DetailState{Phase: PhaseError, Err: err.Error()})
		return
	}
	c.Detail.Publish(DetailState{Phase: PhaseSuccess, Payout: &payout})
}

// ClearDetail resets the detail stream to Idle. Idempotent.
func (c *Core) ClearDetail() {
	c.Detail.Publish(detailIdle())
}

// RefreshProfile fetches the account profile, with the same silent
// and cache-fallback behavior as the payout refresh.
func (c *Core) RefreshProfile(ctx context.Context, silent bool) {
	token := c.Credential.Current()
	if token == "" {
		c.Profile.Publish(ProfileState{Phase: PhaseError, Err: gumroad.MsgMissingCredential})
		return
	}

	if !silent {
		c.Profile.Publish(profileLoading())
	}

	user, err := c.remote.GetUser(ctx, token)
	if err != nil {
		if cached, stamp := c.cache.LoadProfile(ctx); cached != nil {
			c.Profile.Publish(ProfileState{
				Phase:     PhaseSuccess,
				User:      cached,
				Stale:     true,
				UpdatedAt: stamp,
			})
			return
		}
		c.Profile.Publish(ProfileState{Phase: PhaseError, Err: err.Error()})
		return
	}

	if err := c.cache.SaveProfile(ctx, user); err != nil {
		c.log.Warn("profile_cache_save_failed", "error", err)
	}
	now := time.Now().UTC()
	c.Profile.Publish(ProfileState{
		Phase:     PhaseSuccess,
		User:      &user,
		UpdatedAt: &now,
	})
}

// SetCredential persists the token (empty allowed) and feeds it to the
// credential protocol.
func (c *Core) SetCredential(ctx context.Context, token string) error {
	if err := c.settings.SaveAccessToken(ctx, token); err != nil {
		return err
	}
	c.log.Info("credential_set", "token", logging.MaskToken(token))
	c.Credential.Publish(token)
	c.applyCredential(ctx, token)
	return nil
}

// ClearCredential persists an empty token, wipes both cache slots and
// resets the payout and profile streams. The only forced reset.
func (c *Core) ClearCredential(ctx context.Context) error {
	if err := c.settings.SaveAccessToken(ctx, ""); err != nil {
		return err
	}
	if err := c.cache.ClearPayouts(ctx); err != nil {
		c.log.Warn("payout_cache_clear_failed", "error", err)
	}
	if err := c.cache.ClearProfile(ctx); err != nil {
		c.log.Warn("profile_cache_clear_failed", "error", err)
	}

	c.Credential.Publish("")
	c.Payouts.Publish(payoutsInitial())
	c.Profile.Publish(profileIdle())
	c.log.Info("credential_cleared")
	return nil
}

// SetInterval persists the cadence and re-arms the auto-refresh timer.
// The pending timer is always cancelled first, so switching cadence or
// going manual can never leave two timers running.
func (c *Core) SetInterval(ctx context.Context, iv models.UpdateInterval) error {
	if err := c.settings.SaveInterval(ctx, iv); err != nil {
		return err
	}
	c.Interval.Publish(iv)
	c.rearmTimer(iv)
	c.log.Info("interval_set", "interval", iv.String())
	return nil
}

func (c *Core) rearmTimer(iv models.UpdateInterval) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timerStop != nil {
		close(c.timerStop)
		c.timerStop = nil
	}
	if iv.IsManual() {
		return
	}

	stop := make(chan struct{})
	c.timerStop = stop
	go c.runTimer(iv.Duration(), stop)
}

// runTimer re-arms on a fixed period: a slow refresh delays nothing
// and nothing catches up missed ticks.
func (c *Core) runTimer(period time.Duration, stop chan struct{}) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if c.Credential.Current() == "" {
				continue
			}
			c.refreshPayoutsDetached(true)
		}
	}
}

// TimerArmed reports whether an auto-refresh timer is pending.
func (c *Core) TimerArmed() bool {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	return c.timerStop != nil
}
