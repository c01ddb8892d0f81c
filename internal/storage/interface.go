package storage

import (
	"context"

	"payout-sync/internal/models"
)

// SnapshotArchiver persists a point-in-time copy of the payout list
// after a successful refresh. Fire-and-forget: a failed archive never
// touches sync state.
type SnapshotArchiver interface {
	ArchiveSnapshot(ctx context.Context, payouts []models.Payout) (string, error)
}
