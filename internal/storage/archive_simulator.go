package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"payout-sync/internal/models"
)

// ArchiveSimulator stands in for the S3 archive in dev and tests. It
// uploads nothing and returns a deterministic URL derived from the
// snapshot contents.
type ArchiveSimulator struct {
	bucket   string
	endpoint string
}

func NewArchiveSimulator(bucket, endpoint string) *ArchiveSimulator {
	return &ArchiveSimulator{
		bucket:   strings.TrimSpace(bucket),
		endpoint: strings.TrimSpace(endpoint),
	}
}

func (a *ArchiveSimulator) ArchiveSnapshot(_ context.Context, payouts []models.Payout) (string, error) {
	if len(payouts) == 0 {
		return "", fmt.Errorf("empty payout list")
	}

	data, err := json.Marshal(payouts)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	ep := a.endpoint
	if ep == "" {
		ep = "https://archive.example.invalid"
	}
	bucket := a.bucket
	if bucket == "" {
		bucket = "payout-sync"
	}

	return fmt.Sprintf("%s/%s/snapshots/%s.json", strings.TrimRight(ep, "/"), bucket, key), nil
}
