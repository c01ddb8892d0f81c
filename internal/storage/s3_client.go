package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"payout-sync/internal/models"
)

type S3Archive struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

type S3Config struct {
	Endpoint  string
	Bucket    string
	PublicURL string
	Region    string
}

// snapshot is the archived document layout.
type snapshot struct {
	ArchivedAt string          `json:"archived_at"`
	Count      int             `json:"count"`
	Payouts    []models.Payout `json:"payouts"`
}

func NewS3Archive(cfg S3Config) (*S3Archive, error) {
	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	// Custom endpoint for R2 and other S3-compatible stores
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &S3Archive{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: cfg.PublicURL,
	}, nil
}

// ArchiveSnapshot uploads the list as a dated JSON object and returns
// the object URL.
func (a *S3Archive) ArchiveSnapshot(ctx context.Context, payouts []models.Payout) (string, error) {
	if len(payouts) == 0 {
		return "", fmt.Errorf("empty payout list")
	}

	now := time.Now().UTC()
	doc := snapshot{
		ArchivedAt: now.Format(time.RFC3339),
		Count:      len(payouts),
		Payouts:    payouts,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	objectKey := fmt.Sprintf("snapshots/%s/payouts_%d.json", now.Format("2006/01/02"), now.Unix())

	uploadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err = a.client.PutObject(uploadCtx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"payout_count": fmt.Sprintf("%d", len(payouts)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot: %w", err)
	}

	if a.publicURL != "" {
		return fmt.Sprintf("%s/%s", a.publicURL, objectKey), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", a.bucket, objectKey), nil
}
