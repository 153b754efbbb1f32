package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"document-insight/internal/domain"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseResultRepository mirrors results to a Supabase Storage bucket. It
// is an optional secondary sink; the local file repository stays the source
// of truth.
type SupabaseResultRepository struct {
	client *supabase.Client
	bucket string
	logger domain.Logger
}

func NewSupabaseResultRepository(config domain.Config, logger domain.Logger) (*SupabaseResultRepository, error) {
	supabaseURL := config.GetSupabaseURL()
	supabaseKey := config.GetSupabaseKey()
	if supabaseURL == "" || supabaseKey == "" {
		return nil, fmt.Errorf("Supabase URL and key must be provided")
	}

	client, err := supabase.NewClient(supabaseURL, supabaseKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to create Supabase client: %w", err)
	}

	return &SupabaseResultRepository{
		client: client,
		bucket: config.GetSupabaseBucket(),
		logger: logger,
	}, nil
}

// Save uploads the result as a timestamped JSON object and returns its
// object path within the bucket.
func (r *SupabaseResultRepository) Save(ctx context.Context, result *domain.Result) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}

	objectPath := fmt.Sprintf("results/%s.json", time.Now().UTC().Format("20060102T150405Z"))
	upsert := true
	contentType := "application/json"

	_, err = r.client.Storage.UploadFile(r.bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		Upsert:      &upsert,
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload result to storage: %w", err)
	}

	r.logger.Debug("result uploaded", "bucket", r.bucket, "object", objectPath)
	return objectPath, nil
}
