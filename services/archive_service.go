package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kendall-kelly/hantverk-dashboard/refdata"
)

const snapshotKeyPrefix = "snapshots/"

// ArchiveResult identifies an archived snapshot
type ArchiveResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// ArchiveService writes reference data snapshots to object storage as JSON
type ArchiveService struct {
	store ObjectStore
	now   func() time.Time
}

func NewArchiveService(store ObjectStore) *ArchiveService {
	return &ArchiveService{store: store, now: time.Now}
}

// Archive uploads snap under snapshots/<UTC timestamp>.json and returns a presigned link
func (s *ArchiveService) Archive(ctx context.Context, snap *refdata.Snapshot) (ArchiveResult, error) {
	if snap == nil || !snap.Loaded() {
		return ArchiveResult{}, fmt.Errorf("refusing to archive a snapshot that was never loaded")
	}

	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return ArchiveResult{}, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := snapshotKeyPrefix + s.now().UTC().Format("20060102T150405Z") + ".json"
	if err := s.store.PutObject(ctx, key, "application/json", body); err != nil {
		return ArchiveResult{}, fmt.Errorf("failed to archive snapshot: %w", err)
	}

	url, err := s.store.GetPresignedURL(ctx, key)
	if err != nil {
		return ArchiveResult{Key: key}, fmt.Errorf("failed to generate snapshot URL: %w", err)
	}
	return ArchiveResult{Key: key, URL: url}, nil
}
