package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/itemmanager/apiserver/types"
)

// ObjectWriter stores a blob under a key.
type ObjectWriter interface {
	EnsureBucket(ctx context.Context) error
	PutBytes(ctx context.Context, key string, data []byte, contentType string) error
	Bucket() string
}

// Snapshot is the document written by an export.
type Snapshot struct {
	ExportedAt time.Time    `json:"exported_at"`
	Count      int          `json:"count"`
	Items      []types.Item `json:"items"`
}

// ExportService writes item snapshots to object storage.
type ExportService struct {
	items   *ItemService
	objects ObjectWriter
	now     func() time.Time
}

func NewExportService(items *ItemService, objects ObjectWriter) *ExportService {
	return &ExportService{items: items, objects: objects, now: time.Now}
}

// DefaultExportKey names a snapshot taken at t.
func DefaultExportKey(t time.Time) string {
	return fmt.Sprintf("exports/items-%d.json", t.Unix())
}

// Export writes every item as JSON under key, or under DefaultExportKey when
// key is empty, and returns the key used.
func (s *ExportService) Export(ctx context.Context, key string) (string, Snapshot, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return "", Snapshot{}, fmt.Errorf("list items: %w", err)
	}

	now := s.now().UTC()
	if key == "" {
		key = DefaultExportKey(now)
	}
	snapshot := Snapshot{ExportedAt: now, Count: len(items), Items: items}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}

	if err := s.objects.EnsureBucket(ctx); err != nil {
		return "", Snapshot{}, fmt.Errorf("ensure bucket %s: %w", s.objects.Bucket(), err)
	}
	if err := s.objects.PutBytes(ctx, key, data, "application/json"); err != nil {
		return "", Snapshot{}, err
	}
	return key, snapshot, nil
}
