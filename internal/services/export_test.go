package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/itemmanager/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryObjects struct {
	ensured   bool
	objects   map[string][]byte
	ensureErr error
}

func (m *memoryObjects) EnsureBucket(context.Context) error {
	m.ensured = true
	return m.ensureErr
}

func (m *memoryObjects) PutBytes(_ context.Context, key string, data []byte, _ string) error {
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return nil
}

func (m *memoryObjects) Bucket() string { return "items" }

func TestExport(t *testing.T) {
	ctx := context.Background()
	items := NewItemService(newFakeItemRepo(), nil, nil)
	_, err := items.Create(ctx, types.Item{Name: "X", Price: 10})
	require.NoError(t, err)

	objects := &memoryObjects{}
	svc := NewExportService(items, objects)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	key, snapshot, err := svc.Export(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "exports/items-1700000000.json", key)
	assert.Equal(t, 1, snapshot.Count)
	assert.True(t, objects.ensured)

	var stored Snapshot
	require.NoError(t, json.Unmarshal(objects.objects[key], &stored))
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "X", stored.Items[0].Name)

	key, _, err = svc.Export(ctx, "custom.json")
	require.NoError(t, err)
	assert.Equal(t, "custom.json", key)
}

func TestExportBucketFailure(t *testing.T) {
	objects := &memoryObjects{ensureErr: errors.New("denied")}
	svc := NewExportService(NewItemService(newFakeItemRepo(), nil, nil), objects)

	_, _, err := svc.Export(context.Background(), "")
	assert.ErrorIs(t, err, objects.ensureErr)
	assert.Empty(t, objects.objects)
}
