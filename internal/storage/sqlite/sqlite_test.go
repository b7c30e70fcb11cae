package sqlite_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdlib-go/tdjson-go/internal/storage/sqlite"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson"
	"github.com/tdlib-go/tdjson-go/pkg/tdjson/logging"
)

func newRecorder(t *testing.T) *sqlite.Recorder {
	t.Helper()
	rec, err := sqlite.NewRecorder(context.Background(), sqlite.RecorderConfig{
		DBPath: filepath.Join(t.TempDir(), "nested", "updates.db"),
		Logger: logging.Noop,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func TestRecorderSaveAndList(t *testing.T) {
	ctx := context.Background()
	rec := newRecorder(t)
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	_, err := rec.Save(ctx, tdjson.Object{"@type": "updateOption", "name": "version"}, base)
	require.NoError(t, err)
	id, err := rec.Save(ctx, tdjson.Object{"@type": "user", "id": json.Number("777000"), "@extra": "req-1"}, base.Add(time.Second))
	require.NoError(t, err)
	_, err = rec.Save(ctx, tdjson.Object{"@type": "updateOption", "name": "unix_time"}, base.Add(2*time.Second))
	require.NoError(t, err)

	all, err := rec.List(ctx, sqlite.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "unix_time", all[0].Payload["name"])
	assert.Equal(t, base.Add(2*time.Second), all[0].ReceivedAt)

	users, err := rec.List(ctx, sqlite.ListOptions{Type: "user"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, id, users[0].ID)
	assert.Equal(t, `"req-1"`, users[0].Extra)
	assert.Equal(t, json.Number("777000"), users[0].Payload["id"])

	limited, err := rec.List(ctx, sqlite.ListOptions{Type: "updateOption", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "unix_time", limited[0].Payload["name"])
	assert.Empty(t, limited[0].Extra)
}

func TestRecorderReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "updates.db")

	rec, err := sqlite.NewRecorder(ctx, sqlite.RecorderConfig{DBPath: path})
	require.NoError(t, err)
	_, err = rec.Save(ctx, tdjson.Object{"@type": "ok"}, time.Now())
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	rec, err = sqlite.NewRecorder(ctx, sqlite.RecorderConfig{DBPath: path})
	require.NoError(t, err)
	defer rec.Close()

	got, err := rec.List(ctx, sqlite.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRecorderRequiresPath(t *testing.T) {
	_, err := sqlite.NewRecorder(context.Background(), sqlite.RecorderConfig{})
	assert.Error(t, err)
}
