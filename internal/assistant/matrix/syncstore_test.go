package matrix

import (
	"context"
	"path/filepath"
	"testing"

	"maunium.net/go/mautrix/id"

	"github.com/3madMostafa/Alta-Video-Assistant/internal/assistant/store"
)

func newTestSyncStore(t *testing.T) *DBSyncStore {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return newDBSyncStore(s.DB())
}

func TestSyncStoreRoundTrip(t *testing.T) {
	ss := newTestSyncStore(t)
	ctx := context.Background()
	userID := id.UserID("@assistant:example.org")

	// First run: nothing saved yet.
	token, err := ss.LoadNextBatch(ctx, userID)
	if err != nil {
		t.Fatalf("LoadNextBatch: %v", err)
	}
	if token != "" {
		t.Errorf("token = %q, want empty on first run", token)
	}

	if err := ss.SaveNextBatch(ctx, userID, "s_100"); err != nil {
		t.Fatalf("SaveNextBatch: %v", err)
	}
	if err := ss.SaveFilterID(ctx, userID, "f_1"); err != nil {
		t.Fatalf("SaveFilterID: %v", err)
	}
	// Overwrite keeps the latest value.
	if err := ss.SaveNextBatch(ctx, userID, "s_200"); err != nil {
		t.Fatalf("SaveNextBatch: %v", err)
	}

	token, err = ss.LoadNextBatch(ctx, userID)
	if err != nil {
		t.Fatalf("LoadNextBatch: %v", err)
	}
	if token != "s_200" {
		t.Errorf("token = %q, want s_200", token)
	}

	filterID, err := ss.LoadFilterID(ctx, userID)
	if err != nil {
		t.Fatalf("LoadFilterID: %v", err)
	}
	if filterID != "f_1" {
		t.Errorf("filterID = %q, want f_1", filterID)
	}
}
