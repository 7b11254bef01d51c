package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/launchdeck/internal/testutil"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createFixtureStore creates a store mirroring the shared fixture.
func createFixtureStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s := createTestStore(t, opts...)
	if err := s.Import(context.Background(), testutil.Dataset(t)); err != nil {
		t.Fatalf("Import() failed: %v", err)
	}
	return s
}
