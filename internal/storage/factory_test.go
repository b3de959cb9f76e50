package storage

import "testing"

func TestNewStoreKinds(t *testing.T) {
	if _, err := NewStore("", ""); err != nil {
		t.Fatalf("empty kind should default to memory: %v", err)
	}
	if _, err := NewStore("memory", ""); err != nil {
		t.Fatalf("memory: %v", err)
	}
	store, err := NewStore("sqlite", "dustgrid.db")
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if _, ok := store.(*SQLiteStore); !ok {
		t.Fatalf("expected *SQLiteStore, got %T", store)
	}
	if _, err := NewStore("bolt", ""); err == nil {
		t.Fatalf("expected error for unsupported backend")
	}
}

func TestCloseIfSupported(t *testing.T) {
	if err := CloseIfSupported(NewMemoryStore()); err != nil {
		t.Fatalf("memory store close: %v", err)
	}
	if err := CloseIfSupported(NewSQLiteStore("x")); err != nil {
		t.Fatalf("uninitialized sqlite close: %v", err)
	}
}
