package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewFileStore(t *testing.T) {
	t.Run("creates data directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")

		_, err := NewFileStore(dir)
		if err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("data directory not created: %v", err)
		}
	})

	t.Run("works with existing directory", func(t *testing.T) {
		if _, err := NewFileStore(t.TempDir()); err != nil {
			t.Fatalf("NewFileStore() error = %v", err)
		}
	})
}

func TestFileStore_SetGet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{name: "simple value", key: "dynamic-machines", value: `{"m1":{}}`},
		{name: "empty value", key: "content-data", value: ""},
		{name: "key with slash rejected", key: "a/b", value: "x", wantErr: true},
		{name: "key with dotdot rejected", key: "..", value: "x", wantErr: true},
		{name: "empty key rejected", key: "", value: "x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewFileStore(t.TempDir())
			if err != nil {
				t.Fatalf("NewFileStore() error = %v", err)
			}

			ctx := context.Background()
			err = s.Set(ctx, tt.key, []byte(tt.value))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			got, err := s.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != tt.value {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestFileStore_GetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	_, err = s.Get(context.Background(), "never-written")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestFileStore_Overwrite(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("old")); err != nil {
		t.Fatalf("first Set() error = %v", err)
	}
	if err := s.Set(ctx, "k", []byte("new")); err != nil {
		t.Fatalf("second Set() error = %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Get() = %q, want %q", got, "new")
	}
}

// A crash between temp-file write and rename must leave the previous
// value intact: a stray temp file must never shadow the real one.
func TestFileStore_AbandonedTempFileIgnored(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("committed")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Simulate a write that died before rename.
	if err := os.WriteFile(filepath.Join(dir, ".tmp-crashed"), []byte("partial"), 0644); err != nil {
		t.Fatalf("writing stray temp file: %v", err)
	}

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "committed" {
		t.Errorf("Get() = %q, want %q", got, "committed")
	}
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := s.Set(context.Background(), "k", []byte(strings.Repeat("x", i))); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestFileStore_Ping(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if s.Backend() != "filesystem" {
		t.Errorf("Backend() = %q, want filesystem", s.Backend())
	}

	os.RemoveAll(dir)
	if err := s.Ping(context.Background()); err == nil {
		t.Error("Ping() expected error after data dir removed")
	}
}
