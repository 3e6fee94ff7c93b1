package store

import (
	"context"
	"errors"
	"testing"
)

type machineDoc struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

func TestGetJSON(t *testing.T) {
	ctx := context.Background()
	def := machineDoc{Title: "default"}

	t.Run("round trip", func(t *testing.T) {
		s := NewMemoryStore()
		want := machineDoc{Title: "Excavator", Count: 3}
		if err := SetJSON(ctx, s, "k", want); err != nil {
			t.Fatalf("SetJSON() error = %v", err)
		}

		got := GetJSON(ctx, s, "k", def)
		if got != want {
			t.Errorf("GetJSON() = %+v, want %+v", got, want)
		}
	})

	t.Run("missing key yields default", func(t *testing.T) {
		s := NewMemoryStore()
		got := GetJSON(ctx, s, "missing", def)
		if got != def {
			t.Errorf("GetJSON() = %+v, want default", got)
		}
	})

	t.Run("malformed data yields default", func(t *testing.T) {
		s := NewMemoryStore()
		if err := s.Set(ctx, "k", []byte("{truncated")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}

		got := GetJSON(ctx, s, "k", def)
		if got != def {
			t.Errorf("GetJSON() = %+v, want default", got)
		}
	})

	t.Run("backend failure yields default", func(t *testing.T) {
		got := GetJSON(ctx, failingStore{}, "k", def)
		if got != def {
			t.Errorf("GetJSON() = %+v, want default", got)
		}
	})
}

func TestSetJSON_WriteFailurePropagates(t *testing.T) {
	err := SetJSON(context.Background(), failingStore{}, "k", machineDoc{})
	if err == nil {
		t.Fatal("SetJSON() expected error from failing backend")
	}
}

func TestSetJSON_UnencodableValue(t *testing.T) {
	err := SetJSON(context.Background(), NewMemoryStore(), "k", make(chan int))
	if err == nil {
		t.Fatal("SetJSON() expected error for unencodable value")
	}
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("backend down")
}
func (failingStore) Set(context.Context, string, []byte) error { return errors.New("backend down") }
func (failingStore) Ping(context.Context) error                { return errors.New("backend down") }
func (failingStore) Backend() string                           { return "failing" }
