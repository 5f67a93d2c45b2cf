package history

import (
	"context"
	"reflect"
	"testing"

	"github.com/callwise/callwise/core"
)

// Interface compliance (compile-time assertion)
var _ core.RecordStore = (*InMemoryStore)(nil)

func TestInMemoryStore_PushFrontOrdering(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if err := s.PushFront(ctx, "k", "a", "b", "c"); err != nil {
		t.Fatalf("push: %v", err)
	}

	// The last pushed value reads at index 0.
	got, err := s.Range(ctx, "k", 0, -1)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"c", "b", "a"}) {
		t.Fatalf("got %v", got)
	}
}

func TestInMemoryStore_RangeIndices(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	if err := s.PushFront(ctx, "k", "a", "b", "c", "d"); err != nil {
		t.Fatalf("push: %v", err)
	}
	// List reads d, c, b, a.

	tests := []struct {
		start, stop int
		want        []string
	}{
		{0, 1, []string{"d", "c"}},
		{0, 100, []string{"d", "c", "b", "a"}},
		{-2, -1, []string{"b", "a"}},
		{2, 1, []string{}},
	}
	for _, tt := range tests {
		got, err := s.Range(ctx, "k", tt.start, tt.stop)
		if err != nil {
			t.Fatalf("range(%d,%d): %v", tt.start, tt.stop, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("range(%d,%d) = %v, want %v", tt.start, tt.stop, got, tt.want)
		}
	}
}

func TestInMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	if err := s.PushFront(ctx, "k", "a"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Fatalf("deleting a missing key must not error: %v", err)
	}
	got, _ := s.Range(ctx, "k", 0, -1)
	if len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}
