package wishlist

import (
	"testing"
	"time"
)

func TestDedupe(t *testing.T) {
	t0 := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	in := []Entry{
		{ProductID: "p2", AddedAt: t0},
		{ProductID: "p1", AddedAt: t0.Add(time.Minute)},
		{ProductID: "p2", AddedAt: t0.Add(2 * time.Minute)},
		{ProductID: " "},
		{ProductID: "p3"},
		{ProductID: "p1"},
	}
	got := Dedupe(in)
	want := []string{"p2", "p1", "p3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %+v", len(want), got)
	}
	for i, id := range want {
		if got[i].ProductID != id {
			t.Fatalf("entry %d: expected %s, got %s", i, id, got[i].ProductID)
		}
	}
	if !got[0].AddedAt.Equal(t0) {
		t.Fatalf("first occurrence must win, got %v", got[0].AddedAt)
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}
