package site

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestEntryCacheServesUntilInvalidated(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := NewEntryCache(s, time.Hour)

	if err := s.SaveEntry(ctx, testEntry("first", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false)); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}
	got, err := c.ListEntries(ctx, false)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListEntries returned %d entries, want 1", len(got))
	}

	if err := s.SaveEntry(ctx, testEntry("second", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), false)); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}
	got, _ = c.ListEntries(ctx, false)
	if len(got) != 1 {
		t.Errorf("cached ListEntries returned %d entries, want 1", len(got))
	}

	c.Invalidate()
	got, _ = c.ListEntries(ctx, false)
	if want := []string{"second", "first"}; !equalStrings(slugs(got), want) {
		t.Errorf("ListEntries after Invalidate = %v, want %v", slugs(got), want)
	}
}

func TestEntryCacheExpires(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := NewEntryCache(s, time.Millisecond)

	if _, err := c.ListEntries(ctx, true); err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if err := s.SaveEntry(ctx, testEntry("late", time.Now().UTC(), false)); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	got, err := c.ListEntries(ctx, true)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("ListEntries after TTL returned %d entries, want 1", len(got))
	}
}

func TestEntryCacheEmptyIndex(t *testing.T) {
	s := setupTestStore(t)
	c := NewEntryCache(s, time.Hour)

	got, err := c.ListEntries(context.Background(), true)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if got == nil {
		t.Error("ListEntries should return an empty slice, not nil")
	}
}

func TestEntryCacheDrafts(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	c := NewEntryCache(s, time.Hour)

	if err := s.SaveEntry(ctx, testEntry("published", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), false)); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}
	if err := s.SaveEntry(ctx, testEntry("draft", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), true)); err != nil {
		t.Fatalf("SaveEntry failed: %v", err)
	}

	published, _ := c.ListEntries(ctx, false)
	if want := []string{"published"}; !equalStrings(slugs(published), want) {
		t.Errorf("published = %v, want %v", slugs(published), want)
	}
	all, _ := c.ListEntries(ctx, true)
	if want := []string{"draft", "published"}; !equalStrings(slugs(all), want) {
		t.Errorf("all = %v, want %v", slugs(all), want)
	}

	e, err := c.GetEntry(ctx, "draft")
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if !e.Draft {
		t.Error("GetEntry should return the draft")
	}
	if _, err := c.GetEntry(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetEntry missing error = %v, want ErrNotFound", err)
	}
}
