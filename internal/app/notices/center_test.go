package notices

import (
	"fmt"
	"testing"
	"time"
)

func TestRecentNewestFirst(t *testing.T) {
	c := NewCenter()
	c.Success("first")
	c.Warn("second")
	c.Error("third")

	got := c.Recent()
	if len(got) != 3 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Message != "third" || got[0].Level != LevelError {
		t.Fatalf("newest = %+v", got[0])
	}
	if got[2].Message != "first" || got[2].Level != LevelSuccess {
		t.Fatalf("oldest = %+v", got[2])
	}
}

func TestFeedIsBounded(t *testing.T) {
	c := NewCenter()
	for i := 0; i < defaultLimit+10; i++ {
		c.Success(fmt.Sprintf("msg %d", i))
	}
	got := c.Recent()
	if len(got) != defaultLimit {
		t.Fatalf("len = %d, want %d", len(got), defaultLimit)
	}
	if got[0].Message != fmt.Sprintf("msg %d", defaultLimit+9) {
		t.Fatalf("newest = %q", got[0].Message)
	}
	if got[len(got)-1].Message != "msg 10" {
		t.Fatalf("oldest kept = %q", got[len(got)-1].Message)
	}
}

func TestPrune(t *testing.T) {
	c := NewCenter()
	clock := time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return clock }

	c.Success("old")
	clock = clock.Add(2 * time.Hour)
	c.Success("recent")

	dropped := c.Prune(time.Hour)
	if dropped != 1 {
		t.Fatalf("dropped = %d, want 1", dropped)
	}
	got := c.Recent()
	if len(got) != 1 || got[0].Message != "recent" {
		t.Fatalf("remaining = %+v", got)
	}
}
