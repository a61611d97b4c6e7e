package notify

import "testing"

func TestFeedOrdering(t *testing.T) {
	f := NewFeed(10)
	f.Toast(LevelInfo, "first")
	f.ScrollTo("result")
	f.Toast(LevelSuccess, "third")

	events := f.Since(0)
	if len(events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.ID != uint64(i+1) {
			t.Errorf("Expected ID %d, got %d", i+1, e.ID)
		}
	}
	if events[1].Kind != KindScroll || events[1].Target != "result" {
		t.Errorf("Expected scroll to result, got %+v", events[1])
	}

	after := f.Since(2)
	if len(after) != 1 || after[0].Message != "third" {
		t.Errorf("Expected only the third event, got %+v", after)
	}
}

func TestFeedCapacity(t *testing.T) {
	f := NewFeed(2)
	f.Toast(LevelInfo, "a")
	f.Toast(LevelInfo, "b")
	f.Toast(LevelInfo, "c")

	events := f.Since(0)
	if len(events) != 2 {
		t.Fatalf("Expected 2 retained events, got %d", len(events))
	}
	if events[0].Message != "b" || events[1].Message != "c" {
		t.Errorf("Expected oldest event dropped, got %+v", events)
	}

	last, ok := f.Last()
	if !ok || last.ID != 3 {
		t.Errorf("Expected last event ID 3, got %+v", last)
	}
}

func TestFeedEmpty(t *testing.T) {
	f := NewFeed(0)
	if events := f.Since(0); events == nil || len(events) != 0 {
		t.Errorf("Expected empty non-nil slice, got %#v", events)
	}
	if _, ok := f.Last(); ok {
		t.Error("Expected no last event")
	}
}
