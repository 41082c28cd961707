package app

import (
	"context"
	"testing"
)

func TestConflictResolverRenameSuggestions(t *testing.T) {
	resolver := NewConflictResolver(
		[]ConflictItem{{Name: "report.pdf"}, {Name: "photos", IsFolder: true}},
		[]string{"report.pdf", "report (1).pdf", "photos"},
	)

	resolver.Resolve(ConflictRename, false)
	resolver.Resolve(ConflictRename, false)

	resolutions := resolver.Resolutions()
	if len(resolutions) != 2 {
		t.Fatalf("got %d resolutions, want 2", len(resolutions))
	}
	if resolutions[0].NewName != "report (2).pdf" {
		t.Fatalf("file rename suggestion = %q", resolutions[0].NewName)
	}
	if resolutions[1].NewName != "photos (1)" {
		t.Fatalf("folder rename suggestion = %q", resolutions[1].NewName)
	}
	if !resolver.Done() {
		t.Fatal("resolver not done after all items resolved")
	}
}

func TestConflictResolverApplyToAll(t *testing.T) {
	resolver := NewConflictResolver(
		[]ConflictItem{{Name: "a.txt"}, {Name: "b.txt"}, {Name: "c.txt"}},
		nil,
	)

	resolver.Resolve(ConflictSkip, true)

	if !resolver.Done() {
		t.Fatalf("apply-to-all left %d items pending", resolver.Remaining())
	}
	for _, resolution := range resolver.Resolutions() {
		if resolution.Choice != ConflictSkip {
			t.Fatalf("item %q resolved as %q, want skip", resolution.Item.Name, resolution.Choice)
		}
	}
}

func TestConflictResolverSequentialWalk(t *testing.T) {
	resolver := NewConflictResolver(
		[]ConflictItem{{Name: "a.txt"}, {Name: "b.txt"}},
		nil,
	)

	current, ok := resolver.Current()
	if !ok || current.Name != "a.txt" {
		t.Fatalf("first item = %+v, ok %v", current, ok)
	}

	resolver.Resolve(ConflictReplace, false)
	current, ok = resolver.Current()
	if !ok || current.Name != "b.txt" {
		t.Fatalf("second item = %+v, ok %v", current, ok)
	}
	if resolver.Done() {
		t.Fatal("resolver done with an item pending")
	}
}

type stubDeleter struct {
	err error

	calls   int
	lastIDs []string
}

func (s *stubDeleter) DeletePermanently(_ context.Context, ids []string) error {
	s.calls++
	s.lastIDs = ids

	return s.err
}

func TestPermanentDeleteRequiresExactConfirmation(t *testing.T) {
	deleter := &stubDeleter{}
	pd := NewPermanentDelete(deleter, []DeleteItem{{ID: "f1", Name: "a.txt", Size: 10}}, nil)

	for _, confirmation := range []string{"", "delete", "DELETE ", " DELETE"} {
		if err := pd.Execute(context.Background(), confirmation); err == nil {
			t.Fatalf("confirmation %q accepted", confirmation)
		}
	}
	if deleter.calls != 0 {
		t.Fatalf("delete reached the network %d times without confirmation", deleter.calls)
	}
}

func TestPermanentDeleteReportsReclaimedBytes(t *testing.T) {
	deleter := &stubDeleter{}
	var reclaimed int64
	pd := NewPermanentDelete(deleter, []DeleteItem{
		{ID: "f1", Name: "a.txt", Size: 1024},
		{ID: "f2", Name: "b.txt", Size: 2048},
	}, func(bytes int64) { reclaimed = bytes })

	if err := pd.Execute(context.Background(), "DELETE"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if reclaimed != 3072 {
		t.Fatalf("reclaimed = %d, want 3072", reclaimed)
	}
	if len(deleter.lastIDs) != 2 || deleter.lastIDs[0] != "f1" || deleter.lastIDs[1] != "f2" {
		t.Fatalf("deleted ids = %v", deleter.lastIDs)
	}
}

func TestPermanentDeleteFailureSkipsCallback(t *testing.T) {
	deleter := &stubDeleter{err: context.DeadlineExceeded}
	called := false
	pd := NewPermanentDelete(deleter, []DeleteItem{{ID: "f1", Size: 10}}, func(int64) { called = true })

	if err := pd.Execute(context.Background(), "DELETE"); err == nil {
		t.Fatal("server failure not surfaced")
	}
	if called {
		t.Fatal("reclaim callback ran on failure")
	}
}
