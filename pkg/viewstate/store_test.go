package viewstate

import (
	"path/filepath"
	"testing"

	"github.com/vanderheijden86/relmap/pkg/model"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	if _, ok, err := store.Get("acct-1"); err != nil || ok {
		t.Fatalf("expected miss on empty store, got ok=%v err=%v", ok, err)
	}

	want := model.ToggleState{HidePassiveNodes: true, MinInteractions: 3}
	if err := store.Put("acct-1", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := store.Get("acct-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	// States are keyed per root.
	if _, ok, _ := store.Get("acct-2"); ok {
		t.Error("expected miss for different root")
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewstate.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	if _, ok, err := store.Get("acct-1"); err != nil || ok {
		t.Fatalf("expected miss on fresh database, got ok=%v err=%v", ok, err)
	}

	want := model.ToggleState{ShowExternalNodes: true, ShowHierarchy: true, MinInteractions: 5}
	if err := store.Put("acct-1", want); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := store.Get("acct-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSQLiteStore_PutReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewstate.db")
	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer store.Close()

	if err := store.Put("acct-1", model.ToggleState{MinInteractions: 1}); err != nil {
		t.Fatal(err)
	}
	if err := store.Put("acct-1", model.ToggleState{MinInteractions: 9, HidePassiveNodes: true}); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.Get("acct-1")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.MinInteractions != 9 || !got.HidePassiveNodes {
		t.Errorf("expected replaced state, got %+v", got)
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewstate.db")

	store, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put("acct-1", model.ToggleState{ShowHierarchy: true}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	got, ok, err := reopened.Get("acct-1")
	if err != nil || !ok {
		t.Fatalf("expected persisted state after reopen, got ok=%v err=%v", ok, err)
	}
	if !got.ShowHierarchy {
		t.Errorf("expected ShowHierarchy persisted, got %+v", got)
	}
}
