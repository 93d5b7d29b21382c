package journal

import (
	"fmt"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-httpkit/pkg/requests"
)

func TestBoltJournalListsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		RecordTTL:       time.Hour,
		CleanupInterval: time.Hour,
	}

	storeRaw, err := openBolt(dir+"/journal.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltJournal)
	defer store.Close()

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		d := requests.Dispatch{
			ID:        fmt.Sprintf("d%d", i),
			Method:    "GET",
			URL:       fmt.Sprintf("https://example.com/%d", i),
			Status:    200,
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.Append(d); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recent))
	}
	if recent[0].ID != "d2" || recent[1].ID != "d1" {
		t.Fatalf("expected newest first, got %s then %s", recent[0].ID, recent[1].ID)
	}
	if recent[0].URL != "https://example.com/2" || recent[0].Status != 200 {
		t.Fatalf("record round trip = %+v", recent[0])
	}
}

func TestBoltJournalExpiresRecords(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		RecordTTL:       time.Second,
		CleanupInterval: time.Second,
	}

	storeRaw, err := openBolt(dir+"/journal.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltJournal)
	defer store.Close()

	old := requests.Dispatch{ID: "old", StartedAt: time.Now().Add(-2 * time.Second)}
	if err := store.Append(old); err != nil {
		t.Fatalf("Append old: %v", err)
	}

	// Fast-forward cleanup cadence and trigger expiry via the next append.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	fresh := requests.Dispatch{ID: "fresh", StartedAt: time.Now()}
	if err := store.Append(fresh); err != nil {
		t.Fatalf("Append fresh: %v", err)
	}

	recent, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "fresh" {
		t.Fatalf("expected only the fresh record, got %#v", recent)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Append(requests.Dispatch{ID: "x"}); err != nil {
		t.Fatalf("noop store Append: %v", err)
	}
	recent, err := store.Recent(5)
	if err != nil || recent != nil {
		t.Fatalf("noop Recent = %v, %v", recent, err)
	}
}

func TestNewStoreRejectsBadConfig(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported journal type")
	}
	if _, err := NewStore("bbolt", "  ", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without a path")
	}
}
