package journal_test

import (
	"context"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/stylewatch/internal/dbopen"
	"github.com/hazyhaar/stylewatch/internal/journal"
)

func TestRecordAndRecent(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(journal.Schema))
	j := journal.New(db)
	ctx := context.Background()

	j.Record(ctx, journal.Event{SessionID: "ses_1", Kind: journal.KindSessionOpen})
	j.Record(ctx, journal.Event{
		SessionID: "ses_1",
		Kind:      journal.KindCapture,
		Selector:  ".btn",
		State:     "hover",
		Origin:    "live",
		CreatedAt: time.Now().Unix() + 1,
	})
	j.Record(ctx, journal.Event{SessionID: "ses_2", Kind: journal.KindSessionOpen})

	events, err := j.Recent(ctx, "ses_1", 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Newest first.
	if events[0].Kind != journal.KindCapture {
		t.Errorf("first event = %q, want capture", events[0].Kind)
	}
	if events[0].Selector != ".btn" || events[0].State != "hover" {
		t.Errorf("capture event = %+v", events[0])
	}
	if events[0].ID == "" {
		t.Error("event id not stamped")
	}
}

func TestRecentLimit(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(journal.Schema))
	j := journal.New(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		j.Record(ctx, journal.Event{SessionID: "ses_1", Kind: journal.KindCapture})
	}
	events, err := j.Recent(ctx, "ses_1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
}

func TestNilJournalIsNoop(t *testing.T) {
	var j *journal.Journal
	ctx := context.Background()

	j.Record(ctx, journal.Event{SessionID: "ses_1", Kind: journal.KindCapture})
	events, err := j.Recent(ctx, "ses_1", 10)
	if err != nil {
		t.Fatalf("recent on nil journal: %v", err)
	}
	if events != nil {
		t.Fatalf("events = %v, want nil", events)
	}
}

func TestCleanup(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(journal.Schema))
	j := journal.New(db)
	ctx := context.Background()

	old := time.Now().Unix() - 10*86400
	j.Record(ctx, journal.Event{SessionID: "ses_1", Kind: journal.KindCapture, CreatedAt: old})
	j.Record(ctx, journal.Event{SessionID: "ses_1", Kind: journal.KindCapture})

	if err := journal.Cleanup(ctx, db, 7, false); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	events, err := j.Recent(ctx, "ses_1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events after cleanup, want 1", len(events))
	}
}
