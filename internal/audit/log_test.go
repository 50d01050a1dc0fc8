package audit

import (
	"path/filepath"
	"testing"

	"github.com/torii-sec/mamori/internal/models"
)

func TestLog_RecentMostRecentFirst(t *testing.T) {
	l := NewLog()
	l.Record(models.SeverityInfo, "first")
	l.Record(models.SeveritySuccess, "second")
	l.Record(models.SeverityWarning, "third")

	got := l.Recent(2)
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	if got[0].Message != "third" || got[1].Message != "second" {
		t.Errorf("order = [%s %s], want most recent first", got[0].Message, got[1].Message)
	}

	all := l.Recent(0)
	if len(all) != 3 {
		t.Errorf("Recent(0) returned %d entries, want all 3", len(all))
	}
}

func TestLog_CapacityDropsOldest(t *testing.T) {
	l := NewLog(WithCapacity(2))
	l.Record(models.SeverityInfo, "a")
	l.Record(models.SeverityInfo, "b")
	l.Record(models.SeverityInfo, "c")
	if l.Len() != 2 {
		t.Fatalf("Len = %d, want 2", l.Len())
	}
	got := l.Recent(10)
	if got[0].Message != "c" || got[1].Message != "b" {
		t.Errorf("oldest entry should be dropped, got %v", got)
	}
}

func TestLog_Clear(t *testing.T) {
	l := NewLog()
	l.Record(models.SeverityError, "boom")
	l.Clear()
	if l.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", l.Len())
	}
}

func TestSQLiteSink_WriteAndRecent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	sink, err := NewSQLiteSink(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteSink: %v", err)
	}
	defer sink.Close()

	l := NewLog(WithSink(sink))
	l.Record(models.SeverityInfo, "ingested doc")
	l.Record(models.SeverityWarning, "sensitive query blocked")

	got, err := sink.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("archive has %d entries, want 2", len(got))
	}
	if got[0].Message != "sensitive query blocked" || got[0].Severity != models.SeverityWarning {
		t.Errorf("latest archived entry = %+v", got[0])
	}

	// Clearing the in-memory log keeps the archive.
	l.Clear()
	got, _ = sink.Recent(10)
	if len(got) != 2 {
		t.Errorf("archive should survive Clear, has %d entries", len(got))
	}
}
