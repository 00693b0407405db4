package health

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/stepr/internal/timeutil"
)

func fakeRecord(id string, hour int, count int64) Record {
	start := time.Date(2025, 6, 10, hour, 0, 0, 0, time.UTC)
	return Record{
		ID: id, SourceID: "P",
		StartTime: start, EndTime: start.Add(time.Minute), Count: count,
	}
}

func day() timeutil.Window {
	return timeutil.DayWindow(time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC), time.UTC)
}

// ============================================================
// ReadAll
// ============================================================

func TestReadAllDrainsPages(t *testing.T) {
	fake := NewFake(
		fakeRecord("a", 8, 1),
		fakeRecord("b", 9, 2),
		fakeRecord("c", 10, 3),
		fakeRecord("d", 11, 4),
	)
	fake.PageSize = 2

	var got []Record
	err := ReadAll(context.Background(), fake, day(), func(r Record) {
		got = append(got, r)
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("records = %d, want 4", len(got))
	}
	if fake.ReadCalls != 2 {
		t.Fatalf("page reads = %d, want 2", fake.ReadCalls)
	}
}

func TestReadAllKeepsPartialWorkOnError(t *testing.T) {
	fake := NewFake(
		fakeRecord("a", 8, 1),
		fakeRecord("b", 9, 2),
	)
	fake.PageSize = 1
	fake.ReadErr = errors.New("page gone")
	fake.FailAfterPages = 1

	var got []Record
	err := ReadAll(context.Background(), fake, day(), func(r Record) {
		got = append(got, r)
	})
	if err == nil {
		t.Fatal("expected page error")
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("partial records = %+v, want the first page", got)
	}
}

func TestReadAllWindowFilter(t *testing.T) {
	outside := fakeRecord("x", 8, 1)
	outside.StartTime = outside.StartTime.AddDate(0, 0, 1)

	fake := NewFake(fakeRecord("a", 8, 1), outside)

	var got []Record
	if err := ReadAll(context.Background(), fake, day(), func(r Record) {
		got = append(got, r)
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("records = %+v", got)
	}
}

func TestReadAllCancelled(t *testing.T) {
	fake := NewFake(fakeRecord("a", 8, 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ReadAll(ctx, fake, day(), func(Record) {})
	if err == nil {
		t.Fatal("expected context error")
	}
}

// ============================================================
// Bridge JSON decoding
// ============================================================

func TestDecodeRecords(t *testing.T) {
	input := `[
		{"id":"a","source_id":"P","start_time":"2025-06-10T09:15:00Z","end_time":"2025-06-10T09:16:00Z","count":50},
		{"id":"b","source_id":"Q","start_time":"2025-06-10T09:20:00Z","end_time":"2025-06-10T09:21:00Z","count":30}
	]`

	records, err := DecodeRecords(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != "a" || records[0].Count != 50 {
		t.Fatalf("records[0] = %+v", records[0])
	}
	if records[0].StartTime.Hour() != 9 || records[0].StartTime.Minute() != 15 {
		t.Fatalf("start time = %v", records[0].StartTime)
	}
	if records[1].SourceID != "Q" {
		t.Fatalf("records[1] = %+v", records[1])
	}
}

func TestDecodeRecordsBadTimestamp(t *testing.T) {
	input := `[{"id":"a","source_id":"P","start_time":"yesterday","end_time":"2025-06-10T09:16:00Z","count":50}]`
	if _, err := DecodeRecords(strings.NewReader(input)); err == nil {
		t.Fatal("expected error for bad timestamp")
	}
}

func TestDecodeRecordsBadJSON(t *testing.T) {
	if _, err := DecodeRecords(strings.NewReader("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
