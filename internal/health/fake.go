package health

import (
	"context"
	"strconv"
	"sync"

	"github.com/sadopc/stepr/internal/timeutil"
)

// Fake is an in-memory Source for tests. Records are served in fixed-size
// pages filtered by window; errors can be injected per read.
type Fake struct {
	mu sync.Mutex

	// Records served by ReadRecords, in order.
	Records []Record

	// PageSize is the number of records per page. Zero means everything in
	// one page.
	PageSize int

	// ReadErr, if set, is returned by ReadRecords after FailAfterPages
	// successful pages.
	ReadErr        error
	FailAfterPages int

	// AggregateErr, if set, is returned by AggregateTotal.
	AggregateErr error

	// Preferred restricts AggregateTotal to one source ID when non-empty.
	Preferred string

	// Avail controls Availability; Granted controls HasPermissions.
	Avail   Availability
	Granted bool

	// ReadCalls counts ReadRecords invocations across all pages.
	ReadCalls int
}

// NewFake creates an available, permission-granted fake source.
func NewFake(records ...Record) *Fake {
	return &Fake{
		Records: records,
		Avail:   Availability{Available: true},
		Granted: true,
	}
}

// Append adds records while the fake may be read concurrently.
func (f *Fake) Append(records ...Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Records = append(f.Records, records...)
}

func (f *Fake) ReadRecords(ctx context.Context, w timeutil.Window, pageToken string) ([]Record, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	page := 0
	if pageToken != "" {
		page, _ = strconv.Atoi(pageToken)
	}
	if f.ReadErr != nil && page >= f.FailAfterPages {
		f.ReadCalls++
		return nil, "", f.ReadErr
	}
	f.ReadCalls++

	var inWindow []Record
	for _, r := range f.Records {
		if w.Contains(r.StartTime) {
			inWindow = append(inWindow, r)
		}
	}

	size := f.PageSize
	if size <= 0 {
		size = len(inWindow)
	}
	start := page * size
	if start >= len(inWindow) {
		return nil, "", nil
	}
	end := start + size
	next := ""
	if end < len(inWindow) {
		next = strconv.Itoa(page + 1)
	} else {
		end = len(inWindow)
	}
	return inWindow[start:end], next, nil
}

func (f *Fake) AggregateTotal(ctx context.Context, w timeutil.Window) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.AggregateErr != nil {
		return 0, f.AggregateErr
	}
	var total int64
	for _, r := range f.Records {
		if !w.Contains(r.StartTime) {
			continue
		}
		if f.Preferred != "" && r.SourceID != f.Preferred {
			continue
		}
		total += r.Count
	}
	return total, nil
}

func (f *Fake) Availability(ctx context.Context) Availability {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Avail
}

func (f *Fake) HasPermissions(ctx context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Granted, nil
}
