// Package health defines the step data source contract: window-based,
// paginated record reads plus a pre-aggregated total fast path.
package health

import (
	"context"
	"time"

	"github.com/sadopc/stepr/internal/timeutil"
)

// Record is one step observation from a data source. Identity is ID; two
// records with the same ID are the same observation regardless of how many
// times they appear across paginated reads.
type Record struct {
	ID        string
	SourceID  string
	StartTime time.Time
	EndTime   time.Time
	Count     int64
}

// Availability describes whether the data source can be used at all, and if
// not, how the user can remedy that. Not an error state.
type Availability struct {
	Available   bool
	NeedsUpdate bool
	InstallURI  string
}

// Source abstracts the step-record provider. All read methods may fail; every
// failure is recoverable and must be handled by the caller, never fatal.
type Source interface {
	// ReadRecords returns one page of records inside w. An empty pageToken
	// requests the first page; a non-empty returned token means more pages
	// follow. The token is opaque to callers.
	ReadRecords(ctx context.Context, w timeutil.Window, pageToken string) ([]Record, string, error)

	// AggregateTotal returns the provider's pre-aggregated step total for w,
	// restricted to the preferred source. Fast path for when per-record
	// detail is not needed.
	AggregateTotal(ctx context.Context, w timeutil.Window) (int64, error)

	// Availability reports the platform capability state.
	Availability(ctx context.Context) Availability

	// HasPermissions reports whether the read capability has been granted.
	HasPermissions(ctx context.Context) (bool, error)
}

// ReadAll drains every page of records in w, calling fn for each record in
// page order. If a page read fails, the error is returned and fn keeps
// whatever it accumulated from earlier pages (partial-aggregate policy).
func ReadAll(ctx context.Context, src Source, w timeutil.Window, fn func(Record)) error {
	token := ""
	for {
		records, next, err := src.ReadRecords(ctx, w, token)
		if err != nil {
			return err
		}
		for _, r := range records {
			fn(r)
		}
		if next == "" {
			return nil
		}
		token = next
	}
}
