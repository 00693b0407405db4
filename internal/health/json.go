package health

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// jsonRecord is the sync-bridge interchange format for one step record.
type jsonRecord struct {
	ID        string `json:"id"`
	SourceID  string `json:"source_id"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Count     int64  `json:"count"`
}

// DecodeRecords parses a JSON array of step records as written by the sync
// bridge. Timestamps are RFC 3339.
func DecodeRecords(r io.Reader) ([]Record, error) {
	var raw []jsonRecord
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i, jr := range raw {
		start, err := time.Parse(time.RFC3339, jr.StartTime)
		if err != nil {
			return nil, fmt.Errorf("record %d: bad start_time %q: %w", i, jr.StartTime, err)
		}
		end, err := time.Parse(time.RFC3339, jr.EndTime)
		if err != nil {
			return nil, fmt.Errorf("record %d: bad end_time %q: %w", i, jr.EndTime, err)
		}
		records = append(records, Record{
			ID:        jr.ID,
			SourceID:  jr.SourceID,
			StartTime: start,
			EndTime:   end,
			Count:     jr.Count,
		})
	}
	return records, nil
}
