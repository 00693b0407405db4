package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/stepr/internal/history"
)

type jsonExport struct {
	ExportedAt string                 `json:"exported_at"`
	Date       string                 `json:"date"`
	DailySteps int64                  `json:"daily_steps"`
	Count      int                    `json:"count"`
	Hours      []history.HourlyRecord `json:"hours"`
}

func ToJSON(date string, records []history.HourlyRecord, dailyTotal int64, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Date:       date,
		DailySteps: dailyTotal,
		Count:      len(records),
		Hours:      records,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
