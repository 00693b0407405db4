package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/sadopc/stepr/internal/history"
)

func ToCSV(date string, records []history.HourlyRecord, dailyTotal int64, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Date", "Hour", "Steps"}); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			date,
			r.Label,
			fmt.Sprintf("%d", r.Steps),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	if err := w.Write([]string{date, "total", fmt.Sprintf("%d", dailyTotal)}); err != nil {
		return err
	}

	return w.Error()
}
