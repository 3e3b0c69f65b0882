// Package report renders booking lists for download.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/BruksfildServices01/termine-api/internal/dto"
)

const csvDateTimeLayout = "2006-01-02 15:04:05"

var csvHeader = []string{
	"start_date_time",
	"first_name",
	"surname",
	"phone",
	"office",
	"secret",
	"booked_by",
}

// WriteCSV writes one row per booking, slot times in loc wall clock.
func WriteCSV(w io.Writer, records []dto.BookingRecord, loc *time.Location) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{
			r.StartDateTime.In(loc).Format(csvDateTimeLayout),
			r.FirstName,
			r.Surname,
			r.Phone,
			r.Office,
			r.Secret,
			r.BookedBy,
		}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
