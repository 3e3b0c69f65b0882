package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/BruksfildServices01/termine-api/internal/dto"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"

	sheetName = "Termine"
)

type column struct {
	title string
	width float64
}

var xlsxColumns = []column{
	{"Termin", 15},
	{"Uhrzeit", 8},
	{"Vorname", 18},
	{"Nachname", 15},
	{"Telefon", 18},
	{"Berechtigungscode", 15},
	{"Behörde", 15},
	{"Gebucht von", 15},
	{"Gebucht am", 15},
}

// WriteXLSX renders the booking list as a single-sheet workbook. Date and
// time cells carry the loc wall clock since spreadsheets have no zones.
func WriteXLSX(w io.Writer, records []dto.BookingRecord, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	dateFmt := "dd.mm.yyyy"
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("date style: %w", err)
	}
	timeFmt := "hh:mm"
	timeStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &timeFmt})
	if err != nil {
		return fmt.Errorf("time style: %w", err)
	}

	// --------------------------------------------------
	// Header
	// --------------------------------------------------
	for i, col := range xlsxColumns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, col.width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
		if err := f.SetCellStr(sheetName, name+"1", col.title); err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetName, "A1", "I1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	// --------------------------------------------------
	// Rows
	// --------------------------------------------------
	for i, r := range records {
		row := i + 2
		start := wallClock(r.StartDateTime, loc)
		values := []any{
			start,
			start,
			r.FirstName,
			r.Surname,
			r.Phone,
			r.Secret,
			r.Office,
			r.BookedBy,
			wallClock(r.BookedAt, loc),
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}

	if n := len(records); n > 0 {
		last := n + 1
		for _, s := range []struct {
			from, to string
			style    int
		}{
			{"A2", fmt.Sprintf("A%d", last), dateStyle},
			{"B2", fmt.Sprintf("B%d", last), timeStyle},
			{"I2", fmt.Sprintf("I%d", last), dateStyle},
		} {
			if err := f.SetCellStyle(sheetName, s.from, s.to, s.style); err != nil {
				return fmt.Errorf("cell style: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func wallClock(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
