package session

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WorkbookColumns is the shared column layout for the archival artifact
// and the dashboard download.
var WorkbookColumns = []string{
	"Customer Name",
	"Phone Number",
	"Age",
	"Payment Mode",
	"Number of People",
	"Duration (Hours)",
	"Snacks",
	"Total Amount",
	"Date",
	"Time",
	"Status",
}

// BuildWorkbook renders one row per session under a header row. The same
// column layout serves both the archival artifact and the dashboard
// download. Callers own closing the returned file.
func BuildWorkbook(entries []Entry, sheetName string) (*excelize.File, error) {
	f := excelize.NewFile()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheetName, "A1", &WorkbookColumns); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot write header row: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("cannot address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheetName, cell, rowFor(&e)); err != nil {
			f.Close()
			return nil, fmt.Errorf("cannot write row %d: %w", i+2, err)
		}
	}

	return f, nil
}

func rowFor(e *Entry) *[]interface{} {
	age := "-"
	if e.AgeYears > 0 {
		age = fmt.Sprintf("%d", e.AgeYears)
	}

	paymentMode := e.PaymentMode
	if paymentMode == "" || paymentMode == PaymentModeOffline {
		paymentMode = "cash"
	}

	status := "New"
	if e.Renewed {
		status = "Renewed"
	}

	row := []interface{}{
		e.CustomerName,
		e.PhoneNumber,
		age,
		paymentMode,
		e.PartySize,
		e.DurationHours,
		e.SnacksDescription(),
		e.SubTotal,
		e.StartedAt.Format("02/01/2006"),
		e.StartedAt.Format("3:04:05 PM"),
		status,
	}
	return &row
}
