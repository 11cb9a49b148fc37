package excel

import (
	"github.com/xuri/excelize/v2"

	"github.com/sbgaming/cafedesk/internal/session"
)

var columns = session.WorkbookColumns

// BuildWorkbook renders one row per session under a header row. The same
// column layout serves both the archival artifact and the dashboard
// download. Callers own closing the returned file.
//
// The implementation lives in the session package so the session HTTP
// handler can build workbooks without an import cycle; this package
// keeps the original entry point for other callers.
func BuildWorkbook(entries []session.Entry, sheetName string) (*excelize.File, error) {
	return session.BuildWorkbook(entries, sheetName)
}
