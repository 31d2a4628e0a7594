// internal/app/system/csvutil/releases.go
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tenderinsight/hub/internal/domain/models"
)

// Export row cap. Exports beyond this are truncated rather than rejected;
// the caller reports the truncation to the client.
const MaxExportRows = 20000

var releaseHeader = []string{
	"tender_id", "title", "buyer", "province",
	"budget_min", "budget_max", "deadline", "description",
}

// WriteReleases writes tenders to w as CSV with a header row and returns
// the number of data rows written. Output is capped at MaxExportRows.
func WriteReleases(w io.Writer, tenders []models.Tender) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(releaseHeader); err != nil {
		return 0, fmt.Errorf("csvutil: write header: %w", err)
	}

	n := 0
	for _, t := range tenders {
		if n >= MaxExportRows {
			break
		}
		if err := cw.Write(releaseRow(t)); err != nil {
			return n, fmt.Errorf("csvutil: write row %d: %w", n+1, err)
		}
		n++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, fmt.Errorf("csvutil: flush: %w", err)
	}
	return n, nil
}

func releaseRow(t models.Tender) []string {
	return []string{
		t.TenderID,
		t.Title,
		t.Buyer,
		t.Province,
		floatField(t.BudgetMin),
		floatField(t.BudgetMax),
		timeField(t.Deadline),
		t.Description,
	}
}

func floatField(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func timeField(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}
