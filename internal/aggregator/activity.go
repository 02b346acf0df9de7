package aggregator

import (
	"github.com/noah-isme/reading-reports-api/internal/models"
	"github.com/noah-isme/reading-reports-api/pkg/sheet"
)

// ActivityAccumulator counts files and rows per owner. It serves the
// Assignment and Assessment exports, whose columns vary by product.
type ActivityAccumulator struct {
	reportType models.ReportType
	owners     map[string]*models.OwnerActivity
	order      []string
}

func NewActivityAccumulator(t models.ReportType) *ActivityAccumulator {
	return &ActivityAccumulator{
		reportType: t,
		owners:     make(map[string]*models.OwnerActivity),
	}
}

func (a *ActivityAccumulator) Add(file models.ReportFile, table *sheet.Table) {
	if table == nil || len(table.Rows) == 0 {
		return
	}
	owner, ok := a.owners[file.Owner]
	if !ok {
		owner = &models.OwnerActivity{Owner: file.Owner}
		a.owners[file.Owner] = owner
		a.order = append(a.order, file.Owner)
	}
	owner.Files++
	owner.Rows += len(table.Rows)
}

// Report returns per-owner counts in first-seen order, or nil without rows.
func (a *ActivityAccumulator) Report() *models.ActivityReport {
	if len(a.order) == 0 {
		return nil
	}
	report := &models.ActivityReport{
		ReportType: a.reportType,
		Owners:     make([]models.OwnerActivity, 0, len(a.order)),
	}
	for _, name := range a.order {
		owner := *a.owners[name]
		report.TotalFiles += owner.Files
		report.TotalRows += owner.Rows
		report.Owners = append(report.Owners, owner)
	}
	return report
}
