package export

import (
	"context"
	"fmt"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/export"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/bonus"
)

var (
	financeHeader  = []string{"Projekt ID", "Projekt", "Kunde", "Stundensatz", "Stundensatz vor Ort", "Bonussatz", "Stunden Remote", "Stunden vor Ort", "Stunden", "Bonus", "Umsatz"}
	customerHeader = []string{"Datum", "Mitarbeiter", "Beschreibung", "Stunden"}
)

type ExportServiceImpl struct {
	reportService report.ReportService
}

func NewExportService(reportService report.ReportService) export.ExportService {
	return &ExportServiceImpl{reportService: reportService}
}

// Finance renders one row per project for the period, summed from the
// finance matrix so both always agree.
func (s *ExportServiceImpl) Finance(ctx context.Context, req export.FinanceExportRequest) (export.File, error) {
	if err := req.Validate(); err != nil {
		return export.File{}, err
	}

	matrix, err := s.reportService.Finance(ctx, report.FinanceRequest{Year: req.Period.Year, Month: int(req.Period.Month)})
	if err != nil {
		return export.File{}, err
	}
	data := financeExport(req.Period, matrix)

	file := export.File{
		Filename:    fmt.Sprintf("Finanzbericht_%s.%s", req.Period.Suffix(), req.Format),
		ContentType: req.Format.ContentType(),
	}
	if req.Format == export.FormatJSON {
		file.Body, err = writeJSON(data)
		return file, err
	}

	records := [][]string{financeHeader}
	for _, p := range data.Projects {
		records = append(records, []string{
			defuse(p.ProjectID),
			defuse(p.ProjectName),
			defuse(p.Client),
			fixedNull(p.HourlyRate),
			fixedNull(p.OnsiteHourlyRate),
			p.BonusRate.String(),
			fixed(p.RemoteHours),
			fixed(p.OnsiteHours),
			fixed(p.TotalHours),
			fixed(p.Bonus),
			fixed(p.Revenue),
		})
	}
	records = append(records, []string{"", "Gesamt", "", "", "", "", "", "", fixed(data.TotalHours), fixed(data.TotalBonus), fixed(data.TotalRevenue)})

	file.Body, err = writeCSV(records)
	return file, err
}

func financeExport(period export.Period, matrix report.FinanceReport) export.FinanceExport {
	data := export.FinanceExport{
		Period:       period.Suffix(),
		Projects:     []export.FinanceRow{},
		TotalHours:   matrix.TotalHours,
		TotalBonus:   matrix.TotalBonus,
		TotalRevenue: matrix.TotalRevenue,
	}
	for _, t := range matrix.ByProject() {
		data.Projects = append(data.Projects, export.FinanceRow{
			ProjectID:        t.ProjectKey,
			ProjectName:      t.ProjectName,
			Client:           t.Client,
			HourlyRate:       t.HourlyRate,
			OnsiteHourlyRate: t.OnsiteHourlyRate,
			BonusRate:        t.BonusRate,
			RemoteHours:      t.Hours.Remote,
			OnsiteHours:      t.Hours.Onsite,
			TotalHours:       t.Hours.Total(),
			Bonus:            bonus.Round(t.Bonus.TotalBonus),
			Revenue:          bonus.Round(t.Revenue),
		})
	}
	return data
}

func (s *ExportServiceImpl) Customer(ctx context.Context, req export.CustomerExportRequest) (export.File, error) {
	if err := req.Validate(); err != nil {
		return export.File{}, err
	}

	cr, err := s.reportService.CustomerReport(ctx, report.CustomerReportRequest{ProjectID: req.ProjectID, Month: req.Month})
	if err != nil {
		return export.File{}, err
	}

	file := export.File{
		Filename:    fmt.Sprintf("Kundenbericht_%s_%s.%s", safeFilename(cr.Client), cr.Month, req.Format),
		ContentType: req.Format.ContentType(),
	}
	if req.Format == export.FormatJSON {
		file.Body, err = writeJSON(cr)
		return file, err
	}

	records := [][]string{customerHeader}
	for _, e := range cr.Entries {
		records = append(records, []string{e.Date, defuse(e.Employee), defuse(e.Description), fixed(e.Hours)})
	}
	records = append(records, []string{"", "Gesamt", "", fixed(cr.TotalHours)})
	if cr.HoursRemaining.Valid {
		records = append(records, []string{"", "Reststunden", "", fixed(cr.HoursRemaining.Decimal)})
	}
	if cr.Note != "" {
		records = append(records, []string{"", "Notiz", defuse(cr.Note), ""})
	}

	file.Body, err = writeCSV(records)
	return file, err
}
