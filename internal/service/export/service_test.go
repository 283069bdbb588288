package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/export"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/domain/report"
	"github.com/bonustracker/bonus-tracker-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fakeReportService struct {
	report.ReportService
	finance  report.FinanceReport
	customer report.CustomerReport
	lastReq  report.FinanceRequest
}

func (f *fakeReportService) Finance(_ context.Context, req report.FinanceRequest) (report.FinanceReport, error) {
	f.lastReq = req
	return f.finance, nil
}

func (f *fakeReportService) CustomerReport(_ context.Context, req report.CustomerReportRequest) (report.CustomerReport, error) {
	if req.ProjectID != f.customer.ProjectID {
		return report.CustomerReport{}, report.ErrProjectNotFound
	}
	return f.customer, nil
}

func cell(id int64, key, name, month, remote, onsite, bonus, revenue string) report.FinanceCell {
	return report.FinanceCell{
		ProjectID: id, ProjectKey: key, ProjectName: name, Client: "Thees", Month: month,
		RemoteHours: d(remote), OnsiteHours: d(onsite), TotalHours: d(remote).Add(d(onsite)),
		HourlyRate: decimal.NewNullDecimal(d("120")), BonusRate: d("0.02"),
		RemoteBonus: d(bonus), BonusAmount: d(bonus), Revenue: d(revenue),
	}
}

func financeFixture() report.FinanceReport {
	return report.FinanceReport{
		Year: 2026,
		Months: []report.FinanceMonth{
			{Month: "2026-01", Projects: []report.FinanceCell{
				cell(1, "P-1", "Alpha", "2026-01", "80", "0", "192", "9600"),
				cell(2, "P-2", "=HYPERLINK(\"x\")", "2026-01", "10", "0", "24", "1200"),
			}},
			{Month: "2026-02", Projects: []report.FinanceCell{
				cell(1, "P-1", "Alpha", "2026-02", "5.5", "0", "13.2", "660"),
			}},
		},
		TotalHours:   d("95.5"),
		TotalBonus:   d("229.2"),
		TotalRevenue: d("11460"),
	}
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	require.NoError(t, err)
	return records
}

func TestFinanceCSV(t *testing.T) {
	reports := &fakeReportService{finance: financeFixture()}
	svc := NewExportService(reports)

	file, err := svc.Finance(context.Background(), export.FinanceExportRequest{Format: export.FormatCSV, Period: export.YearPeriod(2026)})
	require.NoError(t, err)

	assert.Equal(t, "Finanzbericht_2026.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Equal(t, 0, reports.lastReq.Month)

	records := readCSV(t, file.Body)
	require.Len(t, records, 4)
	assert.Equal(t, financeHeader, records[0])
	assert.Equal(t, []string{"P-1", "Alpha", "Thees", "120.00", "", "0.02", "85.50", "0.00", "85.50", "205.20", "10260.00"}, records[1])
	assert.Equal(t, "'=HYPERLINK(\"x\")", records[2][1])
	assert.Equal(t, []string{"", "Gesamt", "", "", "", "", "", "", "95.50", "229.20", "11460.00"}, records[3])
}

func TestFinanceJSON_Month(t *testing.T) {
	reports := &fakeReportService{finance: financeFixture()}
	svc := NewExportService(reports)

	file, err := svc.Finance(context.Background(), export.FinanceExportRequest{Format: export.FormatJSON, Period: export.MonthPeriod(2026, 2)})
	require.NoError(t, err)

	assert.Equal(t, "Finanzbericht_2026-02.json", file.Filename)
	assert.Equal(t, 2, reports.lastReq.Month)

	var got export.FinanceExport
	require.NoError(t, json.Unmarshal(file.Body, &got))
	assert.Equal(t, "2026-02", got.Period)
	assert.Len(t, got.Projects, 2)
}

func TestFinance_InvalidRequest(t *testing.T) {
	svc := NewExportService(&fakeReportService{})

	_, err := svc.Finance(context.Background(), export.FinanceExportRequest{Format: "pdf", Period: export.Period{}})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Len(t, verrs, 2)
}

func TestCustomerCSV(t *testing.T) {
	reports := &fakeReportService{customer: report.CustomerReport{
		ProjectID:      1,
		ProjectName:    "Alpha",
		Client:         "Thees & Söhne GmbH",
		Month:          "2026-02",
		TotalHours:     d("4.5"),
		HoursRemaining: decimal.NewNullDecimal(d("95.5")),
		Entries: []report.CustomerEntry{
			{Date: "2026-02-03", Employee: "Anna", Description: "-rm -rf", Hours: d("4.5")},
		},
		Note: "Phase 1 abgeschlossen",
	}}
	svc := NewExportService(reports)

	file, err := svc.Customer(context.Background(), export.CustomerExportRequest{Format: export.FormatCSV, ProjectID: 1, Month: "2026-02"})
	require.NoError(t, err)

	assert.Equal(t, "Kundenbericht_Thees___S_hne_GmbH_2026-02.csv", file.Filename)
	records := readCSV(t, file.Body)
	require.Len(t, records, 5)
	assert.Equal(t, customerHeader, records[0])
	assert.Equal(t, []string{"2026-02-03", "Anna", "'-rm -rf", "4.50"}, records[1])
	assert.Equal(t, []string{"", "Gesamt", "", "4.50"}, records[2])
	assert.Equal(t, []string{"", "Reststunden", "", "95.50"}, records[3])
	assert.Equal(t, "Phase 1 abgeschlossen", records[4][2])

	_, err = svc.Customer(context.Background(), export.CustomerExportRequest{Format: export.FormatCSV, ProjectID: 9, Month: "2026-02"})
	assert.ErrorIs(t, err, report.ErrProjectNotFound)
}

func TestParseFormatAndPeriod(t *testing.T) {
	f, err := export.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, export.FormatCSV, f)

	f, err = export.ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, export.FormatJSON, f)

	_, err = export.ParseFormat("pdf")
	assert.ErrorIs(t, err, export.ErrUnsupportedFormat)

	p, err := export.ParsePeriod(2026, 0)
	require.NoError(t, err)
	assert.Equal(t, "2026", p.Suffix())

	_, err = export.ParsePeriod(2026, 13)
	assert.ErrorIs(t, err, export.ErrInvalidPeriod)
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "a_b.c-d", safeFilename("a/b.c-d"))
	assert.Equal(t, "___", safeFilename("\r\n\""))
}
