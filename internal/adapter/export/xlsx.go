// Package export renders schedules and reports as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/iho/fincore/internal/domain"
)

// ContentType is the media type of the produced workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	ScheduleSheet   = "Schedule"
	SummarySheet    = "Summary"
	TimeSeriesSheet = "Time Series"
	ExpensesSheet   = "Expenses"
	IncomeSheet     = "Income"
	EntitiesSheet   = "Entities"

	moneyFormat = 4 // #,##0.00
)

var scheduleHeader = []any{"Period", "Due Date", "Status", "Payment", "Principal", "Interest", "Remaining", "Paid"}

// ScheduleWorkbook lays out one row per amortization period.
func ScheduleWorkbook(debt *domain.LongTermDebt) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ScheduleSheet); err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(debt.Schedule)+1)
	rows = append(rows, scheduleHeader)
	for _, e := range debt.Schedule {
		paid := e.PartialAmountPaid
		if e.Status == domain.EntryStatusPaid {
			paid = e.PaymentAmount
		}
		rows = append(rows, []any{
			e.Period,
			e.DueDate.Format("2006-01-02"),
			string(e.Status),
			major(e.PaymentAmount),
			major(e.PrincipalAmount),
			major(e.InterestAmount),
			major(e.RemainingPrincipal),
			major(paid),
		})
	}

	if err := writeRows(f, ScheduleSheet, rows); err != nil {
		return nil, err
	}
	if err := formatMoney(f, ScheduleSheet, "D:H"); err != nil {
		return nil, err
	}
	return f, nil
}

// AnalyticsWorkbook writes the totals, time series and each breakdown on
// their own sheets.
func AnalyticsWorkbook(report *domain.AnalyticsReport) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Start", report.Start.Format("2006-01-02")},
		{"End", report.End.Format("2006-01-02")},
		{"Granularity", string(report.Granularity)},
		{"Total Income", major(report.TotalIncome)},
		{"Total Expense", major(report.TotalExpense)},
		{"Net", major(report.Net)},
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return nil, err
	}

	series := [][]any{{"Label", "Start", "End", "Income", "Expense", "Net"}}
	for _, p := range report.TimeSeries {
		series = append(series, []any{
			p.Label,
			p.Start.Format("2006-01-02"),
			p.End.Format("2006-01-02"),
			major(p.Income),
			major(p.Expense),
			major(p.Net),
		})
	}
	if err := addSheet(f, TimeSeriesSheet, series, "D:F"); err != nil {
		return nil, err
	}

	breakdowns := []struct {
		sheet string
		items []domain.BreakdownItem
	}{
		{ExpensesSheet, report.ExpenseByCategory},
		{IncomeSheet, report.IncomeByCategory},
		{EntitiesSheet, report.ByEntity},
	}
	for _, b := range breakdowns {
		rows := [][]any{{"Key", "Label", "Income", "Expense", "Net", "Percentage", "Count"}}
		for _, item := range b.items {
			rows = append(rows, []any{
				item.Key,
				item.Label,
				major(item.Income),
				major(item.Expense),
				major(item.Net),
				item.Percentage,
				item.Count,
			})
		}
		if err := addSheet(f, b.sheet, rows, "C:E"); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Write streams the workbook to w and releases it.
func Write(w io.Writer, f *excelize.File) error {
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func addSheet(f *excelize.File, sheet string, rows [][]any, moneyCols string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeRows(f, sheet, rows); err != nil {
		return err
	}
	return formatMoney(f, sheet, moneyCols)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func formatMoney(f *excelize.File, sheet, cols string) error {
	style, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return err
	}
	return f.SetColStyle(sheet, cols, style)
}

// major converts cents to a float in major units for spreadsheet arithmetic.
func major(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}
