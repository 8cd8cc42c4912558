package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/risk-engine/internal/position"
	"github.com/ducminhle1904/risk-engine/internal/risk"
)

// ExcelReporter exports trade history and risk events to an Excel workbook
type ExcelReporter struct{}

// NewExcelReporter creates a new Excel reporter
func NewExcelReporter() *ExcelReporter {
	return &ExcelReporter{}
}

// WriteTradesXLSX writes the trade history and risk events to path
func (r *ExcelReporter) WriteTradesXLSX(records []position.TradeRecord, events []risk.RiskEvent, path string) error {
	// Ensure directory exists before creating file
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const eventsSheet = "Risk Events"

	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	if _, err := fx.NewSheet(eventsSheet); err != nil {
		return err
	}

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, records, headerStyle); err != nil {
		return err
	}
	if err := r.writeEventsSheet(fx, eventsSheet, events, headerStyle); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

func (r *ExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, records []position.TradeRecord, headerStyle int) error {
	headers := []interface{}{"Symbol", "Side", "Size", "Entry Price", "Exit Price", "Leverage", "PnL", "Opened At", "Closed At", "Duration"}
	if err := fx.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "J1", headerStyle); err != nil {
		return err
	}

	for i, record := range records {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			record.Symbol,
			record.Side.String(),
			record.Size,
			record.EntryPrice,
			record.ExitPrice,
			record.Leverage,
			record.PnL,
			record.OpenedAt.Format("2006-01-02 15:04:05"),
			record.ClosedAt.Format("2006-01-02 15:04:05"),
			record.Duration.String(),
		}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}

func (r *ExcelReporter) writeEventsSheet(fx *excelize.File, sheet string, events []risk.RiskEvent, headerStyle int) error {
	headers := []interface{}{"Timestamp", "Reason", "Portfolio Value", "Daily PnL", "Drawdown", "Risk Level", "Risk Score"}
	if err := fx.SetSheetRow(sheet, "A1", &headers); err != nil {
		return err
	}
	if err := fx.SetCellStyle(sheet, "A1", "G1", headerStyle); err != nil {
		return err
	}

	for i, event := range events {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{
			event.Timestamp.Format("2006-01-02 15:04:05"),
			event.Reason,
			event.PortfolioValue,
			event.DailyPnL,
			event.Drawdown,
			string(event.Metrics.Level),
			event.Metrics.Score(),
		}
		if err := fx.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return nil
}
