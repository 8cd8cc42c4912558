package reporting

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ducminhle1904/risk-engine/internal/position"
	"github.com/ducminhle1904/risk-engine/internal/risk"
)

// ConsoleReporter renders engine state as console tables
type ConsoleReporter struct{}

// NewConsoleReporter creates a new console reporter
func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintRiskSummary renders the engine's risk summary
func (r *ConsoleReporter) PrintRiskSummary(summary risk.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("RISK SUMMARY")
	t.SetStyle(table.StyleRounded)

	stopStatus := "✅ normal"
	if summary.EmergencyStop {
		stopStatus = fmt.Sprintf("🛑 STOPPED (%s)", summary.EmergencyReason)
	}

	t.AppendRows([]table.Row{
		{"🛡️ Emergency Stop", stopStatus},
		{"📊 Risk Level", fmt.Sprintf("%s (score %.2f)", summary.RiskLevel, summary.RiskScore)},
		{"💹 Daily PnL", fmt.Sprintf("$%.2f", summary.DailyPnL)},
		{"💰 Total PnL", fmt.Sprintf("$%.2f", summary.TotalPnL)},
		{"📉 Drawdown", fmt.Sprintf("%.2f%%", summary.CurrentDrawdown*100)},
		{"📈 Max Equity", fmt.Sprintf("$%.2f", summary.MaxEquity)},
		{"📦 Open Positions", summary.PositionsCount},
		{"🔄 Total Trades", summary.TotalTrades},
		{"🚨 Risk Events", summary.RiskEventsCount},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 18, WidthMax: 18, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 50, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// PrintPositions renders the open position set
func (r *ConsoleReporter) PrintPositions(positions []position.Position) {
	if len(positions) == 0 {
		fmt.Println("📭 No open positions")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("OPEN POSITIONS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Side", "Size", "Entry", "Leverage", "Notional", "Opened"})

	for _, pos := range positions {
		t.AppendRow(table.Row{
			pos.Symbol,
			pos.Side,
			fmt.Sprintf("%.6f", pos.Size),
			fmt.Sprintf("$%.2f", pos.EntryPrice),
			fmt.Sprintf("%dx", pos.Leverage),
			fmt.Sprintf("$%.2f", pos.Notional()),
			pos.OpenedAt.Format("2006-01-02 15:04:05"),
		})
	}

	t.Render()
	fmt.Println()
}

// PrintTradeHistory renders the closed-trade history
func (r *ConsoleReporter) PrintTradeHistory(records []position.TradeRecord) {
	if len(records) == 0 {
		fmt.Println("📭 No closed trades")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("TRADE HISTORY")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Symbol", "Side", "Size", "Entry", "Exit", "Leverage", "PnL", "Duration"})

	totalPnL := 0.0
	for _, record := range records {
		totalPnL += record.PnL
		t.AppendRow(table.Row{
			record.Symbol,
			record.Side,
			fmt.Sprintf("%.6f", record.Size),
			fmt.Sprintf("$%.2f", record.EntryPrice),
			fmt.Sprintf("$%.2f", record.ExitPrice),
			fmt.Sprintf("%dx", record.Leverage),
			fmt.Sprintf("$%.2f", record.PnL),
			record.Duration.Round(time.Second).String(),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "Total", fmt.Sprintf("$%.2f", totalPnL), ""})

	t.Render()
	fmt.Println()
}
