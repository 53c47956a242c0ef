package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
	"github.com/Tarra732/fusionfx-forever/internal/risk"
)

// WriteXLSX exports the risk snapshot and trade history to an Excel
// workbook with one sheet per section.
func WriteXLSX(snap risk.Snapshot, trades []portfolio.TradeRecord, path string) error {
	fx := excelize.NewFile()
	defer fx.Close()

	const riskSheet = "Risk"
	const tradesSheet = "Trades"
	fx.SetSheetName(fx.GetSheetName(0), riskSheet)
	fx.NewSheet(tradesSheet)

	headStyle, _ := fx.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	// Risk sheet: one metric per row.
	riskRows := [][]interface{}{
		{"Risk state", string(snap.State)},
		{"VIX", fmt.Sprintf("%.1f", snap.Vix)},
		{"Volatility regime", string(snap.VolatilityRegime)},
		{"Drawdown %", fmt.Sprintf("%.2f", snap.Metrics.DrawdownPct)},
		{"Drawdown limit %", fmt.Sprintf("%.0f", snap.MaxDrawdownPct)},
		{"Win rate", fmt.Sprintf("%.3f", snap.Metrics.WinRate)},
		{"Sharpe", fmt.Sprintf("%.2f", snap.Metrics.Sharpe)},
		{"Sortino", fmt.Sprintf("%.2f", snap.Metrics.Sortino)},
		{"Volatility", fmt.Sprintf("%.4f", snap.Metrics.Volatility)},
		{"Trades per day", fmt.Sprintf("%.2f", snap.Metrics.TradeFrequency)},
		{"Base risk", fmt.Sprintf("%.3f", snap.BaseRisk)},
		{"Last evaluation", snap.LastUpdate.Format("2006-01-02 15:04:05")},
	}
	for r, pair := range riskRows {
		for i, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(i+1, r+1)
			fx.SetCellValue(riskSheet, cell, v)
			if i == 0 {
				fx.SetCellStyle(riskSheet, cell, cell, headStyle)
			}
		}
	}

	// Trades sheet.
	tradeHeaders := []string{"Time", "Pair", "Direction", "Units", "PnL"}
	for i, h := range tradeHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(tradesSheet, cell, h)
		fx.SetCellStyle(tradesSheet, cell, cell, headStyle)
	}

	row := 2
	var totalPnL float64
	for _, t := range trades {
		totalPnL += t.PnL
		values := []interface{}{
			t.Timestamp.Format("2006-01-02 15:04:05"),
			t.Pair,
			t.Direction,
			fmt.Sprintf("%.0f", t.Size),
			fmt.Sprintf("%+.2f", t.PnL),
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			fx.SetCellValue(tradesSheet, cell, v)
		}
		row++
	}
	if row > 2 {
		cell, _ := excelize.CoordinatesToCellName(len(tradeHeaders), row)
		fx.SetCellValue(tradesSheet, cell, fmt.Sprintf("total_pnl=%+.2f", totalPnL))
	}

	return fx.SaveAs(path)
}
