// Package reporting renders risk snapshots and trade history for
// operators, as console tables or as an Excel workbook.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Tarra732/fusionfx-forever/internal/portfolio"
	"github.com/Tarra732/fusionfx-forever/internal/risk"
)

// WriteSnapshot renders the current risk assessment as a console table.
func WriteSnapshot(w io.Writer, snap risk.Snapshot) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("RISK ASSESSMENT")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🚦 Risk State", strings.ToUpper(string(snap.State))},
		{"📉 VIX", fmt.Sprintf("%.1f", snap.Vix)},
		{"🌊 Volatility Regime", string(snap.VolatilityRegime)},
		{"🕒 Last Evaluation", snap.LastUpdate.Format("2006-01-02 15:04:05")},
	})

	t.AppendSeparator()

	t.AppendRows([]table.Row{
		{"📊 Drawdown", fmt.Sprintf("%.2f%% (limit %.0f%%)", snap.Metrics.DrawdownPct, snap.MaxDrawdownPct)},
		{"🎯 Win Rate", fmt.Sprintf("%.1f%%", snap.Metrics.WinRate*100)},
		{"📈 Sharpe", fmt.Sprintf("%.2f", snap.Metrics.Sharpe)},
		{"📈 Sortino", fmt.Sprintf("%.2f", snap.Metrics.Sortino)},
		{"〰️ Volatility", fmt.Sprintf("%.4f", snap.Metrics.Volatility)},
		{"🔁 Trades/Day", fmt.Sprintf("%.2f", snap.Metrics.TradeFrequency)},
		{"💱 Active Pairs", strings.Join(snap.Metrics.ActivePairs, ", ")},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 20, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 40, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Fprintln(w)
}

// WriteTrades renders the recent trade history as a console table.
func WriteTrades(w io.Writer, trades []portfolio.TradeRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("TRADE HISTORY")
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Time", "Pair", "Direction", "Units", "PnL"})

	var totalPnL float64
	for _, tr := range trades {
		totalPnL += tr.PnL
		t.AppendRow(table.Row{
			tr.Timestamp.Format("2006-01-02 15:04:05"),
			tr.Pair,
			tr.Direction,
			fmt.Sprintf("%.0f", tr.Size),
			fmt.Sprintf("%+.2f", tr.PnL),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "Total", fmt.Sprintf("%+.2f", totalPnL)})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	t.Render()
	fmt.Fprintln(w)
}
