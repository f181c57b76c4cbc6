package summary

import "time"

const chartDateLayout = "02.01.2006"

var dateLayouts = []string{"2006-01-02", time.RFC3339, time.RFC3339Nano}

// DailyBlocks is one day of minted-block history.
type DailyBlocks struct {
	Block struct {
		Count      int     `json:"count"`
		AvgTxCount float64 `json:"avg_tx_count"`
	} `json:"block"`
	Date string `json:"date"`
}

// MintedSeries holds index-aligned series for the minted blocks chart.
type MintedSeries struct {
	MintedBlocks []int    `json:"mintedBlocks"`
	TxCounts     []string `json:"txCount"`
	Dates        []string `json:"dates"`
}

// SummarizeMinted projects daily rows into chart series, keeping input order.
func SummarizeMinted(rows []DailyBlocks) MintedSeries {
	out := MintedSeries{
		MintedBlocks: make([]int, 0, len(rows)),
		TxCounts:     make([]string, 0, len(rows)),
		Dates:        make([]string, 0, len(rows)),
	}
	for _, row := range rows {
		out.MintedBlocks = append(out.MintedBlocks, row.Block.Count)
		out.TxCounts = append(out.TxCounts, fixed2(row.Block.AvgTxCount))
		out.Dates = append(out.Dates, chartDate(row.Date))
	}
	return out
}

// chartDate reformats to dd.MM.yyyy; unparseable input is passed through.
func chartDate(raw string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(chartDateLayout)
		}
	}
	return raw
}
