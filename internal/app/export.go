package app

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"poolcalc/internal/probability"
	"poolcalc/internal/summary"
)

var errTooFewPoints = errors.New("chart needs at least two data points")

func writeDistributionCSV(path string, dist probability.Distribution) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"block_count", "probability_pct", "cumulative_pct"}); err != nil {
		return err
	}
	for _, p := range dist {
		record := []string{
			strconv.Itoa(p.BlockCount),
			strconv.FormatFloat(p.ProbabilityPct, 'f', 2, 64),
			strconv.FormatFloat(p.CumulativePct, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func (a *App) writeDistributionPNG(path string, dist probability.Distribution) error {
	if len(dist) < 2 {
		return errTooFewPoints
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]float64, len(dist))
	for i, k := range dist.BlockCounts() {
		x[i] = float64(k)
	}

	pctFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.2f")
	}
	graph := chart.Chart{
		Width:  a.Config.Export.ChartWidth,
		Height: a.Config.Export.ChartHeight,
		XAxis: chart.XAxis{
			Name: "Blocks",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		YAxis: chart.YAxis{
			Name:           "Probability (%)",
			ValueFormatter: pctFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Cumulative (%)",
			ValueFormatter: pctFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Probability",
				XValues: x,
				YValues: dist.Probabilities(),
			},
			chart.ContinuousSeries{
				Name:    "Cumulative",
				XValues: x,
				YValues: dist.Cumulative(),
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, &graph)
}

func (a *App) writeRewardsPNG(path string, rewards summary.RewardSeries) error {
	if len(rewards.Epochs) < 2 {
		return errTooFewPoints
	}
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]float64, len(rewards.Epochs))
	for i, epoch := range rewards.Epochs {
		x[i] = float64(epoch)
	}
	leader, err := parseSeries(rewards.LeaderADA)
	if err != nil {
		return fmt.Errorf("leader rewards: %w", err)
	}
	member, err := parseSeries(rewards.MemberADA)
	if err != nil {
		return fmt.Errorf("member rewards: %w", err)
	}

	graph := chart.Chart{
		Width:  a.Config.Export.ChartWidth,
		Height: a.Config.Export.ChartHeight,
		XAxis: chart.XAxis{
			Name: "Epoch",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.0f")
			},
		},
		YAxis: chart.YAxis{
			Name: "Rewards (ADA)",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.2f")
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{Name: "Leader", XValues: x, YValues: leader},
			chart.ContinuousSeries{Name: "Members", XValues: x, YValues: member},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, &graph)
}

func renderPNG(path string, graph *chart.Chart) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func parseSeries(values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
