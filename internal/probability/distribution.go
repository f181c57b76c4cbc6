package probability

import (
	"math"

	"github.com/shopspring/decimal"
)

// MinProbabilityPct is the cut-off below which a block count is dropped from the distribution.
// The comparison uses the rounded probability, so every retained point is at least 0.01.
const MinProbabilityPct = 0.0002

var minProbability = decimal.NewFromFloat(MinProbabilityPct)

// Point is one block count of the forecast with its probability and running cumulative share, in percent.
type Point struct {
	BlockCount     int     `json:"blockCount"`
	ProbabilityPct float64 `json:"probabilityPercentage"`
	CumulativePct  float64 `json:"cumulativePercentage"`
}

// Distribution is ordered by ascending block count.
type Distribution []Point

// BlockCounts returns the block count axis.
func (d Distribution) BlockCounts() []int {
	out := make([]int, len(d))
	for i, p := range d {
		out[i] = p.BlockCount
	}
	return out
}

// Probabilities returns the per-count probabilities aligned with BlockCounts.
func (d Distribution) Probabilities() []float64 {
	out := make([]float64, len(d))
	for i, p := range d {
		out[i] = p.ProbabilityPct
	}
	return out
}

// Cumulative returns the running cumulative percentages aligned with BlockCounts.
func (d Distribution) Cumulative() []float64 {
	out := make([]float64, len(d))
	for i, p := range d {
		out[i] = p.CumulativePct
	}
	return out
}

// Compute models the number of blocks a pool mints in a period as
// Binomial(2·estimatedBlocks, 0.5), so the estimate sits at the centre and the
// spread reflects luck. All coefficient work happens in log space.
func Compute(estimatedBlocks float64) Distribution {
	n := trialCount(estimatedBlocks)
	if n < 0 {
		return Distribution{}
	}

	logCoeffs := logBinomialRow(n)

	total := math.Inf(-1)
	for _, lc := range logCoeffs {
		total = logAddExp(total, lc)
	}

	dist := make(Distribution, 0, len(logCoeffs))
	cumulative := decimal.Zero
	for k, lc := range logCoeffs {
		pct := round2(math.Exp(lc-total) * 100)
		if pct.LessThan(minProbability) {
			continue
		}
		cumulative = cumulative.Add(pct)
		dist = append(dist, Point{
			BlockCount:     k,
			ProbabilityPct: pct.InexactFloat64(),
			CumulativePct:  cumulative.InexactFloat64(),
		})
	}
	return dist
}

func trialCount(estimatedBlocks float64) int {
	twice := math.Round(2 * estimatedBlocks)
	if math.IsNaN(twice) || twice < 0 || twice > math.MaxInt32 {
		return -1
	}
	return int(twice)
}

// logBinomialRow returns log C(n,k) for every k in [0,n]. The lower half is
// built incrementally and mirrored, which yields the same sum as
// Σ_{i<min(k,n-k)} [log(n-i) - log(i+1)] without recomputing it per k.
func logBinomialRow(n int) []float64 {
	row := make([]float64, n+1)
	acc := 0.0
	for k := 1; k <= n/2; k++ {
		i := k - 1
		acc += math.Log(float64(n-i)) - math.Log(float64(i+1))
		row[k] = acc
	}
	for k := n/2 + 1; k <= n; k++ {
		row[k] = row[n-k]
	}
	return row
}

// logAddExp returns log(exp(a) + exp(b)) without leaving log space.
func logAddExp(a, b float64) float64 {
	if math.IsInf(b, -1) {
		return a
	}
	if math.IsInf(a, -1) {
		return b
	}
	return math.Max(a, b) + math.Log1p(math.Exp(-math.Abs(a-b)))
}

// round2 rounds half away from zero to two decimals. v is always finite here.
func round2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
