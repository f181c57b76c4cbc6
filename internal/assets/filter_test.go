package assets

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func priced(v float64) *Market {
	return &Market{Price: decimal.NewNullDecimal(decimal.NewFromFloat(v))}
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestFilterClass(t *testing.T) {
	records := []Record{
		{Name: "x", Quantity: decimal.NewFromInt(1), Market: priced(0)},
		{Name: "y", Quantity: decimal.NewFromInt(5), Market: priced(2)},
	}

	require.Equal(t, []string{"x"}, names(Filter(records, ClassNFTs, "")))
	require.Equal(t, []string{"y"}, names(Filter(records, ClassTokens, "")))
	require.Equal(t, []string{"y", "x"}, names(Filter(records, ClassAll, "")))
}

func TestFilterSearch(t *testing.T) {
	records := []Record{
		{Name: "x", Quantity: decimal.NewFromInt(1), Market: priced(0)},
		{Name: "y", Quantity: decimal.NewFromInt(5), Market: priced(2)},
	}
	require.Equal(t, []string{"y"}, names(Filter(records, ClassAll, "y")))
	require.Equal(t, []string{"y"}, names(Filter(records, ClassAll, "Y")))
}

func TestFilterSearchKeepsWhitespace(t *testing.T) {
	records := []Record{
		{Name: "x", Quantity: decimal.NewFromInt(1), Market: priced(0)},
		{Name: "y", Quantity: decimal.NewFromInt(5), Market: priced(2)},
		{Name: "z", Quantity: decimal.NewFromInt(2), Registry: &Registry{Name: "Big Token"}},
	}
	require.Empty(t, Filter(records, ClassAll, "y "))
	require.Empty(t, Filter(records, ClassAll, "   x"))
	require.Equal(t, []string{"z"}, names(Filter(records, ClassAll, " ")))
	require.Equal(t, []string{"z"}, names(Filter(records, ClassAll, "big t")))
}

func TestFilterSearchRegistryAndDisplayName(t *testing.T) {
	policy := "7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373"
	records := []Record{
		{Name: policy + "504154415445", Quantity: decimal.NewFromInt(10)},
		{Name: policy + "414243", Quantity: decimal.NewFromInt(10), Registry: &Registry{Ticker: "HOSKY", Name: "Hosky Token"}},
	}

	require.Equal(t, []string{policy + "504154415445"}, names(Filter(records, ClassAll, "pata")))
	require.Equal(t, []string{policy + "414243"}, names(Filter(records, ClassAll, "hosky")))
	require.Equal(t, []string{policy + "414243"}, names(Filter(records, ClassAll, "abc")))
}

func TestFilterSearchFingerprint(t *testing.T) {
	records := []Record{
		{Name: "7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373", Quantity: decimal.NewFromInt(3)},
		{Name: "1e349c9bdea19fd6c147626a5260bc44b71635f398b67c59881df209", Quantity: decimal.NewFromInt(3)},
	}
	got := Filter(records, ClassAll, "ASSET1RJKLCRNSDZQP65WJGRG55SY9723KW09MLGVLC3")
	require.Equal(t, []string{"7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373"}, names(got))
}

func TestFilterSortByValue(t *testing.T) {
	records := []Record{
		{Name: "unpriced-a", Quantity: decimal.NewFromInt(1000)},
		{Name: "cheap", Quantity: decimal.NewFromInt(100), Market: priced(0.5)},
		{Name: "scaled", Quantity: decimal.NewFromInt(5_000_000), Registry: &Registry{Decimals: 6}, Market: priced(20)},
		{Name: "unpriced-b", Quantity: decimal.NewFromInt(7), Market: &Market{}},
		{Name: "rich", Quantity: decimal.NewFromInt(3), Market: priced(40)},
	}

	got := Filter(records, ClassAll, "")
	// values: cheap 50, scaled 100, rich 120, unpriced 0
	require.Equal(t, []string{"rich", "scaled", "cheap", "unpriced-a", "unpriced-b"}, names(got))
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	records := []Record{{Name: "a", Quantity: decimal.NewFromInt(2), Registry: &Registry{Ticker: "A"}}}
	got := Filter(records, ClassAll, "")
	got[0].Registry.Ticker = "changed"
	require.Equal(t, "A", records[0].Registry.Ticker)
}

func TestFingerprint(t *testing.T) {
	fp, err := Fingerprint("7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373")
	require.NoError(t, err)
	require.Equal(t, "asset1rjklcrnsdzqp65wjgrg55sy9723kw09mlgvlc3", fp)

	joined, err := Fingerprint("7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373504154415445")
	require.NoError(t, err)
	dotted, err := Fingerprint("7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373.504154415445")
	require.NoError(t, err)
	require.Equal(t, joined, dotted)
	require.NotEqual(t, fp, joined)

	_, err = Fingerprint("lovelace")
	require.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "PATATE", DisplayName("7eae28af2208be856f7a119668ae52a49b73725e326dc16579dcc373504154415445"))
	require.Equal(t, "ABC", DisplayName("policy.414243"))
	require.Equal(t, "not-hex", DisplayName("not-hex"))
}

func TestParseClass(t *testing.T) {
	c, err := ParseClass("NFTs")
	require.NoError(t, err)
	require.Equal(t, ClassNFTs, c)

	c, err = ParseClass("")
	require.NoError(t, err)
	require.Equal(t, ClassAll, c)

	_, err = ParseClass("coins")
	require.Error(t, err)
}
