// Package assets filters and ranks the native assets held by an address.
package assets

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Class narrows assets by supply shape.
type Class string

const (
	ClassAll    Class = "all"
	ClassTokens Class = "tokens"
	ClassNFTs   Class = "nfts"
)

// ParseClass validates a user supplied class name.
func ParseClass(v string) (Class, error) {
	switch c := Class(strings.ToLower(strings.TrimSpace(v))); c {
	case ClassAll, ClassTokens, ClassNFTs:
		return c, nil
	case "":
		return ClassAll, nil
	default:
		return "", fmt.Errorf("unknown asset class %q (want all, tokens or nfts)", v)
	}
}

// Registry is the off-chain token registry metadata of an asset.
type Registry struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name"`
	Decimals int32  `json:"decimals"`
}

// Market carries the last known price; a null price counts as zero.
type Market struct {
	Price decimal.NullDecimal `json:"price"`
}

// Record is one asset balance. Name is the hex asset id.
type Record struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Registry *Registry       `json:"registry,omitempty"`
	Market   *Market         `json:"market,omitempty"`
}

// Value is the quantity scaled by registry decimals and multiplied by price.
func (r Record) Value() decimal.Decimal {
	if r.Market == nil || !r.Market.Price.Valid {
		return decimal.Zero
	}
	qty := r.Quantity
	if r.Registry != nil {
		qty = qty.Shift(-r.Registry.Decimals)
	}
	return qty.Mul(r.Market.Price.Decimal)
}

func (r Record) clone() Record {
	out := r
	if r.Registry != nil {
		reg := *r.Registry
		out.Registry = &reg
	}
	if r.Market != nil {
		m := *r.Market
		out.Market = &m
	}
	return out
}

var one = decimal.NewFromInt(1)

// Filter applies the class filter, then the case-insensitive search, then a
// stable descending sort by value. The result never aliases the input.
func Filter(records []Record, class Class, search string) []Record {
	needle := strings.ToLower(search)

	type ranked struct {
		record Record
		value  decimal.Decimal
	}
	kept := make([]ranked, 0, len(records))
	for _, r := range records {
		if !matchesClass(r, class) {
			continue
		}
		if needle != "" && !matchesSearch(r, needle) {
			continue
		}
		kept = append(kept, ranked{record: r.clone(), value: r.Value()})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].value.GreaterThan(kept[j].value)
	})

	out := make([]Record, len(kept))
	for i, k := range kept {
		out[i] = k.record
	}
	return out
}

func matchesClass(r Record, class Class) bool {
	switch class {
	case ClassNFTs:
		return r.Quantity.Equal(one)
	case ClassTokens:
		return r.Quantity.GreaterThan(one)
	default:
		return true
	}
}

func matchesSearch(r Record, needle string) bool {
	fields := []string{r.Name, DisplayName(r.Name)}
	if r.Registry != nil {
		fields = append(fields, r.Registry.Ticker, r.Registry.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	if fp, err := Fingerprint(r.Name); err == nil {
		return strings.Contains(fp, needle)
	}
	return false
}
