package collector

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/width"
)

// Canonical column names.
const (
	ColDate   = "Date"
	ColOpen   = "Open"
	ColHigh   = "High"
	ColLow    = "Low"
	ColClose  = "Close"
	ColVolume = "Volume"
)

// ColumnAliases maps every accepted header spelling to its canonical name.
// Lookups fold case and full-width forms, so only one spelling per label is
// listed.
var ColumnAliases = map[string]string{
	"date":       ColDate,
	"datetime":   ColDate,
	"time":       ColDate,
	"trade_date": ColDate,
	"日期":         ColDate,
	"时间":         ColDate,
	"交易日期":       ColDate,

	"open": ColOpen,
	"开盘":   ColOpen,
	"开盘价":  ColOpen,
	"今开":   ColOpen,

	"high": ColHigh,
	"最高":   ColHigh,
	"最高价":  ColHigh,

	"low": ColLow,
	"最低":  ColLow,
	"最低价": ColLow,

	"close": ColClose,
	"收盘":    ColClose,
	"收盘价":   ColClose,
	"最新价":   ColClose,

	"volume": ColVolume,
	"vol":    ColVolume,
	"成交量":    ColVolume,
}

// foldHeader builds a fresh Caser per call; a Caser is not safe to share.
func foldHeader(s string) string {
	return cases.Fold().String(width.Fold.String(strings.TrimSpace(s)))
}

var foldedAliases = func() map[string]string {
	m := make(map[string]string, len(ColumnAliases))
	for k, v := range ColumnAliases {
		m[foldHeader(k)] = v
	}
	return m
}()

// Canonical returns the canonical column for a header cell.
func Canonical(header string) (string, bool) {
	c, ok := foldedAliases[foldHeader(header)]
	return c, ok
}
