package repository

import "github.com/shopspring/decimal"

// cents normalises a scanned SQL aggregate. SQLite stores decimal columns as
// REAL, so SUM() comes back with binary float noise.
func cents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
