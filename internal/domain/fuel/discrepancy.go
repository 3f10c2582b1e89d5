// internal/domain/fuel/discrepancy.go
package fuel

import "github.com/shopspring/decimal"

// DiscrepancyStatus classifies a delivery's quantity variance.
type DiscrepancyStatus string

const (
	DiscrepancyMatched       DiscrepancyStatus = "MATCHED"
	DiscrepancyShortSupplied DiscrepancyStatus = "SHORT_SUPPLIED"
	DiscrepancyOverSupplied  DiscrepancyStatus = "OVER_SUPPLIED"
)

// ClassifyDiscrepancy classifies the variance between approved and delivered
// quantities. Only exact equality counts as matched; there is no tolerance
// band, so any nonzero delta is a discrepancy.
func ClassifyDiscrepancy(approved, delivered decimal.Decimal) DiscrepancyStatus {
	switch delivered.Sub(approved).Sign() {
	case 0:
		return DiscrepancyMatched
	case -1:
		return DiscrepancyShortSupplied
	default:
		return DiscrepancyOverSupplied
	}
}
