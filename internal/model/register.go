package model

import "time"

// RegisterRow is one accepted line of the cash-register ledger.
type RegisterRow struct {
	Date         time.Time
	Description  string // lower-cased
	AnalyticsTag string // lower-cased
	Amount       int    // whole roubles, always positive
}
