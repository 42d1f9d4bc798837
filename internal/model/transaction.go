package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one normalized bank CSV row, ready for OFX mapping.
type TransactionRecord struct {
	Date   time.Time       // day precision
	Payee  string          // whitespace-collapsed; may be empty
	Memo   string          // whitespace-collapsed; may be empty
	Amount decimal.Decimal // negative = expense, positive = income
}
