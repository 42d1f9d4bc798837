// Package ofx serializes normalized transactions into an OFX 1.02 SGML
// document, the tag-per-line statement format personal-finance apps import.
package ofx

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ofxer-dev/ofxer/internal/id"
	"github.com/ofxer-dev/ofxer/internal/model"
)

const (
	// DefaultAccount is the placeholder account id stamped on every
	// transaction when the caller does not supply one.
	DefaultAccount = "account"
	// DefaultCurrency is the currency code for German bank exports.
	DefaultCurrency = "EUR"

	dateFormat = "20060102"
)

// Transaction is one STMTTRN entry.
type Transaction struct {
	Type   string // DEBIT or CREDIT, by amount sign
	Posted time.Time
	Amount decimal.Decimal
	FITID  string
	Name   string // payee
	Memo   string
}

// Statement groups the transactions of one account into one OFX
// statement block. The converter always produces exactly one.
type Statement struct {
	Account      string
	Currency     string
	Start, End   time.Time
	Transactions []Transaction
}

// NewStatement maps records onto a Statement in input order, assigning
// each a stable unique FITID.
func NewStatement(account, currency string, records []model.TransactionRecord) Statement {
	if account == "" {
		account = DefaultAccount
	}
	if currency == "" {
		currency = DefaultCurrency
	}

	st := Statement{Account: account, Currency: currency}
	seen := map[string]int{}
	for _, rec := range records {
		typ := "CREDIT"
		if rec.Amount.IsNegative() {
			typ = "DEBIT"
		}

		base := id.FITID(rec.Date, rec.Payee, rec.Memo, rec.Amount)
		fitid := id.Disambiguate(base, seen[base])
		seen[base]++

		st.Transactions = append(st.Transactions, Transaction{
			Type:   typ,
			Posted: rec.Date,
			Amount: rec.Amount,
			FITID:  fitid,
			Name:   rec.Payee,
			Memo:   rec.Memo,
		})

		if st.Start.IsZero() || rec.Date.Before(st.Start) {
			st.Start = rec.Date
		}
		if rec.Date.After(st.End) {
			st.End = rec.Date
		}
	}
	return st
}
