// Package id generates the stable per-transaction identifiers (FITIDs)
// OFX consumers use to detect duplicate imports.
package id

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// fitidLen keeps ids short enough for picky importers while leaving 64
// bits of hash, plenty for single-statement volumes.
const fitidLen = 16

// FITID returns a stable identifier derived from the transaction content.
// The same transaction always maps to the same id across runs.
func FITID(date time.Time, payee, memo string, amount decimal.Decimal) string {
	key := strings.Join([]string{
		date.Format("20060102"),
		payee,
		memo,
		amount.StringFixed(2),
	}, "|")
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:fitidLen]
}

// Disambiguate suffixes the id of the n-th duplicate occurrence (n >= 1)
// so byte-identical rows still import as distinct transactions.
func Disambiguate(fitid string, n int) string {
	if n <= 0 {
		return fitid
	}
	return fmt.Sprintf("%s-%d", fitid, n)
}
