package ofx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ofxer-dev/ofxer/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func sampleRecords() []model.TransactionRecord {
	return []model.TransactionRecord{
		{Date: date(2025, 1, 3), Payee: "Hausverwaltung Schmidt GmbH", Memo: "Miete Januar 2025", Amount: dec("-1250.00")},
		{Date: date(2025, 1, 15), Payee: "Beispiel Software GmbH", Memo: "Gehalt Januar 2025", Amount: dec("1890.41")},
		{Date: date(2025, 1, 22), Payee: "REWE Markt", Memo: "Kartenzahlung", Amount: dec("-45.00")},
	}
}

func fixedWriter() *Writer {
	return &Writer{Now: func() time.Time { return date(2025, 2, 1) }}
}

func TestNewStatement_MapsRecordsInOrder(t *testing.T) {
	st := NewStatement("", "", sampleRecords())

	assert.Equal(t, DefaultAccount, st.Account)
	assert.Equal(t, "EUR", st.Currency)
	require.Len(t, st.Transactions, 3)

	assert.Equal(t, "DEBIT", st.Transactions[0].Type)
	assert.Equal(t, "CREDIT", st.Transactions[1].Type)
	assert.Equal(t, "DEBIT", st.Transactions[2].Type)

	assert.Equal(t, "Hausverwaltung Schmidt GmbH", st.Transactions[0].Name)
	assert.Equal(t, "Miete Januar 2025", st.Transactions[0].Memo)

	assert.Equal(t, date(2025, 1, 3), st.Start)
	assert.Equal(t, date(2025, 1, 22), st.End)
}

func TestNewStatement_DuplicateRowsGetDistinctFITIDs(t *testing.T) {
	rec := model.TransactionRecord{Date: date(2025, 1, 3), Payee: "REWE", Memo: "Karte", Amount: dec("-5.00")}
	st := NewStatement("acct", "EUR", []model.TransactionRecord{rec, rec, rec})

	require.Len(t, st.Transactions, 3)
	ids := map[string]bool{}
	for _, txn := range st.Transactions {
		assert.NotEmpty(t, txn.FITID)
		assert.False(t, ids[txn.FITID], "duplicate FITID %s", txn.FITID)
		ids[txn.FITID] = true
	}
}

func TestNewStatement_Empty(t *testing.T) {
	st := NewStatement("acct", "EUR", nil)
	assert.Empty(t, st.Transactions)
	assert.True(t, st.Start.IsZero())
}

func TestWrite_DocumentStructure(t *testing.T) {
	var buf bytes.Buffer
	err := fixedWriter().Write(&buf, NewStatement("", "", sampleRecords()))
	require.NoError(t, err)
	doc := buf.String()

	// Exactly one header, one signon block, one statement, one footer.
	assert.Equal(t, 1, strings.Count(doc, "OFXHEADER:100"))
	assert.Equal(t, 1, strings.Count(doc, "DATA:OFXSGML"))
	assert.Equal(t, 1, strings.Count(doc, "<SIGNONMSGSRSV1>"))
	assert.Equal(t, 1, strings.Count(doc, "<BANKTRANLIST>"))
	assert.Equal(t, 1, strings.Count(doc, "</OFX>"))
	assert.True(t, strings.HasPrefix(doc, "OFXHEADER:100\n"))
	assert.True(t, strings.HasSuffix(doc, "</OFX>\n"))

	// One transaction entry per record, each with date and amount.
	assert.Equal(t, 3, strings.Count(doc, "<STMTTRN>"))
	assert.Equal(t, 3, strings.Count(doc, "</STMTTRN>"))
	assert.Contains(t, doc, "<DTPOSTED>20250103</DTPOSTED>")
	assert.Contains(t, doc, "<TRNAMT>-1250.00</TRNAMT>")
	assert.Contains(t, doc, "<TRNAMT>1890.41</TRNAMT>")
	assert.Contains(t, doc, "<DTSTART>20250103</DTSTART>")
	assert.Contains(t, doc, "<DTEND>20250122</DTEND>")
	assert.Contains(t, doc, "<DTSERVER>20250201000000</DTSERVER>")
	assert.Contains(t, doc, "<CURDEF>EUR</CURDEF>")
}

func TestWrite_OrderPreserved(t *testing.T) {
	var buf bytes.Buffer
	err := fixedWriter().Write(&buf, NewStatement("", "", sampleRecords()))
	require.NoError(t, err)
	doc := buf.String()

	first := strings.Index(doc, "Hausverwaltung Schmidt GmbH")
	second := strings.Index(doc, "Beispiel Software GmbH")
	third := strings.Index(doc, "REWE Markt")
	assert.True(t, first < second && second < third)
}

func TestWrite_EscapesSGML(t *testing.T) {
	records := []model.TransactionRecord{
		{Date: date(2025, 1, 3), Payee: "M&M <Laden>", Memo: "a & b", Amount: dec("-1.00")},
	}

	var buf bytes.Buffer
	err := fixedWriter().Write(&buf, NewStatement("", "", records))
	require.NoError(t, err)
	doc := buf.String()

	assert.Contains(t, doc, "<NAME>M&amp;M &lt;Laden&gt;</NAME>")
	assert.Contains(t, doc, "<MEMO>a &amp; b</MEMO>")
}

func TestWriteFile_CreatesAndTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.ofx")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	err := fixedWriter().WriteFile(path, NewStatement("", "", sampleRecords()))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), "</OFX>")
}
