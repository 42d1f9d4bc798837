package ofx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// header is the fixed OFX 1.02 declaration preceding the SGML body.
const header = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:UTF-8
CHARSET:NONE
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

`

// Writer serializes Statements. Now is injectable so tests get a fixed
// DTSERVER stamp.
type Writer struct {
	Now func() time.Time
}

// NewWriter returns a Writer using the wall clock.
func NewWriter() *Writer {
	return &Writer{Now: time.Now}
}

// WriteFile serializes st to path, creating or truncating it.
func (wr *Writer) WriteFile(path string, st Statement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := wr.Write(f, st); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// Write serializes st to w in a single forward pass: header, signon
// block, one statement block, footer.
func (wr *Writer) Write(w io.Writer, st Statement) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(header)

	// Signon response.
	bw.WriteString("<OFX>\n")
	bw.WriteString("\t<SIGNONMSGSRSV1>\n")
	bw.WriteString("\t\t<SONRS>\n")
	bw.WriteString("\t\t\t<STATUS>\n")
	bw.WriteString("\t\t\t\t<CODE>0</CODE>\n")
	bw.WriteString("\t\t\t\t<SEVERITY>INFO</SEVERITY>\n")
	bw.WriteString("\t\t\t</STATUS>\n")
	fmt.Fprintf(bw, "\t\t\t<DTSERVER>%s</DTSERVER>\n", wr.Now().Format("20060102150405"))
	bw.WriteString("\t\t\t<LANGUAGE>ENG</LANGUAGE>\n")
	bw.WriteString("\t\t</SONRS>\n")
	bw.WriteString("\t</SIGNONMSGSRSV1>\n")

	// Statement response.
	bw.WriteString("\t<BANKMSGSRSV1>\n")
	bw.WriteString("\t\t<STMTTRNRS>\n")
	bw.WriteString("\t\t\t<TRNUID>0</TRNUID>\n")
	bw.WriteString("\t\t\t<STATUS>\n")
	bw.WriteString("\t\t\t\t<CODE>0</CODE>\n")
	bw.WriteString("\t\t\t\t<SEVERITY>INFO</SEVERITY>\n")
	bw.WriteString("\t\t\t</STATUS>\n")
	bw.WriteString("\t\t\t<STMTRS>\n")
	fmt.Fprintf(bw, "\t\t\t\t<CURDEF>%s</CURDEF>\n", st.Currency)
	bw.WriteString("\t\t\t\t<BANKACCTFROM>\n")
	fmt.Fprintf(bw, "\t\t\t\t\t<BANKID>%s</BANKID>\n", escape(st.Account))
	fmt.Fprintf(bw, "\t\t\t\t\t<ACCTID>%s</ACCTID>\n", escape(st.Account))
	bw.WriteString("\t\t\t\t\t<ACCTTYPE>CHECKING</ACCTTYPE>\n")
	bw.WriteString("\t\t\t\t</BANKACCTFROM>\n")

	bw.WriteString("\t\t\t\t<BANKTRANLIST>\n")
	if !st.Start.IsZero() {
		fmt.Fprintf(bw, "\t\t\t\t\t<DTSTART>%s</DTSTART>\n", st.Start.Format(dateFormat))
		fmt.Fprintf(bw, "\t\t\t\t\t<DTEND>%s</DTEND>\n", st.End.Format(dateFormat))
	}
	for _, txn := range st.Transactions {
		writeTransaction(bw, txn)
	}
	bw.WriteString("\t\t\t\t</BANKTRANLIST>\n")

	bw.WriteString("\t\t\t</STMTRS>\n")
	bw.WriteString("\t\t</STMTTRNRS>\n")
	bw.WriteString("\t</BANKMSGSRSV1>\n")
	bw.WriteString("</OFX>\n")

	return bw.Flush()
}

func writeTransaction(w io.Writer, txn Transaction) {
	fmt.Fprintf(w, "\t\t\t\t\t<STMTTRN>\n")
	fmt.Fprintf(w, "\t\t\t\t\t\t<TRNTYPE>%s</TRNTYPE>\n", txn.Type)
	fmt.Fprintf(w, "\t\t\t\t\t\t<DTPOSTED>%s</DTPOSTED>\n", txn.Posted.Format(dateFormat))
	fmt.Fprintf(w, "\t\t\t\t\t\t<TRNAMT>%s</TRNAMT>\n", txn.Amount.StringFixed(2))
	fmt.Fprintf(w, "\t\t\t\t\t\t<FITID>%s</FITID>\n", txn.FITID)
	fmt.Fprintf(w, "\t\t\t\t\t\t<NAME>%s</NAME>\n", escape(txn.Name))
	fmt.Fprintf(w, "\t\t\t\t\t\t<MEMO>%s</MEMO>\n", escape(txn.Memo))
	fmt.Fprintf(w, "\t\t\t\t\t</STMTTRN>\n")
}

var sgmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// escape guards free-text fields against the SGML tag characters.
func escape(s string) string {
	return sgmlEscaper.Replace(s)
}
