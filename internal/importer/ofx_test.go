package importer

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20250615120000
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>CHK-001
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250601
<DTEND>20250615
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250601
<TRNAMT>-12.99
<FITID>TXN001
<NAME>NETFLIX.COM
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250603
<TRNAMT>-54.20
<FITID>TXN002
<NAME>PURCHASE
<MEMO>TRADER JOES 123
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20250615
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>
`

func TestOFXReaderParse(t *testing.T) {
	reader := NewOFXReader(slog.Default())
	txns, err := reader.Parse(context.Background(), strings.NewReader(sampleOFX))
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, "TXN001", txns[0].ID)
	assert.Equal(t, "NETFLIX.COM", txns[0].Description)
	assert.InDelta(t, 12.99, txns[0].Amount, 0.001)
	assert.Equal(t, "CHK-001", txns[0].AccountID)
	assert.NotEmpty(t, txns[0].Hash)

	// Generic NAME falls back to the MEMO field.
	assert.Equal(t, "TRADER JOES 123", txns[1].Description)
	assert.InDelta(t, 54.20, txns[1].Amount, 0.001)
}

func TestOFXReaderLowercaseSeverity(t *testing.T) {
	lowered := strings.ReplaceAll(sampleOFX, "<SEVERITY>INFO", "<SEVERITY>Info")

	reader := NewOFXReader(nil)
	txns, err := reader.Parse(context.Background(), strings.NewReader(lowered))
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestOFXReaderLeadingWhitespace(t *testing.T) {
	reader := NewOFXReader(nil)
	txns, err := reader.Parse(context.Background(), strings.NewReader("\r\n  "+sampleOFX))
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestOFXReaderMalformed(t *testing.T) {
	reader := NewOFXReader(nil)
	_, err := reader.Parse(context.Background(), strings.NewReader("this is not OFX"))
	assert.Error(t, err)
}

func TestOFXReaderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reader := NewOFXReader(nil)
	_, err := reader.Parse(ctx, strings.NewReader(sampleOFX))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractDescriptionStripsProcessorNoise(t *testing.T) {
	tests := []struct {
		name string
		memo string
		want string
	}{
		{name: "POS PURCHASE COSTCO WHOLESALE", want: "COSTCO WHOLESALE"},
		{name: "CHECK CARD 06/01 SHELL OIL", want: "SHELL OIL"},
		{name: "Starbucks Store 123", want: "Starbucks Store 123"},
		{name: "DEBIT", memo: "UBER TRIP HELP", want: "UBER TRIP HELP"},
	}

	for _, tt := range tests {
		tx := ofxgo.Transaction{
			Name: ofxgo.String(tt.name),
			Memo: ofxgo.String(tt.memo),
		}
		assert.Equal(t, tt.want, extractDescription(tx), "name=%q", tt.name)
	}
}

func TestIsGenericDescription(t *testing.T) {
	assert.True(t, isGenericDescription("DEBIT"))
	assert.True(t, isGenericDescription("purchase"))
	assert.False(t, isGenericDescription("NETFLIX.COM"))
}
