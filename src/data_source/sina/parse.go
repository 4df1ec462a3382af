package sina

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/models"
)

// -----------------------------------------------------------------------------
// The quote endpoint answers with one JS assignment per symbol:
//
//   var hq_str_sh600172="黄山胶囊,10.01,10.00,10.30,...,2024-08-29,14:55:00,00";
//
// The payload is a comma-separated record with fixed positions. Volume at
// index 8 counts SHARES since the session open; index 9 is the turnover in
// yuan. Mixing the two breaks every volume-derived indicator downstream, so
// the positions are named here and covered by tests.
// -----------------------------------------------------------------------------

const (
	fieldName       = 0
	fieldOpen       = 1
	fieldPrevClose  = 2
	fieldPrice      = 3
	fieldHigh       = 4
	fieldLow        = 5
	fieldShareVol   = 8 // cumulative traded shares
	fieldMoneyVol   = 9 // cumulative turnover, yuan
	fieldBid1Vol    = 10
	fieldAsk1Vol    = 20
	fieldDate       = 30
	fieldTime       = 31
	minQuoteFields  = 32
	orderBookLevels = 5
)

var cstZone = time.FixedZone("CST", 8*3600)

// -----------------------------------------------------------------------------

// ParseQuoteResponse decodes a raw (GB18030) quote payload into quotes keyed
// by bare 6-digit code. Malformed lines are skipped, not fatal: one bad
// symbol must not take the batch down.
func ParseQuoteResponse(raw []byte) map[string]models.MQuote {
	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw)
	if err != nil {
		// Names degrade to mojibake but numeric fields survive.
		decoded = raw
	}

	quotes := make(map[string]models.MQuote)

	for _, line := range strings.Split(string(decoded), "\n") {
		code, quote, ok := parseQuoteLine(line)
		if !ok {
			continue
		}
		quotes[code] = quote
	}

	return quotes
}

// -----------------------------------------------------------------------------

func parseQuoteLine(line string) (string, models.MQuote, bool) {
	line = strings.TrimSpace(line)

	const prefix = "var hq_str_"
	if !strings.HasPrefix(line, prefix) {
		return "", models.MQuote{}, false
	}

	eq := strings.Index(line, "=")
	if eq < 0 {
		return "", models.MQuote{}, false
	}

	// "sh600172" -> "600172"
	symbol := line[len(prefix):eq]
	if len(symbol) < 8 {
		return "", models.MQuote{}, false
	}
	code := symbol[2:]

	payload := strings.Trim(line[eq+1:], `";`)
	fields := strings.Split(payload, ",")
	if len(fields) < minQuoteFields {
		// Suspended symbols answer with an empty or truncated record.
		return "", models.MQuote{}, false
	}

	q := models.MQuote{
		Code:        code,
		Name:        fields[fieldName],
		Open:        parseFloat(fields[fieldOpen]),
		PrevClose:   parseFloat(fields[fieldPrevClose]),
		Price:       parseFloat(fields[fieldPrice]),
		High:        parseFloat(fields[fieldHigh]),
		Low:         parseFloat(fields[fieldLow]),
		ShareVolume: parseFloat(fields[fieldShareVol]),
		MoneyVolume: parseFloat(fields[fieldMoneyVol]),
		Timestamp:   parseQuoteTime(fields[fieldDate], fields[fieldTime]),
	}

	q.ChangePct = changePct(q.Price, q.PrevClose, q.Open)

	for i := 0; i < orderBookLevels; i++ {
		q.Bids = append(q.Bids, models.MBookLevel{
			Volume: parseFloat(fields[fieldBid1Vol+2*i]),
			Price:  parseFloat(fields[fieldBid1Vol+2*i+1]),
		})
		q.Asks = append(q.Asks, models.MBookLevel{
			Volume: parseFloat(fields[fieldAsk1Vol+2*i]),
			Price:  parseFloat(fields[fieldAsk1Vol+2*i+1]),
		})
	}

	return code, q, true
}

// -----------------------------------------------------------------------------

// changePct prefers the previous close as base; a fresh listing without one
// falls back to the session open, and with neither the change is zero.
func changePct(price, prevClose, open float64) float64 {
	base := prevClose
	if base <= 0 {
		base = open
	}
	if base <= 0 {
		return 0
	}
	return (price - base) / base * 100.0
}

// -----------------------------------------------------------------------------

func parseQuoteTime(date, clock string) int64 {
	t, err := time.ParseInLocation("2006-01-02 15:04:05", date+" "+clock, cstZone)
	if err != nil {
		return time.Now().Unix()
	}
	return t.Unix()
}

// -----------------------------------------------------------------------------

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
