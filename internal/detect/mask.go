package detect

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	maskRune = 'X'
	// minMaskDigits is the minimum digit count for a numeric run to be
	// treated as an identifier or amount and masked. Shorter runs (years,
	// list numbers, small counts) pass through.
	minMaskDigits = 5
	// keepDigits is how many trailing digits survive masking, matching the
	// XXXX-XXXX-1234 convention for partially disclosed identifiers.
	keepDigits = 4
)

// numberRun matches a run of digits possibly interleaved with common
// separators (comma, dash, space), e.g. "1234 5678 9012" or "18,50,000".
var numberRun = regexp.MustCompile(`\d(?:[\d,\- ]*\d)?`)

// emailAddr matches an email address for local-part masking.
var emailAddr = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Mask deterministically redacts identifiers that survived generation-time
// policy instructions. Every numeric run with at least minMaskDigits digits
// keeps its last keepDigits digits; all earlier digits become the mask rune
// with separators preserved. Email local parts are masked to their first
// character. Mask is idempotent.
func Mask(text string) string {
	text = emailAddr.ReplaceAllStringFunc(text, maskEmail)
	return numberRun.ReplaceAllStringFunc(text, maskNumberRun)
}

func maskNumberRun(run string) string {
	digits := 0
	for _, r := range run {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < minMaskDigits {
		return run
	}
	out := []rune(run)
	seen := 0
	for i := len(out) - 1; i >= 0; i-- {
		if !unicode.IsDigit(out[i]) {
			continue
		}
		seen++
		if seen > keepDigits {
			out[i] = maskRune
		}
	}
	return string(out)
}

func maskEmail(addr string) string {
	at := strings.IndexByte(addr, '@')
	if at <= 1 {
		return addr
	}
	return addr[:1] + strings.Repeat(string(maskRune), at-1) + addr[at:]
}
