package detect

import (
	"strings"
	"testing"
)

func TestMask_LongDigitRuns(t *testing.T) {
	got := Mask("account number 123456789")
	if strings.Contains(got, "123456789") {
		t.Errorf("masked text still contains the identifier: %q", got)
	}
	if !strings.HasSuffix(got, "6789") {
		t.Errorf("last four digits should survive masking: %q", got)
	}
}

func TestMask_SeparatedRuns(t *testing.T) {
	got := Mask("card 1234-5678-9012")
	if strings.Contains(got, "1234-5678") {
		t.Errorf("separated identifier not masked: %q", got)
	}
	if !strings.Contains(got, "-") {
		t.Errorf("separators should be preserved: %q", got)
	}
	if !strings.HasSuffix(got, "9012") {
		t.Errorf("last four digits should survive: %q", got)
	}
}

func TestMask_CurrencyAmount(t *testing.T) {
	got := Mask("salary is ₹18,50,000 per annum")
	if strings.Contains(got, "18,50,000") {
		t.Errorf("amount not masked: %q", got)
	}
}

func TestMask_ShortRunsUntouched(t *testing.T) {
	for _, text := range []string{"in 2024 we had 3 audits", "room 101", "top 5 results"} {
		if got := Mask(text); got != text {
			t.Errorf("Mask(%q) = %q, short digit runs should pass through", text, got)
		}
	}
}

func TestMask_Email(t *testing.T) {
	got := Mask("contact jane.doe@example.com")
	if strings.Contains(got, "jane.doe@") {
		t.Errorf("email local part not masked: %q", got)
	}
	if !strings.Contains(got, "@example.com") {
		t.Errorf("email domain should be preserved: %q", got)
	}
}

func TestMask_Idempotent(t *testing.T) {
	once := Mask("account 123456789 and ₹18,50,000")
	twice := Mask(once)
	if once != twice {
		t.Errorf("Mask not idempotent: %q vs %q", once, twice)
	}
}
