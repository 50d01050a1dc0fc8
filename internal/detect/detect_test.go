package detect

import (
	"reflect"
	"testing"
)

func TestDetect_Sensitive(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		categories []string
	}{
		{"aadhaar query", "my aadhaar number is 1234", []string{CategoryIdentityDocument}},
		{"account query", "what is the account number?", []string{CategoryBanking}},
		{"pan card", "show me the PAN card details", []string{CategoryTaxID}},
		{"phone", "give me his phone", []string{CategoryContact}},
		{"email address", "reach me at jane.doe@example.com", []string{CategoryContact}},
		{"salary", "what is the exact salary?", []string{CategoryFinancialAmount}},
		{"rupee amount", "the figure was ₹18,50,000 last year", []string{CategoryFinancialAmount}},
		{"multiple categories", "bank account and salary of the employee", []string{CategoryBanking, CategoryFinancialAmount}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Detect(tt.text)
			if !v.Sensitive {
				t.Fatalf("Detect(%q).Sensitive = false, want true", tt.text)
			}
			if !reflect.DeepEqual(v.Categories, tt.categories) {
				t.Errorf("Detect(%q).Categories = %v, want %v", tt.text, v.Categories, tt.categories)
			}
		})
	}
}

func TestDetect_NotSensitive(t *testing.T) {
	for _, text := range []string{
		"the weather is nice",
		"summarize the document",
		"what are the key points?",
		"",
	} {
		v := Detect(text)
		if v.Sensitive {
			t.Errorf("Detect(%q).Sensitive = true (categories %v), want false", text, v.Categories)
		}
		if len(v.Categories) != 0 {
			t.Errorf("Detect(%q).Categories = %v, want empty", text, v.Categories)
		}
	}
}

func TestDetect_CaseInsensitive(t *testing.T) {
	if !Detect("AADHAAR details please").Sensitive {
		t.Error("detection should be case-insensitive")
	}
}
