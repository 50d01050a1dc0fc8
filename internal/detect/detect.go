// Package detect classifies free text against a registry of protected-data
// categories and provides deterministic masking of matched identifiers.
//
// Detection is pattern-based and therefore incomplete: paraphrased or encoded
// sensitive data will not match. It is one layer of a layered defense (query
// screening, document typing, generation-time policy, output filtering), not
// a complete control on its own.
package detect

import (
	"regexp"

	"github.com/torii-sec/mamori/internal/models"
)

// Category names reported in verdicts.
const (
	CategoryIdentityDocument = "identity-document"
	CategoryBanking          = "banking"
	CategoryTaxID            = "tax-id"
	CategoryContact          = "contact"
	CategoryFinancialAmount  = "financial-amount"
)

type category struct {
	name    string
	pattern *regexp.Regexp
}

// categories is the fixed detection registry. Order is stable and determines
// the order of names in Verdict.Categories.
var categories = []category{
	{CategoryIdentityDocument, regexp.MustCompile(`(?i)\baadhaar\b|\buid\b`)},
	{CategoryBanking, regexp.MustCompile(`(?i)\baccount\b|\bbank\b|\bifsc\b`)},
	{CategoryTaxID, regexp.MustCompile(`(?i)\bpan\s*(number|no|card)?\b`)},
	{CategoryContact, regexp.MustCompile(`(?i)\bphone\b|\bmobile\b|\bemail\b|[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{CategoryFinancialAmount, regexp.MustCompile(`(?i)\bsalary\b|\bctc\b|\bbalance\b|₹\s*[\d,]+`)},
}

// Detect classifies text against every category in the registry. It is total
// and side-effect-free: it never fails, and the verdict lists all matching
// category names, not just the first.
func Detect(text string) models.Verdict {
	var matched []string
	for _, c := range categories {
		if c.pattern.MatchString(text) {
			matched = append(matched, c.name)
		}
	}
	return models.Verdict{Sensitive: len(matched) > 0, Categories: matched}
}
