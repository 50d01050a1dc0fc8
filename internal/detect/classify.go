package detect

import (
	"strings"

	"github.com/torii-sec/mamori/internal/models"
)

// ClassifyDocument inspects full document text once at ingestion and assigns
// exactly one document type. Priority is first-match-wins: aadhaar markers are
// checked before banking, before medical, before employee; unknown when none
// match. A document mentioning both "patient" and "salary" is classified
// medical.
func ClassifyDocument(text string) models.DocType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "aadhaar") || strings.Contains(lower, "uid"):
		return models.DocTypeAadhaar
	case strings.Contains(lower, "account") || strings.Contains(lower, "bank"):
		return models.DocTypeBanking
	case strings.Contains(lower, "patient") || strings.Contains(lower, "medical"):
		return models.DocTypeMedical
	case strings.Contains(lower, "employee") || strings.Contains(lower, "salary"):
		return models.DocTypeEmployee
	default:
		return models.DocTypeUnknown
	}
}
