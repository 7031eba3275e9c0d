package coverage

import (
	"strconv"
	"strings"
)

// Meta is the diagnostic annotation appended to a successful extraction. It
// compares the receipt's stated AmountPaid against the sum of per-patient
// totals the model computed.
type Meta struct {
	AmountPaid      float64 `json:"amount_paid"`
	PatientTotalSum float64 `json:"patient_total_sum"`
	Threshold       float64 `json:"threshold"`
	Covered         bool    `json:"covered"`
}

// ParseMoney converts a monetary value from the model's output into a float.
// It tolerates a leading currency symbol, thousands separators, and
// surrounding whitespace; JSON numbers pass through. Anything unparsable is
// zero - this function never fails.
func ParseMoney(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSpace(s)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Annotate computes the coverage check for a parsed extraction document.
// Coverage is satisfied when the stated amount paid is zero or absent, or
// when the sum of patient totals reaches at least threshold of it.
//
// The annotation is diagnostic, not load-bearing: any structural surprise in
// the document yields (nil, false) and the caller responds without it.
func Annotate(doc map[string]interface{}, threshold float64) (*Meta, bool) {
	if doc == nil {
		return nil, false
	}
	client, ok := doc["Client"].(map[string]interface{})
	if !ok {
		return nil, false
	}
	paid := ParseMoney(client["AmountPaid"])

	patients, ok := doc["Patients"].([]interface{})
	if !ok {
		return nil, false
	}
	var sum float64
	for _, p := range patients {
		patient, ok := p.(map[string]interface{})
		if !ok {
			continue
		}
		sum += ParseMoney(patient["PatientTotal"])
	}

	covered := paid <= 0 || sum >= threshold*paid
	return &Meta{
		AmountPaid:      paid,
		PatientTotalSum: sum,
		Threshold:       threshold,
		Covered:         covered,
	}, true
}
