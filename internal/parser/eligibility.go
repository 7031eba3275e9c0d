package parser

// Grant eligibility is derived purely from the payer's ZIP code. The first
// two buckets are fixed program ZIPs; everything else falls into the
// configured catch-all label (the deployed prompt variants disagreed on its
// wording, so it is configuration rather than code).
const (
	LabelPFL       = "PFL"
	LabelIncubator = "Incubator"
)

var pflZips = map[string]bool{
	"14211": true,
	"14215": true,
}

const incubatorZip = "14208"

// GrantEligibility maps a ZIP code to its grant-eligibility label. It is pure
// and total: any ZIP outside the program buckets maps to catchAll.
func GrantEligibility(zip string, catchAll string) string {
	switch {
	case pflZips[zip]:
		return LabelPFL
	case zip == incubatorZip:
		return LabelIncubator
	default:
		return catchAll
	}
}
