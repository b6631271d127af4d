package scoring

import (
	"strings"

	"lead_server/core/domain"
)

// Conditional tag thresholds.
const (
	multiLocationTagMin       = 10
	enterpriseHeadcountTagMin = 200
)

// DeriveTags builds the tag set for a scored lead. Order is the derivation
// sequence: business type, submission type, priority, then conditional
// tags. Duplicates keep their first position.
func DeriveTags(sub *domain.LeadSubmission, priority domain.LeadPriority) []string {
	tags := []string{
		string(sub.BusinessType),
		string(sub.SubmissionType) + "_request",
		string(priority) + "_priority",
	}

	if sub.EstimatedLocations >= multiLocationTagMin {
		tags = append(tags, "multi_location")
	}
	if sub.Headcount >= enterpriseHeadcountTagMin {
		tags = append(tags, "enterprise_headcount")
	}
	if strings.EqualFold(sub.Location.State, hyperLocalState) {
		tags = append(tags, "local_nj")
	}

	return Dedupe(tags)
}

// Dedupe removes duplicate tags preserving first-insertion order.
func Dedupe(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := tags[:0]
	for _, tag := range tags {
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}
