package scoring

import (
	"strings"

	"lead_server/core/domain"
)

// tierThreshold is one cut point of the software-tier table.
type tierThreshold struct {
	min  int
	tier domain.SoftwareTier
}

// tierThresholds currently matches PriorityThresholds on purpose. Do not
// merge the tables: sales tiering and urgency tiering are allowed to drift.
var tierThresholds = []tierThreshold{
	{min: 80, tier: domain.TierEnterprise},
	{min: 55, tier: domain.TierGrowth},
	{min: 0, tier: domain.TierStarter},
}

// productFocus maps verticals to the recommended pitch.
var productFocus = map[domain.BusinessType]string{
	domain.BusinessRestaurant: "Food waste tracking & AP automation",
	domain.BusinessFleet:      "Fleet compliance dashboards & maintenance scheduling",
}

const productFocusDefault = "Operational intelligence starter package"

// Follow-up action copy.
const (
	actionStrategyWorkshop = "Schedule strategy workshop within 24h"
	actionPilotKickoff     = "Offer pilot kickoff within 72h"
	actionMultiLocationROI = "Share multi-location ROI benchmarks"
	actionLocalNJSupport   = "Highlight local NJ support team availability"
)

const multiLocationActionMin = 10

// BuildLeadInsights derives the sales guidance for a scored submission.
// Follow-up actions are appended in a fixed order; each condition is
// evaluated independently. Pure: identical inputs yield identical output.
func BuildLeadInsights(sub *domain.LeadSubmission, score int) domain.LeadInsights {
	insights := domain.LeadInsights{
		IdealSoftwareTier:       softwareTier(score),
		RecommendedProductFocus: recommendedFocus(sub.BusinessType),
		FollowUpActions:         []string{},
	}

	if sub.SubmissionType == domain.SubmissionStrategy {
		insights.FollowUpActions = append(insights.FollowUpActions, actionStrategyWorkshop)
	} else {
		insights.FollowUpActions = append(insights.FollowUpActions, actionPilotKickoff)
	}

	if sub.EstimatedLocations >= multiLocationActionMin {
		insights.FollowUpActions = append(insights.FollowUpActions, actionMultiLocationROI)
	}

	if strings.EqualFold(sub.Location.State, hyperLocalState) {
		insights.FollowUpActions = append(insights.FollowUpActions, actionLocalNJSupport)
	}

	return insights
}

func softwareTier(score int) domain.SoftwareTier {
	for _, t := range tierThresholds {
		if score >= t.min {
			return t.tier
		}
	}
	return domain.TierStarter
}

func recommendedFocus(bt domain.BusinessType) string {
	if focus, ok := productFocus[bt]; ok {
		return focus
	}
	return productFocusDefault
}
