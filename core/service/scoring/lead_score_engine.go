// Package scoring implements the additive lead scoring rules, the priority
// classifier, and the derived sales insights.
package scoring

import (
	"strings"

	"lead_server/core/domain"
)

// Rule tables are configuration data. Each rule contributes a non-negative
// number of points; the final score is the clamped sum.

const maxScore = 100

// businessTypePoints: base points per vertical. Unknown values fall to the
// "other" default.
var businessTypePoints = map[domain.BusinessType]int{
	domain.BusinessRestaurant: 35,
	domain.BusinessFleet:      25,
	domain.BusinessOther:      15,
}

const businessTypeDefaultPoints = 15

// submissionTypePoints: strategy requests signal stronger intent than pilots.
var submissionTypePoints = map[domain.SubmissionType]int{
	domain.SubmissionStrategy: 25,
	domain.SubmissionPilot:    18,
}

const submissionTypeDefaultPoints = 18

// countTier awards points for the highest qualifying threshold only.
type countTier struct {
	min    int
	points int
}

// locationTiers: multi-location operators, highest tier wins.
var locationTiers = []countTier{
	{min: 10, points: 20},
	{min: 5, points: 12},
	{min: 2, points: 5},
}

// headcountTiers: larger organizations, highest tier wins.
var headcountTiers = []countTier{
	{min: 200, points: 15},
	{min: 100, points: 10},
}

// channelBonus awards points for the first matching utm_source substring.
type channelBonus struct {
	substring string
	points    int
}

// channelBonuses are checked in order; first match wins.
var channelBonuses = []channelBonus{
	{substring: "paid", points: 10},
	{substring: "event", points: 8},
	{substring: "referral", points: 6},
}

// regionalStates earn the in-territory bonus.
var regionalStates = map[string]bool{
	"nj": true,
	"pa": true,
	"de": true,
}

const (
	regionalBonusPoints   = 10
	hyperLocalBonusPoints = 5
	hyperLocalState       = "nj"
	hyperLocalCity        = "toms river"
)

// ScoreLead computes the lead score from the submission attributes.
// Rules are additive and evaluated in a fixed order; the result is clamped
// to [0, 100]. The function is total: unknown enum values score through the
// default branches rather than failing.
func ScoreLead(sub *domain.LeadSubmission) int {
	score := 0

	if pts, ok := businessTypePoints[sub.BusinessType]; ok {
		score += pts
	} else {
		score += businessTypeDefaultPoints
	}

	if pts, ok := submissionTypePoints[sub.SubmissionType]; ok {
		score += pts
	} else {
		score += submissionTypeDefaultPoints
	}

	score += tierPoints(locationTiers, sub.EstimatedLocations)
	score += tierPoints(headcountTiers, sub.Headcount)

	if sub.Marketing != nil {
		utmSource := strings.ToLower(sub.Marketing.UTMSource)
		if utmSource != "" {
			for _, bonus := range channelBonuses {
				if strings.Contains(utmSource, bonus.substring) {
					score += bonus.points
					break
				}
			}
		}
	}

	city := strings.ToLower(sub.Location.City)
	state := strings.ToLower(sub.Location.State)
	if regionalStates[state] {
		score += regionalBonusPoints
	}
	if state == hyperLocalState && city == hyperLocalCity {
		score += hyperLocalBonusPoints
	}

	if score > maxScore {
		score = maxScore
	}
	return score
}

// tierPoints returns the points of the highest qualifying tier, or zero.
func tierPoints(tiers []countTier, value int) int {
	for _, tier := range tiers {
		if value >= tier.min {
			return tier.points
		}
	}
	return 0
}
