// Package enrichment derives firmographic attributes from an email domain.
package enrichment

import (
	"fmt"
	"strings"

	"lead_server/core/domain"
)

// domainProfile is the inferred firmographic shape for one domain class.
type domainProfile struct {
	headcount  int
	leadSource string
	utmSource  string
	tier       domain.SoftwareTier
	tags       []string
	followUps  []string
}

// domainRule matches an email domain by substring. Rules are configuration
// data evaluated in order; the first match wins.
type domainRule struct {
	substrings []string
	profile    domainProfile
}

var domainRules = []domainRule{
	{
		substrings: []string{"group"},
		profile: domainProfile{
			headcount:  500,
			leadSource: "account_based",
			utmSource:  "account_based",
			tier:       domain.TierEnterprise,
			tags:       []string{"enterprise", "abm_target"},
			followUps:  []string{"Route to enterprise AE", "Invite to executive briefing"},
		},
	},
	{
		substrings: []string{"cafe", "dining"},
		profile: domainProfile{
			headcount:  150,
			leadSource: "inbound_content",
			utmSource:  "seo",
			tier:       domain.TierGrowth,
			tags:       []string{"hospitality", "regional_chain"},
			followUps:  []string{"Share food waste case study", "Offer analytics walkthrough"},
		},
	},
}

// fallbackProfile covers domains matching no rule.
var fallbackProfile = domainProfile{
	headcount:  75,
	leadSource: "organic",
	utmSource:  "direct",
	tier:       domain.TierStarter,
	tags:       []string{"smb"},
	followUps:  []string{"Send personalized onboarding plan"},
}

// Product focus for the enrichment path differs from the scoring path: the
// enterprise bundle pitch replaces the starter package.
const (
	focusFleet   = "Fleet compliance automation"
	focusDefault = "Food waste + AP automation bundle"
)

// DeriveEnrichment classifies an email domain and returns the field set to
// apply to the lead. Pure and idempotent: identical inputs always produce
// identical output.
func DeriveEnrichment(emailDomain string, businessType domain.BusinessType) *domain.EnrichmentUpdate {
	profile := classify(emailDomain)

	focus := focusDefault
	if businessType == domain.BusinessFleet {
		focus = focusFleet
	}

	return &domain.EnrichmentUpdate{
		Headcount: profile.headcount,
		Tags:      append([]string(nil), profile.tags...),
		Status:    domain.EnrichmentComplete,
		Notes:     fmt.Sprintf("Enriched via domain heuristics (%s)", emailDomain),
		Marketing: domain.LeadMarketingMeta{
			LeadSource: profile.leadSource,
			UTMSource:  profile.utmSource,
		},
		Insights: domain.LeadInsights{
			IdealSoftwareTier:       profile.tier,
			RecommendedProductFocus: focus,
			FollowUpActions:         append([]string(nil), profile.followUps...),
		},
	}
}

func classify(emailDomain string) domainProfile {
	lower := strings.ToLower(emailDomain)
	for _, rule := range domainRules {
		for _, sub := range rule.substrings {
			if strings.Contains(lower, sub) {
				return rule.profile
			}
		}
	}
	return fallbackProfile
}
