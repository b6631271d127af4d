package enrichment

import (
	"reflect"
	"testing"

	"lead_server/core/domain"
)

func TestDeriveEnrichment(t *testing.T) {
	tests := []struct {
		name          string
		emailDomain   string
		businessType  domain.BusinessType
		wantHeadcount int
		wantTier      domain.SoftwareTier
		wantSource    string
		wantTags      []string
		wantFocus     string
	}{
		{
			name:          "group domain classifies as enterprise",
			emailDomain:   "hudsongroup.com",
			businessType:  domain.BusinessRestaurant,
			wantHeadcount: 500,
			wantTier:      domain.TierEnterprise,
			wantSource:    "account_based",
			wantTags:      []string{"enterprise", "abm_target"},
			wantFocus:     "Food waste + AP automation bundle",
		},
		{
			name:          "cafe domain classifies as growth",
			emailDomain:   "sunrisecafe.com",
			businessType:  domain.BusinessRestaurant,
			wantHeadcount: 150,
			wantTier:      domain.TierGrowth,
			wantSource:    "inbound_content",
			wantTags:      []string{"hospitality", "regional_chain"},
			wantFocus:     "Food waste + AP automation bundle",
		},
		{
			name:          "dining domain classifies as growth",
			emailDomain:   "finedining.net",
			businessType:  domain.BusinessOther,
			wantHeadcount: 150,
			wantTier:      domain.TierGrowth,
			wantSource:    "inbound_content",
			wantTags:      []string{"hospitality", "regional_chain"},
			wantFocus:     "Food waste + AP automation bundle",
		},
		{
			name:          "unmatched domain falls back to starter",
			emailDomain:   "gmail.com",
			businessType:  domain.BusinessRestaurant,
			wantHeadcount: 75,
			wantTier:      domain.TierStarter,
			wantSource:    "organic",
			wantTags:      []string{"smb"},
			wantFocus:     "Food waste + AP automation bundle",
		},
		{
			name:          "fleet business gets fleet focus",
			emailDomain:   "acmetrucking.com",
			businessType:  domain.BusinessFleet,
			wantHeadcount: 75,
			wantTier:      domain.TierStarter,
			wantSource:    "organic",
			wantTags:      []string{"smb"},
			wantFocus:     "Fleet compliance automation",
		},
		{
			name:          "matching is case insensitive",
			emailDomain:   "BigGROUP.COM",
			businessType:  domain.BusinessOther,
			wantHeadcount: 500,
			wantTier:      domain.TierEnterprise,
			wantSource:    "account_based",
			wantTags:      []string{"enterprise", "abm_target"},
			wantFocus:     "Food waste + AP automation bundle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveEnrichment(tt.emailDomain, tt.businessType)

			if got.Headcount != tt.wantHeadcount {
				t.Errorf("headcount = %d, want %d", got.Headcount, tt.wantHeadcount)
			}
			if got.Insights.IdealSoftwareTier != tt.wantTier {
				t.Errorf("tier = %s, want %s", got.Insights.IdealSoftwareTier, tt.wantTier)
			}
			if got.Marketing.LeadSource != tt.wantSource {
				t.Errorf("lead source = %q, want %q", got.Marketing.LeadSource, tt.wantSource)
			}
			if !reflect.DeepEqual(got.Tags, tt.wantTags) {
				t.Errorf("tags = %v, want %v", got.Tags, tt.wantTags)
			}
			if got.Insights.RecommendedProductFocus != tt.wantFocus {
				t.Errorf("focus = %q, want %q", got.Insights.RecommendedProductFocus, tt.wantFocus)
			}
			if got.Status != domain.EnrichmentComplete {
				t.Errorf("status = %s, want complete", got.Status)
			}
		})
	}
}

func TestDeriveEnrichmentIsIdempotent(t *testing.T) {
	first := DeriveEnrichment("sunrisecafe.com", domain.BusinessRestaurant)
	second := DeriveEnrichment("sunrisecafe.com", domain.BusinessRestaurant)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls diverged: %+v vs %+v", first, second)
	}
}

func TestDeriveEnrichmentCopiesSlices(t *testing.T) {
	// Mutating one result must not leak into the next.
	first := DeriveEnrichment("hudsongroup.com", domain.BusinessOther)
	first.Tags[0] = "mutated"

	second := DeriveEnrichment("hudsongroup.com", domain.BusinessOther)
	if second.Tags[0] != "enterprise" {
		t.Errorf("shared tag slice mutated: %v", second.Tags)
	}
}
