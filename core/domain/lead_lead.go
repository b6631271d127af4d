// Package domain holds the lead-capture domain model.
package domain

import (
	"strings"
	"time"
)

// BusinessType is the self-reported vertical of the submitting company.
type BusinessType string

const (
	BusinessRestaurant BusinessType = "restaurant"
	BusinessFleet      BusinessType = "fleet"
	BusinessOther      BusinessType = "other"
)

// SubmissionType distinguishes the two inbound form flows.
type SubmissionType string

const (
	SubmissionStrategy SubmissionType = "strategy"
	SubmissionPilot    SubmissionType = "pilot"
)

// LeadPriority is the coarse urgency tier derived from the score.
type LeadPriority string

const (
	PriorityHot     LeadPriority = "hot"
	PriorityWarm    LeadPriority = "warm"
	PriorityNurture LeadPriority = "nurture"
)

// SoftwareTier is the recommended product tier.
type SoftwareTier string

const (
	TierStarter    SoftwareTier = "starter"
	TierGrowth     SoftwareTier = "growth"
	TierEnterprise SoftwareTier = "enterprise"
)

// EnrichmentStatus tracks the firmographic enrichment lifecycle.
type EnrichmentStatus string

const (
	EnrichmentPending  EnrichmentStatus = "pending"
	EnrichmentComplete EnrichmentStatus = "complete"
	EnrichmentSkipped  EnrichmentStatus = "skipped"
)

// GeoPoint is a GeoJSON point, coordinates ordered [longitude, latitude].
type GeoPoint struct {
	Type        string     `json:"type" bson:"type"`
	Coordinates [2]float64 `json:"coordinates" bson:"coordinates"`
}

// NewGeoPoint builds a GeoJSON point from a [lng, lat] pair.
func NewGeoPoint(lngLat [2]float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: lngLat}
}

// LeadLocation is the submitted service location.
type LeadLocation struct {
	City        string    `json:"city" bson:"city"`
	State       string    `json:"state" bson:"state"`
	PostalCode  string    `json:"postal_code" bson:"postal_code"`
	Coordinates *GeoPoint `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
}

// LeadMarketingMeta carries attribution metadata from the form.
type LeadMarketingMeta struct {
	UTMSource   string `json:"utm_source,omitempty" bson:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty" bson:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty" bson:"utm_campaign,omitempty"`
	LeadSource  string `json:"lead_source,omitempty" bson:"lead_source,omitempty"`
}

// LeadSubmission is the validated inbound form payload. Immutable once validated.
type LeadSubmission struct {
	Name               string             `json:"name" bson:"name"`
	Email              string             `json:"email" bson:"email"`
	Company            string             `json:"company" bson:"company"`
	BusinessType       BusinessType       `json:"business_type" bson:"business_type"`
	Phone              string             `json:"phone" bson:"phone"`
	Message            string             `json:"message,omitempty" bson:"message,omitempty"`
	SubmissionType     SubmissionType     `json:"submission_type" bson:"submission_type"`
	Location           LeadLocation       `json:"location" bson:"location"`
	EstimatedLocations int                `json:"estimated_locations,omitempty" bson:"estimated_locations,omitempty"`
	Headcount          int                `json:"headcount,omitempty" bson:"headcount,omitempty"`
	Marketing          *LeadMarketingMeta `json:"marketing,omitempty" bson:"marketing,omitempty"`
}

// EmailDomain returns the domain part of the submission email.
func (s *LeadSubmission) EmailDomain() string {
	if at := strings.LastIndexByte(s.Email, '@'); at >= 0 && at+1 < len(s.Email) {
		return s.Email[at+1:]
	}
	return "unknown.com"
}

// LeadInsights is the derived sales guidance stored on a record.
type LeadInsights struct {
	IdealSoftwareTier       SoftwareTier `json:"ideal_software_tier" bson:"ideal_software_tier"`
	RecommendedProductFocus string       `json:"recommended_product_focus" bson:"recommended_product_focus"`
	FollowUpActions         []string     `json:"follow_up_actions" bson:"follow_up_actions"`
}

// LeadRecord is the persisted lead. Created once, then field-updated only.
type LeadRecord struct {
	ID string `json:"id" bson:"id"`

	LeadSubmission `bson:",inline"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`

	Score    int          `json:"score" bson:"score"`
	Priority LeadPriority `json:"priority" bson:"priority"`
	Insights LeadInsights `json:"insights" bson:"insights"`

	EnrichmentStatus EnrichmentStatus `json:"enrichment_status" bson:"enrichment_status"`
	EnrichmentNotes  string           `json:"enrichment_notes,omitempty" bson:"enrichment_notes,omitempty"`
	Tags             []string         `json:"tags,omitempty" bson:"tags,omitempty"`
}

// PriorityRank orders priorities for gating: hot > warm > nurture.
// Unknown values rank lowest.
func PriorityRank(p LeadPriority) int {
	switch p {
	case PriorityHot:
		return 2
	case PriorityWarm:
		return 1
	case PriorityNurture:
		return 0
	default:
		return -1
	}
}
