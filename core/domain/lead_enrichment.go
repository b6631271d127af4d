package domain

// EnrichmentUpdate is the field set applied to a lead by the enrichment path.
// It never touches the original submission fields.
type EnrichmentUpdate struct {
	Headcount int               `json:"headcount"`
	Tags      []string          `json:"tags"`
	Status    EnrichmentStatus  `json:"enrichment_status"`
	Notes     string            `json:"enrichment_notes"`
	Marketing LeadMarketingMeta `json:"marketing"`
	Insights  LeadInsights      `json:"insights"`
}
