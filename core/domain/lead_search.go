package domain

// LeadSearchCriteria is the store-neutral filter object compiled by the
// persistence adapter into whatever query mechanism the store offers.
// All fields combine with AND semantics; zero values mean "no filter".
type LeadSearchCriteria struct {
	// Free-text query. When present, the adapter runs a text-relevance
	// stage before the structured filters.
	Query string

	BusinessType   BusinessType
	SubmissionType SubmissionType
	Priority       LeadPriority
	State          string
	City           string
	ScoreMin       *int
	Created        DateRange

	// Geo filter. Active only when RadiusMiles > 0 and Center is set;
	// the search service resolves Center before the adapter sees it.
	RadiusMiles float64
	Center      *[2]float64

	Limit  int
	Offset int
}

// HasGeoFilter reports whether the geo stage should be applied.
func (c *LeadSearchCriteria) HasGeoFilter() bool {
	return c.RadiusMiles > 0 && c.Center != nil
}

// LeadSearchFacets are count breakdowns over the full filtered set,
// computed before the pagination window is applied.
type LeadSearchFacets struct {
	BusinessTypes   []FacetBucket `json:"business_types"`
	SubmissionTypes []FacetBucket `json:"submission_types"`
	Priorities      []FacetBucket `json:"priorities"`
	States          []FacetBucket `json:"states"`
}

// LeadSearchResult is the search response envelope.
type LeadSearchResult struct {
	Results []*LeadRecord    `json:"results"`
	Total   int64            `json:"total"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
	Facets  LeadSearchFacets `json:"facets"`
}
