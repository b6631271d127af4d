package domain

import "time"

// DateRange bounds a query by creation time. Nil ends are unbounded.
type DateRange struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool {
	return r.From == nil && r.To == nil
}

// FacetBucket is one value/count pair of a facet dimension.
type FacetBucket struct {
	Value string `json:"value" bson:"value"`
	Count int64  `json:"count" bson:"count"`
}
