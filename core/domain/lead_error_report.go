package domain

import "time"

// ErrorSeverity classifies client error reports.
type ErrorSeverity string

const (
	SeverityLow      ErrorSeverity = "low"
	SeverityMedium   ErrorSeverity = "medium"
	SeverityHigh     ErrorSeverity = "high"
	SeverityCritical ErrorSeverity = "critical"
)

// ErrorReport is a client-side error captured from the front end.
type ErrorReport struct {
	ID          string        `json:"id" bson:"id"`
	ErrorType   string        `json:"error_type" bson:"error_type"`
	Severity    ErrorSeverity `json:"severity" bson:"severity"`
	Message     string        `json:"message" bson:"message"`
	UserMessage string        `json:"user_message,omitempty" bson:"user_message,omitempty"`
	Stack       string        `json:"stack,omitempty" bson:"stack,omitempty"`
	Code        string        `json:"code,omitempty" bson:"code,omitempty"`
	URL         string        `json:"url,omitempty" bson:"url,omitempty"`
	UserAgent   string        `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	Timestamp   time.Time     `json:"timestamp" bson:"timestamp"`
}

// ErrorSearchCriteria filters error reports. AND semantics, zero means unset.
type ErrorSearchCriteria struct {
	Query     string
	ErrorType string
	Severity  ErrorSeverity
	Occurred  DateRange
	Limit     int
	Offset    int
}

// ErrorSearchResult is the error-report search envelope.
type ErrorSearchResult struct {
	Results []*ErrorReport `json:"results"`
	Total   int64          `json:"total"`
	Limit   int            `json:"limit"`
	Offset  int            `json:"offset"`
}
