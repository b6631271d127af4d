package scoring

import "lead_server/core/domain"

// priorityThreshold is one cut point of the priority table.
type priorityThreshold struct {
	min      int
	priority domain.LeadPriority
}

// PriorityThresholds is the named threshold table, evaluated high to low.
// It deliberately mirrors tierThresholds in lead_insights.go; the two tables
// are kept separate because they evolve independently.
var PriorityThresholds = []priorityThreshold{
	{min: 80, priority: domain.PriorityHot},
	{min: 55, priority: domain.PriorityWarm},
	{min: 0, priority: domain.PriorityNurture},
}

// DeterminePriority maps a score to its urgency tier. Pure and total:
// any score lands in a tier.
func DeterminePriority(score int) domain.LeadPriority {
	for _, t := range PriorityThresholds {
		if score >= t.min {
			return t.priority
		}
	}
	return domain.PriorityNurture
}
