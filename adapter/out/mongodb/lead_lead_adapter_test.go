package mongodb

import (
	"testing"
	"time"

	"lead_server/core/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestBuildLeadSearchPipelineStageOrder(t *testing.T) {
	t.Run("text stage first when query present", func(t *testing.T) {
		pipeline := buildLeadSearchPipeline(&domain.LeadSearchCriteria{
			Query:    "pizza",
			Priority: domain.PriorityHot,
			Limit:    50,
		})

		if len(pipeline) != 3 {
			t.Fatalf("pipeline stages = %d, want 3 (text match, structured match, facet)", len(pipeline))
		}

		text, ok := pipeline[0]["$match"].(bson.M)
		if !ok {
			t.Fatalf("stage 0 is not a $match: %v", pipeline[0])
		}
		if _, ok := text["$text"]; !ok {
			t.Errorf("stage 0 must carry the $text filter, got %v", text)
		}

		structured, ok := pipeline[1]["$match"].(bson.M)
		if !ok {
			t.Fatalf("stage 1 is not a $match: %v", pipeline[1])
		}
		if structured["priority"] != domain.PriorityHot {
			t.Errorf("structured match = %v, want priority filter", structured)
		}
		if _, ok := structured["$text"]; ok {
			t.Error("$text must not leak into the structured match stage")
		}

		if _, ok := pipeline[2]["$facet"]; !ok {
			t.Errorf("last stage must be $facet, got %v", pipeline[2])
		}
	})

	t.Run("no text stage without query", func(t *testing.T) {
		pipeline := buildLeadSearchPipeline(&domain.LeadSearchCriteria{
			Priority: domain.PriorityHot,
			Limit:    50,
		})

		if len(pipeline) != 2 {
			t.Fatalf("pipeline stages = %d, want 2 (structured match, facet)", len(pipeline))
		}
		for i, stage := range pipeline {
			if match, ok := stage["$match"].(bson.M); ok {
				if _, ok := match["$text"]; ok {
					t.Errorf("stage %d carries $text without a query", i)
				}
			}
		}
	})

	t.Run("unfiltered criteria collapse to facet only", func(t *testing.T) {
		pipeline := buildLeadSearchPipeline(&domain.LeadSearchCriteria{Limit: 50})

		if len(pipeline) != 1 {
			t.Fatalf("pipeline stages = %d, want just $facet", len(pipeline))
		}
		if _, ok := pipeline[0]["$facet"]; !ok {
			t.Errorf("stage = %v, want $facet", pipeline[0])
		}
	})
}

func TestBuildLeadSearchPipelineFacet(t *testing.T) {
	pipeline := buildLeadSearchPipeline(&domain.LeadSearchCriteria{Limit: 20, Offset: 40})

	facet, ok := pipeline[len(pipeline)-1]["$facet"].(bson.M)
	if !ok {
		t.Fatalf("missing $facet stage")
	}

	results, ok := facet["results"].([]bson.M)
	if !ok || len(results) != 3 {
		t.Fatalf("results sub-pipeline = %v, want sort/skip/limit", facet["results"])
	}
	if results[1]["$skip"] != 40 || results[2]["$limit"] != 20 {
		t.Errorf("page window = (skip %v, limit %v), want (40, 20)", results[1]["$skip"], results[2]["$limit"])
	}

	total, ok := facet["total"].([]bson.M)
	if !ok || len(total) != 1 {
		t.Fatalf("total sub-pipeline = %v", facet["total"])
	}
	if total[0]["$count"] != "count" {
		t.Errorf("total stage = %v, want $count", total[0])
	}

	for facetName, field := range map[string]string{
		"business_types":   "$business_type",
		"submission_types": "$submission_type",
		"priorities":       "$priority",
		"states":           "$location.state",
	} {
		sub, ok := facet[facetName].([]bson.M)
		if !ok {
			t.Errorf("facet %s missing", facetName)
			continue
		}
		group := sub[0]["$group"].(bson.M)
		if group["_id"] != field {
			t.Errorf("facet %s groups on %v, want %s", facetName, group["_id"], field)
		}
	}
}

func TestFacetPipelineDropsEmptyKeys(t *testing.T) {
	sub := facetPipeline("$business_type")

	if len(sub) != 4 {
		t.Fatalf("facet sub-pipeline stages = %d, want 4", len(sub))
	}

	match, ok := sub[1]["$match"].(bson.M)
	if !ok {
		t.Fatalf("stage 1 = %v, want the null-key filter", sub[1])
	}
	id, ok := match["_id"].(bson.M)
	if !ok {
		t.Fatalf("null-key filter = %v", match)
	}
	nin, ok := id["$nin"].(bson.A)
	if !ok || len(nin) != 2 || nin[0] != nil || nin[1] != "" {
		t.Errorf("$nin = %v, want [nil, \"\"]", id["$nin"])
	}

	project, ok := sub[3]["$project"].(bson.M)
	if !ok || project["value"] != "$_id" {
		t.Errorf("project stage = %v, want value from _id", sub[3])
	}
}

func TestBuildLeadMatchGeo(t *testing.T) {
	center := [2]float64{-74.1979, 39.9537}

	tests := []struct {
		name     string
		criteria *domain.LeadSearchCriteria
		wantGeo  bool
	}{
		{
			name:     "radius with center applies the geo stage",
			criteria: &domain.LeadSearchCriteria{Center: &center, RadiusMiles: 25},
			wantGeo:  true,
		},
		{
			name:     "center without radius skips geo",
			criteria: &domain.LeadSearchCriteria{Center: &center},
			wantGeo:  false,
		},
		{
			name:     "radius without center skips geo",
			criteria: &domain.LeadSearchCriteria{RadiusMiles: 25},
			wantGeo:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := buildLeadMatch(tt.criteria)

			geo, ok := match["location.coordinates"].(bson.M)
			if ok != tt.wantGeo {
				t.Fatalf("geo stage present = %v, want %v (match %v)", ok, tt.wantGeo, match)
			}
			if !tt.wantGeo {
				return
			}

			sphere := geo["$geoWithin"].(bson.M)["$centerSphere"].(bson.A)
			coords := sphere[0].(bson.A)
			if coords[0] != center[0] || coords[1] != center[1] {
				t.Errorf("center = %v, want %v", coords, center)
			}
			wantRadians := 25 / earthRadiusMiles
			if sphere[1] != wantRadians {
				t.Errorf("radius = %v radians, want %v", sphere[1], wantRadians)
			}
		})
	}
}

func TestBuildLeadMatchFilters(t *testing.T) {
	scoreMin := 70
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)

	match := buildLeadMatch(&domain.LeadSearchCriteria{
		BusinessType:   domain.BusinessRestaurant,
		SubmissionType: domain.SubmissionStrategy,
		State:          "NJ",
		City:           "Toms River",
		ScoreMin:       &scoreMin,
		Created:        domain.DateRange{From: &from, To: &to},
	})

	if match["business_type"] != domain.BusinessRestaurant {
		t.Errorf("business_type = %v", match["business_type"])
	}
	if match["submission_type"] != domain.SubmissionStrategy {
		t.Errorf("submission_type = %v", match["submission_type"])
	}

	state, ok := match["location.state"].(primitive.Regex)
	if !ok || state.Pattern != "^NJ$" || state.Options != "i" {
		t.Errorf("state filter = %v, want anchored case-insensitive regex", match["location.state"])
	}
	city, ok := match["location.city"].(primitive.Regex)
	if !ok || city.Pattern != "^Toms River$" {
		t.Errorf("city filter = %v", match["location.city"])
	}

	score, ok := match["score"].(bson.M)
	if !ok || score["$gte"] != scoreMin {
		t.Errorf("score filter = %v, want $gte %d", match["score"], scoreMin)
	}

	created, ok := match["created_at"].(bson.M)
	if !ok || created["$gte"] != from || created["$lte"] != to {
		t.Errorf("created filter = %v, want range [%v, %v]", match["created_at"], from, to)
	}
}

func TestBuildLeadMatchEmptyCriteria(t *testing.T) {
	match := buildLeadMatch(&domain.LeadSearchCriteria{})
	if len(match) != 0 {
		t.Errorf("empty criteria must compile to an empty match, got %v", match)
	}
}
