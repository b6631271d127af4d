package http

import (
	"lead_server/core/domain"
	"lead_server/core/service/lead"
	"lead_server/core/service/search"
	"lead_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LeadHandler handles lead capture and retrieval requests.
type LeadHandler struct {
	leadService   *lead.Service
	searchService *search.Service
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(leadService *lead.Service, searchService *search.Service) *LeadHandler {
	return &LeadHandler{
		leadService:   leadService,
		searchService: searchService,
	}
}

// Register registers lead routes. Submission and search are public; the
// maintenance operations sit behind the admin group. submitLimiter throttles
// only the form submission, not search.
func (h *LeadHandler) Register(public fiber.Router, admin fiber.Router, submitLimiter fiber.Handler) {
	public.Post("/leads", submitLimiter, h.SubmitLead)
	public.Get("/leads/search", h.SearchLeads)

	admin.Post("/leads/rescore", h.RescoreLeads)
	admin.Post("/leads/:id/enrich", h.EnrichLead)
	admin.Get("/leads/:id", h.GetLead)
}

// =============================================================================
// Handlers
// =============================================================================

// SubmitLead captures a new lead from the public form.
func (h *LeadHandler) SubmitLead(c *fiber.Ctx) error {
	var sub domain.LeadSubmission
	if err := c.BodyParser(&sub); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	record, err := h.leadService.Submit(c.Context(), &sub)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.Created(c, record)
}

// SearchLeads runs the filtered, faceted lead search.
func (h *LeadHandler) SearchLeads(c *fiber.Ctx) error {
	criteria := search.ParseCriteria(queryParams{c})

	result, err := h.searchService.Search(c.Context(), criteria)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.OKWithMeta(c, result, &response.Meta{
		Total:  result.Total,
		Limit:  result.Limit,
		Offset: result.Offset,
	})
}

// RescoreLeads recomputes scoring for a batch of stored leads.
func (h *LeadHandler) RescoreLeads(c *fiber.Ctx) error {
	var req lead.RescoreRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "invalid request body")
		}
	}

	entries, err := h.leadService.Rescore(c.Context(), &req)
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.OK(c, fiber.Map{
		"rescored": len(entries),
		"leads":    entries,
	})
}

// EnrichLead applies domain-based enrichment to one lead.
func (h *LeadHandler) EnrichLead(c *fiber.Ctx) error {
	result, err := h.leadService.Enrich(c.Context(), c.Params("id"))
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.OK(c, result)
}

// GetLead fetches a single lead record.
func (h *LeadHandler) GetLead(c *fiber.Ctx) error {
	record, err := h.leadService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return AppErrorResponse(c, err)
	}

	return response.OK(c, record)
}
