package handlers

import (
	"log"
	"strconv"
	"strings"

	"github.com/amirphl/referral-hub/app/dto"
	businessflow "github.com/amirphl/referral-hub/business_flow"
	"github.com/amirphl/referral-hub/utils"
	"github.com/gofiber/fiber/v3"
)

// CatalogHandlerInterface defines the contract for referral catalog handlers
type CatalogHandlerInterface interface {
	List(c fiber.Ctx) error
	Export(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	FilterOptions(c fiber.Ctx) error
	PopularTags(c fiber.Ctx) error
	TopCompanies(c fiber.Ctx) error
	ByAuthor(c fiber.Ctx) error
}

// CatalogHandler handles referral listing requests
type CatalogHandler struct {
	flow businessflow.CatalogFlow
}

func (h *CatalogHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.Failure(message, errorCode, details))
}

func (h *CatalogHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.Success(message, data))
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(flow businessflow.CatalogFlow) *CatalogHandler {
	return &CatalogHandler{flow: flow}
}

// listRequestFromQuery reads location, workType, tags (comma separated), q and activeOnly
func listRequestFromQuery(c fiber.Ctx) (*dto.ListReferralsRequest, error) {
	req := &dto.ListReferralsRequest{
		TagIDs: utils.SplitCSV(c.Query("tags")),
		Query:  c.Query("q"),
	}
	if v := strings.TrimSpace(c.Query("location")); v != "" {
		req.LocationID = &v
	}
	if v := strings.TrimSpace(c.Query("workType")); v != "" {
		req.WorkType = &v
	}
	if v := c.Query("activeOnly"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		req.ActiveOnly = b
	}
	return req, nil
}

// handleFlowError maps catalog flow errors onto responses
func (h *CatalogHandler) handleFlowError(c fiber.Ctx, err error, operation string) error {
	switch {
	case businessflow.IsReferralNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Referral not found", "REFERRAL_NOT_FOUND", nil)
	case businessflow.IsUserNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "User not found", "USER_NOT_FOUND", nil)
	case businessflow.IsInvalidLimit(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid limit", "INVALID_LIMIT", err.Error())
	case businessflow.IsCatalogUnavailable(err):
		log.Printf(`{"level":"error","event":"%s_failed","request_id":"%s","error":"%v"}`, operation, requestID(c), err)
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Referral catalog is unavailable", "CATALOG_UNAVAILABLE", nil)
	}
	log.Printf(`{"level":"error","event":"%s_failed","request_id":"%s","error":"%v"}`, operation, requestID(c), err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR", nil)
}

// List Referrals
// @Summary List referrals
// @Description Returns the referral cards passing every active filter. Tags use AND semantics.
// @Tags Referrals
// @Produce json
// @Param location query string false "Location option id from /api/v1/filters"
// @Param workType query string false "Display work type: Remote, On-site or Hybrid"
// @Param tags query string false "Comma separated tag ids; a referral must carry all of them"
// @Param q query string false "Free-text search over title, description and company"
// @Param activeOnly query bool false "Only list referrals still accepting requests"
// @Success 200 {object} dto.APIResponse{data=dto.ListReferralsResponse} "Referrals retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid query parameters"
// @Failure 503 {object} dto.APIResponse "Catalog unavailable"
// @Router /api/v1/referrals [get]
func (h *CatalogHandler) List(c fiber.Ctx) error {
	req, err := listRequestFromQuery(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", "activeOnly must be a boolean")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.ListReferrals(ctx, req)
	if err != nil {
		return h.handleFlowError(c, err, "list_referrals")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Referrals retrieved successfully", result)
}

// Export Referrals
// @Summary Export referrals (Excel)
// @Description Downloads the filtered listing as an xlsx workbook. Accepts the same query parameters as the listing.
// @Tags Referrals
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param location query string false "Location option id"
// @Param workType query string false "Display work type"
// @Param tags query string false "Comma separated tag ids"
// @Param q query string false "Free-text search"
// @Param activeOnly query bool false "Only active referrals"
// @Success 200 {string} string "Excel file"
// @Failure 400 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/referrals/export [get]
func (h *CatalogHandler) Export(c fiber.Ctx) error {
	req, err := listRequestFromQuery(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", "activeOnly must be a boolean")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	filename, data, err := h.flow.ExportReferrals(ctx, req)
	if err != nil {
		return h.handleFlowError(c, err, "export_referrals")
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// Get Referral
// @Summary Get referral details
// @Tags Referrals
// @Produce json
// @Param id path string true "Referral id"
// @Success 200 {object} dto.APIResponse{data=dto.ReferralDetailResponse} "Referral retrieved successfully"
// @Failure 404 {object} dto.APIResponse "Referral not found"
// @Router /api/v1/referrals/{id} [get]
func (h *CatalogHandler) Get(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.GetReferral(ctx, c.Params("id"))
	if err != nil {
		return h.handleFlowError(c, err, "get_referral")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Referral retrieved successfully", result)
}

// FilterOptions
// @Summary List filter options
// @Description Locations (first-seen order, positional ids), work types and tags.
// @Tags Referrals
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.FilterOptionsResponse} "Filter options retrieved successfully"
// @Router /api/v1/filters [get]
func (h *CatalogHandler) FilterOptions(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.FilterOptions(ctx)
	if err != nil {
		return h.handleFlowError(c, err, "filter_options")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Filter options retrieved successfully", result)
}

// PopularTags
// @Summary Most used tags
// @Tags Referrals
// @Produce json
// @Param limit query int false "Number of tags (default 5, max 50)"
// @Success 200 {object} dto.APIResponse{data=[]dto.TagCount} "Popular tags retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid limit"
// @Router /api/v1/tags/popular [get]
func (h *CatalogHandler) PopularTags(c fiber.Ctx) error {
	limit, err := parseLimit(c, "limit")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid limit", "INVALID_LIMIT", err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.PopularTags(ctx, limit)
	if err != nil {
		return h.handleFlowError(c, err, "popular_tags")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Popular tags retrieved successfully", result)
}

// TopCompanies
// @Summary Companies with the most referrals
// @Tags Referrals
// @Produce json
// @Param limit query int false "Number of companies (default 5, max 50)"
// @Success 200 {object} dto.APIResponse{data=[]dto.CompanyCount} "Top companies retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid limit"
// @Router /api/v1/companies/top [get]
func (h *CatalogHandler) TopCompanies(c fiber.Ctx) error {
	limit, err := parseLimit(c, "limit")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid limit", "INVALID_LIMIT", err.Error())
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.TopCompanies(ctx, limit)
	if err != nil {
		return h.handleFlowError(c, err, "top_companies")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Top companies retrieved successfully", result)
}

// ByAuthor
// @Summary Referrals posted by a user
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} dto.APIResponse{data=dto.AuthorReferralsResponse} "Referrals retrieved successfully"
// @Failure 404 {object} dto.APIResponse "User not found"
// @Router /api/v1/users/{id}/referrals [get]
func (h *CatalogHandler) ByAuthor(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.ReferralsByAuthor(ctx, c.Params("id"))
	if err != nil {
		return h.handleFlowError(c, err, "referrals_by_author")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Referrals retrieved successfully", result)
}
