package handlers

import (
	"errors"
	"log"

	"github.com/amirphl/referral-hub/app/dto"
	businessflow "github.com/amirphl/referral-hub/business_flow"
	"github.com/gofiber/fiber/v3"
)

// Intake error bodies. The intake endpoint answers with {"error": "..."} instead of APIResponse.
const (
	intakeMissingFieldsMessage = "Missing required fields"
	intakeFailedMessage        = "Failed to process request"
)

// ReferralRequestHandlerInterface defines the contract for referral request handlers
type ReferralRequestHandlerInterface interface {
	Submit(c fiber.Ctx) error
	ListByRequester(c fiber.Ctx) error
	ListByReferral(c fiber.Ctx) error
}

// ReferralRequestHandler handles referral request intake and listings
type ReferralRequestHandler struct {
	flow businessflow.ReferralRequestFlow
}

func (h *ReferralRequestHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.Failure(message, errorCode, details))
}

func (h *ReferralRequestHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.Success(message, data))
}

// NewReferralRequestHandler creates a new referral request handler
func NewReferralRequestHandler(flow businessflow.ReferralRequestFlow) *ReferralRequestHandler {
	return &ReferralRequestHandler{flow: flow}
}

func intakeError(c fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.IntakeErrorResponse{Error: message})
}

// Submit Referral Request
// @Summary Submit a referral request
// @Description Validates the request and acknowledges it with a request id. Nothing is stored.
// @Tags ReferralRequests
// @Accept json
// @Produce json
// @Param request body dto.SubmitReferralRequestRequest true "Referral request"
// @Success 200 {object} dto.SubmitReferralRequestResponse "Referral request submitted successfully"
// @Failure 400 {object} dto.IntakeErrorResponse "Missing required fields, or a malformed field when format checks are on"
// @Failure 429 {object} dto.APIResponse "Rate limit exceeded"
// @Failure 500 {object} dto.IntakeErrorResponse "Failed to process request"
// @Router /api/referral-requests [post]
func (h *ReferralRequestHandler) Submit(c fiber.Ctx) error {
	var req dto.SubmitReferralRequestRequest
	if err := c.Bind().JSON(&req); err != nil {
		log.Printf(`{"level":"warn","event":"referral_request_bad_body","request_id":"%s","error":"%v"}`, requestID(c), err)
		return intakeError(c, fiber.StatusInternalServerError, intakeFailedMessage)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(requestID(c))

	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.Submit(ctx, &req, metadata)
	if err != nil {
		switch {
		case businessflow.IsMissingRequiredFields(err):
			return intakeError(c, fiber.StatusBadRequest, intakeMissingFieldsMessage)
		case businessflow.IsInvalidField(err):
			return intakeError(c, fiber.StatusBadRequest, invalidFieldMessage(err))
		}
		var be *businessflow.BusinessError
		if errors.As(err, &be) && be.Code == "INVALID_FIELD" {
			return intakeError(c, fiber.StatusBadRequest, getValidationErrorMessage(be.Err))
		}
		log.Printf(`{"level":"error","event":"referral_request_failed","request_id":"%s","error":"%v"}`, requestID(c), err)
		return intakeError(c, fiber.StatusInternalServerError, intakeFailedMessage)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func invalidFieldMessage(err error) string {
	switch {
	case errors.Is(err, businessflow.ErrInvalidLinkedinURL):
		return "Please enter a valid LinkedIn URL"
	case errors.Is(err, businessflow.ErrInvalidEmail):
		return "Please enter a valid email address"
	default:
		return "Please enter a valid URL"
	}
}

// ListByRequester
// @Summary Referral requests made by a user
// @Tags Users
// @Produce json
// @Param id path string true "User id"
// @Success 200 {object} dto.APIResponse{data=dto.ListReferralRequestsResponse} "Referral requests retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/users/{id}/referral-requests [get]
func (h *ReferralRequestHandler) ListByRequester(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.ListByRequester(ctx, c.Params("id"))
	if err != nil {
		log.Printf(`{"level":"error","event":"list_referral_requests_failed","request_id":"%s","error":"%v"}`, requestID(c), err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list referral requests", "LIST_REFERRAL_REQUESTS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Referral requests retrieved successfully", result)
}

// ListByReferral
// @Summary Referral requests made against a referral
// @Tags Referrals
// @Produce json
// @Param id path string true "Referral id"
// @Success 200 {object} dto.APIResponse{data=dto.ListReferralRequestsResponse} "Referral requests retrieved successfully"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/referrals/{id}/requests [get]
func (h *ReferralRequestHandler) ListByReferral(c fiber.Ctx) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	result, err := h.flow.ListByReferral(ctx, c.Params("id"))
	if err != nil {
		log.Printf(`{"level":"error","event":"list_referral_requests_failed","request_id":"%s","error":"%v"}`, requestID(c), err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list referral requests", "LIST_REFERRAL_REQUESTS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Referral requests retrieved successfully", result)
}
