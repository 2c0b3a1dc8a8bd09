package handlers

import (
	"errors"
	"log"

	"lapak/internal/services"
	"lapak/pkg/payments"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives payment provider events. The raw body must be
// verified against the signature header before anything is parsed from it.
type WebhookHandler struct {
	service       *services.ReconcileService
	webhookSecret string
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(service *services.ReconcileService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// RegisterRoutes registers the webhook endpoint. It must be mounted outside
// the authenticated groups; the provider authenticates with its signature.
func (h *WebhookHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/webhook", h.HandleEvent)
}

// HandleEvent verifies and processes a single provider event.
func (h *WebhookHandler) HandleEvent(c *fiber.Ctx) error {
	event, err := payments.ConstructEvent(c.Body(), c.Get(payments.SignatureHeader), h.webhookSecret, payments.DefaultTolerance)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			log.Printf("Rejected webhook with invalid signature: %v", err)
			return sendServiceError(c, services.ErrUnverified, "Webhook signature verification failed.")
		}
		log.Printf("Error parsing webhook payload: %v", err)
		return sendError(c, fiber.StatusBadRequest, "Invalid webhook payload.")
	}

	if err := h.service.HandleEvent(c.Context(), event); err != nil {
		// Non-2xx tells the provider to redeliver; the failed attempt has
		// released its ledger mark, so the retry is processed.
		log.Printf("Error processing webhook event %s: %v", event.ID, err)
		return sendError(c, fiber.StatusInternalServerError, "Error processing event.")
	}
	return sendSuccess(c, fiber.StatusOK, "Event received", fiber.Map{"received": true})
}
