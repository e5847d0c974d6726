package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/queuely/queue-service/internal/api/dto"
	"github.com/queuely/queue-service/internal/auth"
	"github.com/queuely/queue-service/internal/domain"
	"github.com/queuely/queue-service/internal/queuestate"
	"github.com/queuely/queue-service/internal/service"
	apperrors "github.com/queuely/queue-service/pkg/util/errorutil"
)

// QueuesHandler exposes queue administration, membership and search endpoints.
type QueuesHandler struct {
	service *service.QueueService
}

// NewQueuesHandler constructs handler.
func NewQueuesHandler(queueService *service.QueueService) *QueuesHandler {
	return &QueuesHandler{service: queueService}
}

// Create POST /api/queues/create.
func (h *QueuesHandler) Create(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateQueueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	queue, err := h.service.Create(c.UserContext(), principal.User, queuestate.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    domain.QueueCategory(req.Category),
		Capacity:    req.Capacity,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewQueueResponse(queue)})
}

// ListMine GET /api/queues/my-queues.
func (h *QueuesHandler) ListMine(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	queues, err := h.service.ListMine(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueResponses(queues)})
}

// ListJoined GET /api/queues/my-joined.
func (h *QueuesHandler) ListJoined(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	joined, err := h.service.ListJoined(c.UserContext(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewJoinedQueueResponses(joined)})
}

// Get GET /api/queues/:id.
func (h *QueuesHandler) Get(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	queue, err := h.service.GetForOwner(c.UserContext(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueResponse(queue)})
}

// UpdateStatus PATCH /api/queues/:id/status.
func (h *QueuesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	queue, err := h.service.SetStatus(c.UserContext(), principal.User.ID, c.Params("id"), domain.QueueStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueResponse(queue)})
}

// Delete DELETE /api/queues/:id.
func (h *QueuesHandler) Delete(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal.User.ID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// CallNext POST /api/queues/:id/call-next.
func (h *QueuesHandler) CallNext(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	queueID := c.Params("id")
	served, err := h.service.CallNext(c.UserContext(), principal.User.ID, queueID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CallNextResponse{
		QueueID:  queueID,
		UserID:   served.UserID,
		Position: served.Position,
		WaitTime: served.WaitTime,
		ServedAt: served.ServedAt,
	}})
}

// Join POST /api/queues/:id/join.
func (h *QueuesHandler) Join(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	queueID := c.Params("id")
	result, err := h.service.Join(c.UserContext(), principal.User.ID, queueID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.JoinResponse{
		QueueID:           queueID,
		Position:          result.Position,
		EstimatedWaitTime: result.EstimatedWaitTime,
	}})
}

// Leave POST /api/queues/:id/leave.
func (h *QueuesHandler) Leave(c *fiber.Ctx) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return err
	}
	queueID := c.Params("id")
	previous, err := h.service.Leave(c.UserContext(), principal.User.ID, queueID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LeaveResponse{QueueID: queueID, PreviousPosition: previous}})
}

// Search GET /api/queues/search/:queueId. No authentication.
func (h *QueuesHandler) Search(c *fiber.Ctx) error {
	summary, err := h.service.Search(c.UserContext(), c.Params("queueId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewQueueSummaryResponse(summary)})
}

func currentPrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}
