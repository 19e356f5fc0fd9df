package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/janboddez/import-from-pixelfed/internal/queue"
	"github.com/janboddez/import-from-pixelfed/internal/repository"
)

type ImportsHandler struct {
	ip          repository.ImportedPostRepository
	AsynqClient *asynq.Client
}

func NewImportsHandler(ip repository.ImportedPostRepository, asynqClient *asynq.Client) *ImportsHandler {
	return &ImportsHandler{ip: ip, AsynqClient: asynqClient}
}

func (h *ImportsHandler) ListImports(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	posts, err := h.ip.List(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list imported posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// TriggerSync enqueues an out-of-schedule sync cycle.
func (h *ImportsHandler) TriggerSync(c *fiber.Ctx) error {
	err := queue.EnqueueSync(h.AsynqClient, queue.SyncStatusesPayload{Reason: "manual"})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error scheduling sync",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Sync scheduled successfully",
	})
}
