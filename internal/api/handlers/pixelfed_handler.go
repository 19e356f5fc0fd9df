package handlers

import (
	"github.com/gofiber/fiber/v2"
	config "github.com/janboddez/import-from-pixelfed/configs"
	"github.com/janboddez/import-from-pixelfed/internal/service"
)

type PixelfedHandler struct {
	ts  service.TokenService
	cfg config.Config
}

func NewPixelfedHandler(cfg config.Config, ts service.TokenService) *PixelfedHandler {
	return &PixelfedHandler{ts: ts, cfg: cfg}
}

// Authorize registers the app (if needed) and sends the user to the
// instance's consent screen.
func (h *PixelfedHandler) Authorize(c *fiber.Ctx) error {
	authURL, err := h.ts.AuthorizeURL(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Something went wrong contacting your Pixelfed instance. Please reload this page to try again.",
		})
	}

	return c.Redirect(authURL)
}

func (h *PixelfedHandler) Callback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if err := h.ts.ExchangeCode(c.Context(), code, state); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Something went wrong contacting your Pixelfed instance. Please reload this page to try again.",
		})
	}

	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}

// Revoke drops the token server-side where possible; the local state is
// cleared no matter what.
func (h *PixelfedHandler) Revoke(c *fiber.Ctx) error {
	if err := h.ts.Revoke(c.Context()); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to disconnect",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}

func (h *PixelfedHandler) AccountInfo(c *fiber.Ctx) error {
	account, err := h.ts.Account(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to find the connected account",
		})
	}

	if account == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No instance connected",
		})
	}

	return c.JSON(fiber.Map{
		"host":       account.Host,
		"account_id": account.AccountID,
		"username":   account.AccountUsername,
		"connected":  account.AccessToken != "",
	})
}
