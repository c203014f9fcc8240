package handlers

import (
	"net/url"

	"ranked-tournaments/middleware"
	"ranked-tournaments/models"
	"ranked-tournaments/services"

	"github.com/gofiber/fiber/v2"
)

type submitScoreRequest struct {
	Score   *int64 `json:"score"`
	QueueID string `json:"queue_id"`
}

// SetupRankedRoutes registers the public ranked endpoints.
func SetupRankedRoutes(app *fiber.App, ranked *services.RankedService) {
	r := app.Group("/ranked")

	r.Get("/status", func(c *fiber.Ctx) error {
		status, err := ranked.Status(c.UserContext(), c.Query("player"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(status)
	})

	r.Post("/scores", middleware.PlayerContextMiddleware(), func(c *fiber.Ctx) error {
		var req submitScoreRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if req.Score == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "score is required"})
		}

		result, err := ranked.SubmitScore(c.UserContext(), middleware.PlayerName(c), *req.Score, req.QueueID)
		if err != nil {
			return respondError(c, err)
		}
		status := fiber.StatusOK
		if result.Created {
			status = fiber.StatusCreated
		}
		return c.Status(status).JSON(result)
	})

	// Idempotent: only buckets past their timeout are resolved, once.
	r.Post("/resolve", func(c *fiber.Ctx) error {
		resolved, err := ranked.ResolveDue(c.UserContext(), models.TriggerAuto)
		if err != nil {
			return respondError(c, err)
		}
		if resolved == nil {
			resolved = []services.Resolution{}
		}
		return c.JSON(fiber.Map{"resolved": resolved})
	})

	r.Get("/leaderboard", func(c *fiber.Ctx) error {
		page := c.QueryInt("page", 1)
		limit := c.QueryInt("limit", 0)

		board, err := ranked.Leaderboard(c.UserContext(), page, limit)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(board)
	})

	r.Get("/champions", func(c *fiber.Ctx) error {
		champions, err := ranked.Champions(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"champions": champions})
	})

	r.Get("/players/:name", func(c *fiber.Ctx) error {
		rating, err := ranked.GetPlayer(c.UserContext(), playerParam(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(rating)
	})

	r.Get("/players/:name/history", func(c *fiber.Ctx) error {
		history, err := ranked.PlayerHistory(c.UserContext(), playerParam(c), c.QueryInt("limit", 20))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"history": history})
	})
}

func playerParam(c *fiber.Ctx) string {
	name := c.Params("name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

// SetupAdminRoutes registers the secret-protected operator endpoint.
func SetupAdminRoutes(app *fiber.App, admin *services.AdminService, secret string) {
	app.Post("/ranked/admin", middleware.AdminSecretMiddleware(secret), func(c *fiber.Ctx) error {
		var req services.AdminRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}

		result, err := admin.Execute(c.UserContext(), req)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(result)
	})
}
