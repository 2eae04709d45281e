package web

import "github.com/gofiber/fiber/v2"

// commandKeys maps dashboard commands onto the keys the game understands.
var commandKeys = map[string]int{
	"start": 's',
	"quit":  'q',
}

// handleHealth reports liveness.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"session": s.sessionID,
	})
}

// handleStatus returns the current display model.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.Status())
}

// handleRounds returns the won rounds.
func (s *Server) handleRounds(c *fiber.Ctx) error {
	return c.JSON(s.Rounds())
}

// handleCommand queues a start or quit command for the next tick.
func (s *Server) handleCommand(c *fiber.Ctx) error {
	name := c.Params("name")
	key, ok := commandKeys[name]
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "unknown command: " + name,
		})
	}

	select {
	case s.commands <- key:
	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "command queue full",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"command": name,
	})
}
