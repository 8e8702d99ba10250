package identity

import "github.com/gofiber/fiber/v2"

const localsKey = "user"

// SetUser attaches the resolved user to the request context.
func SetUser(c *fiber.Ctx, u *User) {
	c.Locals(localsKey, u)
}

// CurrentUser extracts the resolved user from the request context. Returns
// nil on routes the identity middleware skips.
func CurrentUser(c *fiber.Ctx) *User {
	if u, ok := c.Locals(localsKey).(*User); ok {
		return u
	}
	return nil
}
