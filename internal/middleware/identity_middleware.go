package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/fadilmartias/jobmarket/internal/apperr"
	"github.com/fadilmartias/jobmarket/internal/lifecycle"
	"github.com/fadilmartias/jobmarket/internal/util"
)

const (
	HeaderActorID       = "X-Actor-ID"
	HeaderActorRole     = "X-Actor-Role"
	HeaderActorStatus   = "X-Actor-Status"
	HeaderIdentityToken = "X-Identity-Token"

	actorKey = "actor"
)

// Identity reads the actor descriptor forwarded by the identity proxy.
// When token is non-empty the proxy must also present it. SYSTEM is reserved
// for in-process actors such as the scheduler and is refused here.
func Identity(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token != "" {
			got := c.Get(HeaderIdentityToken)
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return c.Status(fiber.StatusUnauthorized).JSON(util.OrderedErrorResponse{
					Success: false,
					Message: "untrusted identity source",
				})
			}
		}

		id, err := uuid.Parse(strings.TrimSpace(c.Get(HeaderActorID)))
		if err != nil {
			return util.AppErrorResponse(c, apperr.Invalid("missing or invalid actor", map[string]string{HeaderActorID: "must be a uuid"}))
		}
		role, ok := lifecycle.ParseRole(c.Get(HeaderActorRole))
		if !ok || role == lifecycle.RoleSystem {
			return util.AppErrorResponse(c, apperr.Invalid("missing or invalid actor", map[string]string{HeaderActorRole: "must be EMPLOYER, EMPLOYEE or CUSTOMER"}))
		}
		status := strings.ToUpper(strings.TrimSpace(c.Get(HeaderActorStatus)))
		if status == "" {
			status = lifecycle.AccountActive
		}

		c.Locals(actorKey, lifecycle.Actor{ID: id, Role: role, Status: status})
		return c.Next()
	}
}

// ActorFrom returns the actor stored by Identity.
func ActorFrom(c *fiber.Ctx) lifecycle.Actor {
	a, _ := c.Locals(actorKey).(lifecycle.Actor)
	return a
}
