package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sunghyun0422/snf.semi/internal/session"
)

const claimsKey = "claims"

type AuthMiddleware struct {
	signer *session.Signer
	now    func() time.Time
}

func NewAuthMiddleware(signer *session.Signer, now func() time.Time) *AuthMiddleware {
	if now == nil {
		now = time.Now
	}
	return &AuthMiddleware{signer: signer, now: now}
}

// LoadClaims verifies the request cookies once and stores the result for the gates and
// handlers further down the chain.
func (m *AuthMiddleware) LoadClaims() fiber.Handler {
	return func(c *fiber.Ctx) error {
		m.StoreClaims(c)
		return c.Next()
	}
}

// StoreClaims verifies the cookies on c and keeps the result for Claims. Error handlers
// use it directly since they run outside the middleware chain.
func (m *AuthMiddleware) StoreClaims(c *fiber.Ctx) session.Claims {
	claims := m.signer.Load(c)
	c.Locals(claimsKey, claims)
	return claims
}

// Claims returns what LoadClaims found. Requests that skipped it carry no claims.
func Claims(c *fiber.Ctx) session.Claims {
	if claims, ok := c.Locals(claimsKey).(session.Claims); ok {
		return claims
	}
	return session.Claims{}
}

func (m *AuthMiddleware) AdminGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Claims(c).Admin {
			return c.Redirect("/admin/login")
		}
		return c.Next()
	}
}

// OfferGate lets admins through, and anyone whose offer claim is at most 30 minutes old.
// A stale or unreadable claim is cleared on the way to the login page.
func (m *AuthMiddleware) OfferGate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		now := m.now()
		if session.AllowOffer(claims, now) {
			return c.Next()
		}

		if state := session.OfferStateAt(claims, now); state != session.NoToken {
			slog.Info("offer access cleared", "state", state.String())
			session.Clear(c, session.OfferCookie)
		}
		return c.Redirect("/offers/login")
	}
}
