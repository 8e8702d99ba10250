package middleware

import (
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/oticalume/otica-crm/internal/apperr"
	"github.com/oticalume/otica-crm/internal/config"
	"github.com/oticalume/otica-crm/internal/identity"
)

// Paths that don't require a resolvable identity.
var identitySkipPaths = []string{
	"/api/health",
}

// Identity resolves the requester against the roster. Candidates are scanned
// in a fixed precedence: optional bearer-token claim, then headers, then
// query keys, then body keys. 400 when nothing was supplied, 403 when
// candidates were supplied but none resolves.
func Identity(roster *identity.Registry, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		for _, skip := range identitySkipPaths {
			if strings.HasPrefix(path, skip) {
				return c.Next()
			}
		}

		var candidates []string
		if claim := bearerClaim(c, cfg); claim != "" {
			candidates = append(candidates, claim)
		}
		for _, key := range identity.HeaderKeys {
			candidates = append(candidates, c.Get(key))
		}
		for _, key := range identity.QueryKeys {
			candidates = append(candidates, c.Query(key))
		}
		candidates = append(candidates, bodyCandidates(c)...)

		user, supplied := roster.ResolveCandidates(candidates...)
		if user == nil {
			if !supplied {
				return apperr.NotAuthenticated("identificação do usuário ausente")
			}
			return apperr.NotAuthorized("usuário não reconhecido")
		}

		identity.SetUser(c, user)
		return c.Next()
	}
}

// bearerClaim probes an optional Authorization bearer token for a user claim.
// Absent token or unset secret changes nothing; the token is only one more
// candidate source.
func bearerClaim(c *fiber.Ctx, cfg *config.Config) string {
	if cfg.JWTSecret == "" {
		return ""
	}
	auth := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	token, err := jwt.Parse(strings.TrimPrefix(auth, "Bearer "), func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	if uid, ok := claims["userId"].(string); ok && uid != "" {
		return uid
	}
	return ""
}

// bodyCandidates reads owner-aliased keys out of a JSON body, in alias order.
func bodyCandidates(c *fiber.Ctx) []string {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(body, &m); err != nil {
		return nil
	}
	out := make([]string, 0, len(identity.BodyKeys))
	for _, key := range identity.BodyKeys {
		if s, ok := m[key].(string); ok {
			out = append(out, s)
		}
	}
	return out
}
