package authmw

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"kyri56xcaesar/pms-workspace/internal/utils"
)

const claimsKey = "auth.claims"

var ErrMissingToken = errors.New("missing access token")

// Verifier checks bearer tokens against the identity provider's signing keys.
type Verifier struct {
	Issuer   string // e.g. http://localhost:5555/realms/pms-myproj
	Audience string // empty skips the aud check
	ClientID string // for client roles under resource_access[ClientID].roles

	JWKS *keyfunc.JWKS
	// optional clock skew
	Leeway time.Duration
}

// NewVerifier fetches the key set once and keeps refreshing it in the
// background. Build it at startup, not per request.
func NewVerifier(jwksURL, issuer, audience, clientID string) (*Verifier, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: time.Minute * 5,
		RefreshTimeout:   time.Second * 10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks: %w", err)
	}

	return &Verifier{
		Issuer:   issuer,
		Audience: audience,
		ClientID: clientID,
		JWKS:     jwks,
		Leeway:   30 * time.Second,
	}, nil
}

// Close stops the background key refresh.
func (v *Verifier) Close() {
	v.JWKS.EndBackground()
}

type Claims struct {
	jwt.RegisteredClaims

	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	EmailVerified     bool   `json:"email_verified"`
	Name              string `json:"name"`

	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`

	ResourceAccess map[string]struct {
		Roles []string `json:"roles"`
	} `json:"resource_access"`

	roles []string
}

// Roles returns the realm roles and the verifier client's roles.
func (c *Claims) Roles() []string { return c.roles }

// HasAnyRole reports whether the token carries one of anyOf.
func (c *Claims) HasAnyRole(anyOf ...string) bool {
	return hasAnyRole(c.roles, anyOf...)
}

// Verify parses token and checks signature, expiry, issuer and audience.
func (v *Verifier) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(v.Leeway),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, v.JWKS.Keyfunc, opts...); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims.roles = collectRoles(claims, v.ClientID)

	return claims, nil
}

// SetClaims stores verified claims on the request.
func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(claimsKey, claims)
}

// ClaimsFrom returns the claims a previous handler verified, if any.
func ClaimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)

	return claims, ok
}

// ExtractAccessToken reads "Authorization: Bearer <token>", falling back to
// the named cookie when cookieName is set.
func ExtractAccessToken(c *gin.Context, cookieName string) (string, error) {
	authz := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		if tok := strings.TrimSpace(authz[7:]); tok != "" {
			return tok, nil
		}
	}

	if cookieName != "" {
		if cookie, err := c.Cookie(cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}

	return "", ErrMissingToken
}

// --- helpers ---

func collectRoles(claims *Claims, clientID string) []string {
	out := make([]string, 0, 16)

	out = append(out, claims.RealmAccess.Roles...)

	if clientID != "" && claims.ResourceAccess != nil {
		if ra, ok := claims.ResourceAccess[clientID]; ok {
			out = append(out, ra.Roles...)
		}
	}

	return utils.Uniq(utils.Filter(out, func(r string) bool { return r != "" }))
}

func hasAnyRole(userRoles []string, anyOf ...string) bool {
	for _, required := range anyOf {
		if utils.Contains(userRoles, required) {
			return true
		}
	}

	return false
}
