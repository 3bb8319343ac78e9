// Package cookie centralises how auth tokens travel in browser cookies.
//
// Tokens are written HttpOnly, Secure and SameSite=None so that a separate
// frontend origin can use them in cross-site requests, which is why every
// write is gated on the configured origin allow-list.
package cookie

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora-dev/auth-core/internal/core/domain"
)

// Cookie names used for the two token types.
const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Policy decides whether a request origin may receive auth cookies and
// writes them with the attributes cross-site browser flows require.
type Policy struct {
	allowOrigins []string
	domain       string
}

// NewPolicy builds a Policy from the configured origin allow-list. An entry
// of "*" allows every origin. The cookie domain may be empty.
func NewPolicy(allowOrigins []string, domain string) *Policy {
	return &Policy{allowOrigins: allowOrigins, domain: domain}
}

// IsAllowedOrigin reports whether origin may receive auth cookies.
func (p *Policy) IsAllowedOrigin(origin string) bool {
	for _, allowed := range p.allowOrigins {
		if allowed == origin || allowed == "*" {
			return true
		}
	}
	return false
}

// OriginFromRequest extracts the caller's origin: the Origin header when
// present, otherwise the Referer reduced to scheme://host[:port], otherwise
// the first configured origin.
func (p *Policy) OriginFromRequest(c echo.Context) string {
	if origin := c.Request().Header.Get("Origin"); origin != "" {
		return origin
	}

	if referer := c.Request().Header.Get("Referer"); referer != "" {
		if u, err := url.Parse(referer); err == nil && u.Scheme != "" && u.Hostname() != "" {
			origin := u.Scheme + "://" + u.Hostname()
			if port := u.Port(); port != "" {
				origin += ":" + port
			}
			return origin
		}
	}

	if len(p.allowOrigins) > 0 {
		return p.allowOrigins[0]
	}
	return ""
}

// SetAuthCookies writes both token cookies for an allowed origin.
// Returns domain.ErrForbidden when the request origin is not allowed.
func (p *Policy) SetAuthCookies(c echo.Context, pair *domain.TokenPair) error {
	origin := p.OriginFromRequest(c)
	if !p.IsAllowedOrigin(origin) {
		return domain.ErrForbidden
	}

	p.write(c, AccessCookie, pair.AccessToken, pair.AccessExpiresAt)
	p.write(c, RefreshCookie, pair.RefreshToken, pair.RefreshExpiresAt)
	return nil
}

// SetAccessCookie rewrites only the access token cookie, used when a
// refresh renews the access token. Origin-gated like SetAuthCookies.
func (p *Policy) SetAccessCookie(c echo.Context, token string, expiresAt time.Time) error {
	origin := p.OriginFromRequest(c)
	if !p.IsAllowedOrigin(origin) {
		return domain.ErrForbidden
	}

	p.write(c, AccessCookie, token, expiresAt)
	return nil
}

// ClearAuthCookies expires both token cookies regardless of origin.
func (p *Policy) ClearAuthCookies(c echo.Context) {
	p.expire(c, AccessCookie)
	p.expire(c, RefreshCookie)
}

// TokenFromCookie returns the named cookie's value, or "" when absent.
func (p *Policy) TokenFromCookie(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil || ck == nil {
		return ""
	}
	return ck.Value
}

// TokenFromRequest returns the access token carried by the request, trying
// the cookie first and the Authorization header second.
func (p *Policy) TokenFromRequest(c echo.Context) string {
	if token := p.TokenFromCookie(c, AccessCookie); token != "" {
		return token
	}

	header := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func (p *Policy) write(c echo.Context, name, value string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   p.domain,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}

func (p *Policy) expire(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   p.domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
