package handler

import (
	"net/url"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/velora-dev/auth-core/internal/realtime"
)

// WSHandler upgrades authenticated requests into hub sessions.
type WSHandler struct {
	hub      *realtime.Hub
	patterns []string
	log      zerolog.Logger
}

// NewWSHandler derives the websocket origin patterns from the same origin
// allow-list the cookie policy uses, so browser clients face one rule.
func NewWSHandler(hub *realtime.Hub, allowOrigins []string, log zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, patterns: originPatterns(allowOrigins), log: log}
}

// Serve handles GET /ws. The Auth middleware has already identified the
// user; the socket only pushes notices, inbound frames are ignored.
//
// @Summary      Open the account-notice websocket
// @Tags         realtime
// @Security     CookieAuth
// @Success      101  "websocket upgrade"
// @Failure      401  {object}  errorResponse
// @Router       /ws [get]
func (h *WSHandler) Serve(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: h.patterns,
	})
	if err != nil {
		// Accept has already written the handshake failure.
		h.log.Debug().Err(err).Str("user_id", user.ID.String()).Msg("websocket accept failed")
		return nil
	}

	h.hub.Serve(c.Request().Context(), conn, user.ID)
	return nil
}

// originPatterns reduces configured origins to the host patterns
// websocket.Accept matches the Origin header against.
func originPatterns(allowOrigins []string) []string {
	patterns := make([]string, 0, len(allowOrigins))
	for _, origin := range allowOrigins {
		if origin == "*" {
			return []string{"*"}
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
		}
	}
	return patterns
}
