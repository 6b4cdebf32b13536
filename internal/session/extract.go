package session

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/campuskit/authcore/internal/common"
)

// envelope mirrors the JSON object the web frontend stores in the session
// cookie. Only one of the fields is populated in practice.
type envelope struct {
	Token       string `json:"token"`
	AccessToken string `json:"accessToken"`
	Data        struct {
		Token string `json:"token"`
	} `json:"data"`
}

// TokenFromRequest extracts the raw session credential from an HTTP request.
//
// The univ_auth_session cookie wins when present; its value may be a
// URL-encoded JSON envelope (token / accessToken / data.token) or a bare
// token. The Authorization bearer header is the fallback for tooling and
// non-browser clients. Returns "" when no carrier holds a token.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(common.SessionCookieName); err == nil && c.Value != "" {
		if tok := tokenFromCookieValue(c.Value); tok != "" {
			return tok
		}
	}

	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}

	return ""
}

func tokenFromCookieValue(value string) string {
	if decoded, err := url.QueryUnescape(value); err == nil {
		value = decoded
	}

	if !strings.HasPrefix(value, "{") {
		// A bare token was stored directly.
		return value
	}

	var env envelope
	if err := json.Unmarshal([]byte(value), &env); err != nil {
		return ""
	}

	switch {
	case env.Token != "":
		return env.Token
	case env.AccessToken != "":
		return env.AccessToken
	case env.Data.Token != "":
		return env.Data.Token
	}
	return ""
}
