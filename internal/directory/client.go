// Package directory implements the read-only client for the external
// university directory, the authoritative system of record for identities
// and credentials.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/campuskit/authcore/internal/common"
)

// Client fetches identity records over HTTP with a static service credential.
// One bounded attempt per call, no retries: the caller decides whether a
// failure escalates to the degraded login path.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient builds a directory client. baseURL is the versioned API root
// (e.g. "http://192.168.13.170:3201/v1"); token is the master service
// credential; timeout bounds the whole request including body read.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves the identity for loginName.
//
// Returns common.ErrNotFound when the directory affirmatively reports an
// unknown login, and an error wrapping common.ErrDirectoryUnavailable for
// timeouts, transport failures, unexpected statuses, and malformed payloads.
func (c *Client) Fetch(ctx context.Context, loginName string) (*Identity, error) {
	if loginName == "" {
		return nil, fmt.Errorf("%w: empty login name", common.ErrNotFound)
	}

	endpoint := fmt.Sprintf("%s/usuarios/usuario/%s", c.baseURL, url.PathEscape(loginName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", common.ErrDirectoryUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, common.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %s", common.ErrDirectoryUnavailable, resp.Status)
	}

	identity := &Identity{}
	if err := json.NewDecoder(resp.Body).Decode(identity); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", common.ErrDirectoryUnavailable, err)
	}

	if err := identity.Validate(); err != nil {
		// A 200 with a payload we cannot trust is a directory fault, not a
		// user fault.
		return nil, fmt.Errorf("%w: %v", common.ErrDirectoryUnavailable, err)
	}

	return identity, nil
}

// IsUnavailable reports whether err represents a directory outage rather
// than an affirmative answer.
func IsUnavailable(err error) bool {
	return errors.Is(err, common.ErrDirectoryUnavailable)
}
