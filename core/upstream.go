package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

const upstreamExchangeTimeout = 15 * time.Second

// HTTPUpstreamExchanger performs the refresh-token grant against the
// client's upstream token endpoint with a form-encoded POST, the way
// OAuth token endpoints expect it.
type HTTPUpstreamExchanger struct {
	client HTTPDoer
}

func NewHTTPUpstreamExchanger(client HTTPDoer) *HTTPUpstreamExchanger {
	if client == nil {
		client = &http.Client{Timeout: upstreamExchangeTimeout}
	}
	return &HTTPUpstreamExchanger{client: client}
}

// RefreshGrant exchanges the stored refresh value for a fresh grant. An
// upstream rejection (any non-2xx status) is reported as ok == false
// with no error so callers can treat it as a clean denial; transport and
// decode failures are errors.
func (e *HTTPUpstreamExchanger) RefreshGrant(ctx context.Context, client Client, refreshValue string) (FormalToken, bool, error) {
	if e == nil || e.client == nil {
		return FormalToken{}, false, gatewayError(
			"core: upstream http client is not configured",
			goerrors.CategoryInternal,
			500,
			GatewayErrorInternal,
			nil,
		)
	}
	tokenURI := strings.TrimSpace(client.TokenURI)
	if tokenURI == "" {
		return FormalToken{}, false, gatewayError(
			"core: client "+client.Name+" has no token uri",
			goerrors.CategoryBadInput,
			400,
			GatewayErrorBadInput,
			map[string]any{"client_id": client.ID},
		)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshValue)
	if redirect := strings.TrimSpace(client.RedirectURI); redirect != "" {
		form.Set("redirect_uri", redirect)
	}
	if id := strings.TrimSpace(client.UpstreamClientID); id != "" {
		form.Set("client_id", id)
	}
	if secret := strings.TrimSpace(client.UpstreamClientSecret); secret != "" {
		form.Set("client_secret", secret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURI, strings.NewReader(form.Encode()))
	if err != nil {
		return FormalToken{}, false, fmt.Errorf("core: upstream request build failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := e.client.Do(req)
	if err != nil {
		return FormalToken{}, false, gatewayError(
			"core: upstream token exchange failed: "+err.Error(),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			GatewayErrorUpstreamRefresh,
			map[string]any{"client_id": client.ID, "token_uri": tokenURI},
		)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return FormalToken{}, false, nil
	}

	var wire FormalToken
	if err := json.NewDecoder(res.Body).Decode(&wire); err != nil {
		return FormalToken{}, false, gatewayError(
			"core: upstream token response decode failed: "+err.Error(),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			GatewayErrorUpstreamRefresh,
			map[string]any{"client_id": client.ID},
		)
	}
	if strings.TrimSpace(wire.AccessToken) == "" {
		return FormalToken{}, false, nil
	}
	return wire, true, nil
}

var _ UpstreamExchanger = (*HTTPUpstreamExchanger)(nil)
