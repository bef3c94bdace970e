package cdek

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
)

// refreshSkew refreshes tokens slightly before the carrier-side expiry.
const refreshSkew = 60 * time.Second

// tokenSource caches the OAuth2 client-credentials token until expiry.
// Concurrent refreshes collapse into a single outbound call.
type tokenSource struct {
	httpClient *http.Client
	baseURL    string
	account    string
	secret     string

	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	now func() time.Time
}

func newTokenSource(httpClient *http.Client, baseURL, account, secret string) *tokenSource {
	return &tokenSource{
		httpClient: httpClient,
		baseURL:    baseURL,
		account:    account,
		secret:     secret,
		now:        time.Now,
	}
}

// Token returns a valid bearer token, fetching a fresh one when needed.
func (t *tokenSource) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	if t.token != "" && t.now().Before(t.expiresAt) {
		token := t.token
		t.mu.Unlock()
		return token, nil
	}
	t.mu.Unlock()

	result, err, _ := t.group.Do("token", func() (any, error) {
		// Re-check under the flight: a concurrent caller may have refreshed.
		t.mu.Lock()
		if t.token != "" && t.now().Before(t.expiresAt) {
			token := t.token
			t.mu.Unlock()
			return token, nil
		}
		t.mu.Unlock()

		return t.fetch(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (t *tokenSource) fetch(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", t.account)
	form.Set("client_secret", t.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cdek token request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading cdek token response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("cdek token request failed with status %d", resp.StatusCode))
	}

	var payload tokenResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding cdek token response")
	}
	if payload.AccessToken == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "cdek token response missing access_token")
	}

	ttl := time.Duration(payload.ExpiresIn) * time.Second
	if ttl > refreshSkew {
		ttl -= refreshSkew
	}

	t.mu.Lock()
	t.token = payload.AccessToken
	t.expiresAt = t.now().Add(ttl)
	t.mu.Unlock()

	return payload.AccessToken, nil
}

// Invalidate drops the cached token so the next call re-authenticates.
func (t *tokenSource) Invalidate() {
	t.mu.Lock()
	t.token = ""
	t.expiresAt = time.Time{}
	t.mu.Unlock()
}
