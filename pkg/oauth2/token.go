package oauth2

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"maiyer/pkg/logger"
)

const (
	defaultTokenType = "Bearer"
	defaultExpiresIn = 1800
)

var (
	// ErrEmptyCode is returned when an authorization-code exchange is
	// attempted without a code.
	ErrEmptyCode = errors.New("authorization code is empty")

	// ErrEmptyRefreshToken is returned when a refresh is attempted without
	// a refresh token.
	ErrEmptyRefreshToken = errors.New("refresh token is empty")
)

// TokenSet is the token response from a provider's token endpoint. Fields
// absent in the response take the documented defaults.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// AuthError is returned when a token endpoint responds with a non-200
// status, or with a 200 body that carries no access token.
type AuthError struct {
	Provider string
	Status   int
	Body     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: token request failed with status %d: %s", e.Provider, e.Status, e.Body)
}

// TokenClient issues the three OAuth2 grant flows against a single
// provider's token endpoint.
type TokenClient struct {
	httpClient *http.Client
	provider   Provider
	logger     logger.Client
}

func NewTokenClient(httpClient *http.Client, provider Provider, logger logger.Client) *TokenClient {
	return &TokenClient{
		httpClient: httpClient,
		provider:   provider,
		logger:     logger,
	}
}

// ClientCredentials obtains an application token with no user context.
func (c *TokenClient) ClientCredentials(ctx context.Context, clientID, clientSecret, scope string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", scope)
	return c.exchange(ctx, clientID, clientSecret, form)
}

// ExchangeCode trades an authorization code for user tokens.
func (c *TokenClient) ExchangeCode(ctx context.Context, clientID, clientSecret, code string) (*TokenSet, error) {
	if code == "" {
		return nil, ErrEmptyCode
	}
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.provider.RedirectURI)
	return c.exchange(ctx, clientID, clientSecret, form)
}

// Refresh obtains a fresh access token from a refresh token.
func (c *TokenClient) Refresh(ctx context.Context, clientID, clientSecret, refreshToken string) (*TokenSet, error) {
	if refreshToken == "" {
		return nil, ErrEmptyRefreshToken
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.exchange(ctx, clientID, clientSecret, form)
}

// exchange posts the form to the token endpoint, placing the client
// credentials where the provider expects them.
func (c *TokenClient) exchange(ctx context.Context, clientID, clientSecret string, form url.Values) (*TokenSet, error) {
	if c.provider.AuthStyle == AuthStyleForm {
		form.Set("client_id", clientID)
		form.Set("client_secret", clientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.provider.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build token request: %w", c.provider.Name, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if c.provider.AuthStyle == AuthStyleBasic {
		req.SetBasicAuth(clientID, clientSecret)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: token request failed: %w", c.provider.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &AuthError{Provider: c.provider.Name, Status: resp.StatusCode, Body: string(body)}
	}

	var token TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("%s: failed to decode token response: %w", c.provider.Name, err)
	}
	if token.AccessToken == "" {
		return nil, &AuthError{Provider: c.provider.Name, Status: resp.StatusCode, Body: "no access token in response"}
	}
	if token.TokenType == "" {
		token.TokenType = defaultTokenType
	}
	if token.ExpiresIn == 0 {
		token.ExpiresIn = defaultExpiresIn
	}

	c.logger.Debug("token grant succeeded",
		logger.Field{Key: "provider", Value: c.provider.Name},
		logger.Field{Key: "grant_type", Value: form.Get("grant_type")},
	)
	return &token, nil
}
