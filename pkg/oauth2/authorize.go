package oauth2

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"maiyer/pkg/logger"
)

// ErrNoCode means no authorization code was obtained: either the wait timed
// out or the manual entry was empty. Terminal for this provider's setup step.
var ErrNoCode = errors.New("no authorization code received")

// Authorizer runs the interactive authorization-code flow for one provider:
// build the consent URL, capture the code via the local listener or manual
// entry, and exchange it for tokens.
type Authorizer struct {
	provider Provider
	tokens   *TokenClient
	in       *bufio.Reader
	out      io.Writer
	logger   logger.Client

	// openBrowser is swappable in tests (and lets tests drive the callback
	// themselves instead of opening anything).
	openBrowser func(url string) error
	timeout     time.Duration
}

func NewAuthorizer(provider Provider, tokens *TokenClient, in io.Reader, out io.Writer, log logger.Client) *Authorizer {
	return &Authorizer{
		provider:    provider,
		tokens:      tokens,
		in:          bufio.NewReader(in),
		out:         out,
		logger:      log,
		openBrowser: OpenBrowser,
		timeout:     CallbackTimeout,
	}
}

// ConsentURL builds the provider-hosted consent page URL.
func (a *Authorizer) ConsentURL(clientID string) string {
	params := url.Values{}
	params.Set("scope", a.provider.Scope)
	params.Set("response_type", "code")
	params.Set("client_id", clientID)
	params.Set("redirect_uri", a.provider.RedirectURI)
	for k, v := range a.provider.ExtraAuthParams {
		params.Set(k, v)
	}
	return a.provider.AuthURL + "?" + params.Encode()
}

// Authorize runs the end-to-end flow and returns the user's tokens. The
// manual path is not an error path: on headless machines binding the port
// or opening a browser may be impossible, so a failed bind routes straight
// to manual code entry.
func (a *Authorizer) Authorize(ctx context.Context, clientID, clientSecret string) (*TokenSet, error) {
	consentURL := a.ConsentURL(clientID)

	code, err := a.obtainCode(ctx, consentURL)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, ErrNoCode
	}

	fmt.Fprintln(a.out, "  Exchanging authorization code...")
	token, err := a.tokens.ExchangeCode(ctx, clientID, clientSecret, code)
	if err != nil {
		return nil, err
	}

	a.logger.Info("authorization complete",
		logger.Field{Key: "provider", Value: a.provider.Name},
		logger.Field{Key: "has_refresh_token", Value: token.RefreshToken != ""},
	)
	return token, nil
}

// obtainCode captures the authorization code, via the callback listener when
// the port is free, otherwise via manual entry.
func (a *Authorizer) obtainCode(ctx context.Context, consentURL string) (string, error) {
	server := NewCallbackServer(a.provider.CallbackPort)
	if err := server.Start(); err != nil {
		if !errors.Is(err, ErrListenerUnavailable) {
			return "", err
		}
		a.logger.Warn("callback port unavailable, falling back to manual entry",
			logger.Field{Key: "provider", Value: a.provider.Name},
			logger.Field{Key: "port", Value: a.provider.CallbackPort},
		)
		return a.promptForCode(consentURL)
	}
	defer server.Stop()

	fmt.Fprintln(a.out, "  Opening your browser to authorize access...")
	fmt.Fprintf(a.out, "  (If it doesn't open, visit: %s)\n", consentURL)
	if err := a.openBrowser(consentURL); err != nil {
		a.logger.Warn("failed to open browser", logger.Field{Key: "err", Value: err.Error()})
	}
	fmt.Fprintln(a.out, "  Waiting for authorization...")

	code, err := server.Wait(ctx, a.timeout)
	if err != nil {
		if errors.Is(err, ErrCallbackTimeout) {
			return "", ErrNoCode
		}
		return "", err
	}
	return code, nil
}

// promptForCode asks the user to visit the consent URL and paste the code
// from the redirect by hand.
func (a *Authorizer) promptForCode(consentURL string) (string, error) {
	fmt.Fprintln(a.out, "  Visit this URL to authorize:")
	fmt.Fprintf(a.out, "  %s\n", consentURL)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, "  After authorizing, you'll be redirected to a localhost URL.")
	fmt.Fprintln(a.out, "  Copy the 'code' parameter from that URL.")
	fmt.Fprint(a.out, "  Authorization code: ")

	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", ErrNoCode
	}
	return strings.TrimSpace(line), nil
}
