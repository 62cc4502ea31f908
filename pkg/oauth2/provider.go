package oauth2

// AuthStyle selects where a provider expects client credentials on token
// endpoint requests.
type AuthStyle int

const (
	// AuthStyleBasic sends client id/secret as an HTTP Basic Authorization header.
	AuthStyleBasic AuthStyle = iota
	// AuthStyleForm sends client id/secret as client_id/client_secret form fields.
	AuthStyleForm
)

// Provider holds the per-provider OAuth2 configuration. The two providers
// differ only in endpoints, credential placement and extra consent
// parameters; the flows themselves are shared.
type Provider struct {
	Name            string
	AuthURL         string
	TokenURL        string
	RedirectURI     string
	Scope           string
	AuthStyle       AuthStyle
	ExtraAuthParams map[string]string
	CallbackPort    int
}

const (
	krogerAuthURL  = "https://api.kroger.com/v1/connect/oauth2/authorize"
	krogerTokenURL = "https://api.kroger.com/v1/connect/oauth2/token"

	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	// KrogerClientScope is the scope used for client-credentials tokens
	// (catalog and store lookups, no user context).
	KrogerClientScope = "product.compact"

	// KrogerUserScope is the scope requested on user authorization.
	KrogerUserScope = "product.compact cart.basic:write"

	// GoogleTasksScope grants read/write access to the user's task lists.
	GoogleTasksScope = "https://www.googleapis.com/auth/tasks"
)

// Kroger returns the retailer provider configuration. The callback port is
// fixed: the registered redirect URI must match exactly.
func Kroger() Provider {
	return Provider{
		Name:         "kroger",
		AuthURL:      krogerAuthURL,
		TokenURL:     krogerTokenURL,
		RedirectURI:  "http://localhost:8888/callback",
		Scope:        KrogerUserScope,
		AuthStyle:    AuthStyleBasic,
		CallbackPort: 8888,
	}
}

// GoogleTasks returns the task-list provider configuration. Google wants the
// credentials inline in the form body, and needs access_type=offline plus
// prompt=consent or it will not issue a refresh token.
func GoogleTasks() Provider {
	return Provider{
		Name:        "google",
		AuthURL:     googleAuthURL,
		TokenURL:    googleTokenURL,
		RedirectURI: "http://localhost:8889/callback",
		Scope:       GoogleTasksScope,
		AuthStyle:   AuthStyleForm,
		ExtraAuthParams: map[string]string{
			"access_type": "offline",
			"prompt":      "consent",
		},
		CallbackPort: 8889,
	}
}
