package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"maiyer/cfg"
	"maiyer/pkg/krogerclient"
	"maiyer/pkg/logger"
	"maiyer/pkg/oauth2"
	"maiyer/pkg/tasksclient"
)

const envFile = ".env"

var rootCmd = &cobra.Command{
	Use:   "maiyer",
	Short: "Shop your Fred Meyer list from the terminal",
	Long: `maiyer turns a Google Tasks list into a filled Fred Meyer cart.

Run "maiyer init" once to connect your Kroger and Google accounts,
then "maiyer order" whenever the shopping list is ready.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newInitCmd(), newOrderCmd(), newSearchCmd(), newStoresCmd())
}

// app bundles the pieces every authenticated command needs.
type app struct {
	config       *cfg.Config
	logger       logger.Client
	httpClient   *http.Client
	krogerTokens *oauth2.TokenClient
	googleTokens *oauth2.TokenClient
	krogerAPI    *krogerclient.Client
	tasksAPI     *tasksclient.Client
}

func newApp() (*app, error) {
	config, err := cfg.Load()
	if err != nil {
		return nil, err
	}

	zlogger := logger.NewZeroLog(config.AppEnv)
	httpClient := &http.Client{Timeout: 30 * time.Second}

	return &app{
		config:       config,
		logger:       zlogger,
		httpClient:   httpClient,
		krogerTokens: oauth2.NewTokenClient(httpClient, krogerProvider(), zlogger),
		googleTokens: oauth2.NewTokenClient(httpClient, googleProvider(), zlogger),
		krogerAPI:    krogerclient.New(httpClient, krogerBaseURL(), zlogger),
		tasksAPI:     tasksclient.New(httpClient, tasksBaseURL(), zlogger),
	}, nil
}

// clientToken fetches an app-level token for catalog and store lookups.
func (a *app) clientToken(cmd *cobra.Command) (string, error) {
	token, err := a.krogerTokens.ClientCredentials(cmd.Context(),
		a.config.Kroger.ClientID, a.config.Kroger.ClientSecret, oauth2.KrogerClientScope)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// Base and OAuth2 endpoint URLs are overridable so the bundled mock server
// can stand in for the real APIs during development.

func krogerBaseURL() string {
	if v := os.Getenv("KROGER_API_URL"); v != "" {
		return v
	}
	return krogerclient.DefaultBaseURL
}

func tasksBaseURL() string {
	if v := os.Getenv("GOOGLE_TASKS_API_URL"); v != "" {
		return v
	}
	return tasksclient.DefaultBaseURL
}

func krogerProvider() oauth2.Provider {
	p := oauth2.Kroger()
	if v := os.Getenv("KROGER_AUTH_URL"); v != "" {
		p.AuthURL = v
	}
	if v := os.Getenv("KROGER_TOKEN_URL"); v != "" {
		p.TokenURL = v
	}
	return p
}

func googleProvider() oauth2.Provider {
	p := oauth2.GoogleTasks()
	if v := os.Getenv("GOOGLE_AUTH_URL"); v != "" {
		p.AuthURL = v
	}
	if v := os.Getenv("GOOGLE_TOKEN_URL"); v != "" {
		p.TokenURL = v
	}
	return p
}
