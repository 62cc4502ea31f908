package setup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"maiyer/cfg"
	"maiyer/pkg/krogerclient"
	"maiyer/pkg/logger"
	"maiyer/pkg/oauth2"
	"maiyer/pkg/tasksclient"
)

// ErrAborted is returned when the user declines to overwrite an existing
// configuration.
var ErrAborted = errors.New("setup aborted")

// Deps carries everything the wizard talks to. Providers and clients are
// injected so tests can point them at local endpoints.
type Deps struct {
	HTTPClient     *http.Client
	KrogerProvider oauth2.Provider
	GoogleProvider oauth2.Provider
	KrogerAPI      *krogerclient.Client
	TasksAPI       *tasksclient.Client
	EnvPath        string
	In             io.Reader
	Out            io.Writer
	Logger         logger.Client
}

// Wizard sequences the interactive setup: credentials, client-token
// verification, the two authorization flows, store selection and the final
// one-time write of the env file.
type Wizard struct {
	krogerTokens *oauth2.TokenClient
	googleTokens *oauth2.TokenClient
	krogerAuth   *oauth2.Authorizer
	googleAuth   *oauth2.Authorizer
	krogerAPI    *krogerclient.Client
	tasksAPI     *tasksclient.Client
	envPath      string
	in           *bufio.Reader
	out          io.Writer
	logger       logger.Client
}

func NewWizard(deps Deps) *Wizard {
	in := bufio.NewReader(deps.In)
	krogerTokens := oauth2.NewTokenClient(deps.HTTPClient, deps.KrogerProvider, deps.Logger)
	googleTokens := oauth2.NewTokenClient(deps.HTTPClient, deps.GoogleProvider, deps.Logger)

	return &Wizard{
		krogerTokens: krogerTokens,
		googleTokens: googleTokens,
		krogerAuth:   oauth2.NewAuthorizer(deps.KrogerProvider, krogerTokens, in, deps.Out, deps.Logger),
		googleAuth:   oauth2.NewAuthorizer(deps.GoogleProvider, googleTokens, in, deps.Out, deps.Logger),
		krogerAPI:    deps.KrogerAPI,
		tasksAPI:     deps.TasksAPI,
		envPath:      deps.EnvPath,
		in:           in,
		out:          deps.Out,
		logger:       deps.Logger,
	}
}

// Run executes the wizard end to end. Any network or protocol failure
// aborts the current step; the user restarts the wizard to retry.
func (w *Wizard) Run(ctx context.Context) error {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  maiyer Setup")
	fmt.Fprintln(w.out, "  ============")

	if _, err := os.Stat(w.envPath); err == nil {
		fmt.Fprintln(w.out)
		fmt.Fprintf(w.out, "  %s already exists.\n", w.envPath)
		answer := w.prompt("  Overwrite? [y/N]: ")
		if !strings.EqualFold(answer, "y") {
			fmt.Fprintln(w.out, "  Aborted.")
			return ErrAborted
		}
	}

	clientID, clientSecret, err := w.promptCredentials()
	if err != nil {
		return err
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  Verifying credentials...")
	clientToken, err := w.krogerTokens.ClientCredentials(ctx, clientID, clientSecret, oauth2.KrogerClientScope)
	if err != nil {
		return fmt.Errorf("credential verification failed: %w", err)
	}
	fmt.Fprintln(w.out, "  OK!")

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  Step 2: Connect Your Account")
	userToken, err := w.krogerAuth.Authorize(ctx, clientID, clientSecret)
	if err != nil {
		return err
	}

	storeID, err := w.selectStore(ctx, clientToken.AccessToken)
	if err != nil {
		return err
	}

	google, err := w.setupGoogleTasks(ctx)
	if err != nil {
		return err
	}

	settings := cfg.Settings{
		Kroger: cfg.KrogerSettings{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			AccessToken:  userToken.AccessToken,
			RefreshToken: userToken.RefreshToken,
			StoreID:      storeID,
		},
		Google: google,
	}
	if err := cfg.Save(w.envPath, settings); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	w.logger.Info("setup complete", logger.Field{Key: "store_id", Value: storeID})
	fmt.Fprintln(w.out)
	fmt.Fprintf(w.out, "  Setup complete! Configuration saved to %s\n", w.envPath)
	return nil
}

func (w *Wizard) promptCredentials() (string, string, error) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  Step 1: Kroger API Credentials")
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  You need a Kroger developer account (https://developer.kroger.com).")
	fmt.Fprintln(w.out, "  Create an application with the redirect URI set to the local callback,")
	fmt.Fprintln(w.out, "  then note your Client ID and Client Secret.")
	fmt.Fprintln(w.out)

	clientID := w.prompt("  Client ID: ")
	clientSecret := w.prompt("  Client Secret: ")
	if clientID == "" || clientSecret == "" {
		return "", "", errors.New("both Client ID and Client Secret are required")
	}
	return clientID, clientSecret, nil
}

func (w *Wizard) selectStore(ctx context.Context, accessToken string) (string, error) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  Step 3: Select Your Store")
	fmt.Fprintln(w.out)
	zipCode := w.prompt("  ZIP code: ")

	fmt.Fprintln(w.out, "  Searching for nearby stores...")
	stores, err := w.krogerAPI.FindStores(ctx, accessToken, zipCode, krogerclient.DefaultChain, 5)
	if err != nil {
		return "", err
	}

	if len(stores) == 0 {
		fmt.Fprintln(w.out, "  No stores found near that ZIP code.")
		return w.prompt("  Enter a store ID manually: "), nil
	}

	fmt.Fprintln(w.out)
	for i, store := range stores {
		fmt.Fprintf(w.out, "    %d. %s (%s)\n", i+1, store.Name, store.Address)
	}
	fmt.Fprintln(w.out)

	choice := w.prompt("  Select a store [1]: ")
	if choice == "" {
		choice = "1"
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(stores) {
		return "", fmt.Errorf("invalid store selection: %q", choice)
	}
	return stores[idx-1].LocationID, nil
}

// setupGoogleTasks optionally connects a Google Tasks list as the shopping
// list source. Declining or leaving credentials empty skips the step.
func (w *Wizard) setupGoogleTasks(ctx context.Context) (*cfg.GoogleSettings, error) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  Step 4: Google Tasks Shopping List (Optional)")
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  Connect a Google Tasks list to use as your shopping list.")
	answer := w.prompt("  Set up Google Tasks? [y/N]: ")
	if !strings.EqualFold(answer, "y") {
		fmt.Fprintln(w.out, "  Skipped.")
		return nil, nil
	}

	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  You need Google Cloud OAuth2 credentials with the Tasks API enabled.")
	fmt.Fprintln(w.out)

	clientID := w.prompt("  Google Client ID: ")
	clientSecret := w.prompt("  Google Client Secret: ")
	if clientID == "" || clientSecret == "" {
		fmt.Fprintln(w.out, "  Both Client ID and Client Secret are required; skipping Google Tasks setup.")
		return nil, nil
	}

	token, err := w.googleAuth.Authorize(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	listID, err := w.selectTaskList(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	return &cfg.GoogleSettings{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TasksListID:  listID,
	}, nil
}

func (w *Wizard) selectTaskList(ctx context.Context, accessToken string) (string, error) {
	fmt.Fprintln(w.out)
	fmt.Fprintln(w.out, "  Fetching your Google Tasks lists...")
	lists, err := w.tasksAPI.ListTaskLists(ctx, accessToken)
	if err != nil {
		return "", err
	}

	if len(lists) == 0 {
		fmt.Fprintln(w.out, "  No task lists found in your Google account.")
		return w.prompt("  Enter a task list ID manually: "), nil
	}

	fmt.Fprintln(w.out)
	for i, list := range lists {
		fmt.Fprintf(w.out, "    %d. %s\n", i+1, list.Title)
	}
	fmt.Fprintln(w.out)

	choice := w.prompt("  Select a list [1]: ")
	if choice == "" {
		choice = "1"
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(lists) {
		return "", fmt.Errorf("invalid list selection: %q", choice)
	}
	fmt.Fprintf(w.out, "  Selected: %s\n", lists[idx-1].Title)
	return lists[idx-1].ID, nil
}

func (w *Wizard) prompt(label string) string {
	fmt.Fprint(w.out, label)
	line, err := w.in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return strings.TrimSpace(line)
}
