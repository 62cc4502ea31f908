package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"maiyer/internal/setup"
	"maiyer/pkg/krogerclient"
	"maiyer/pkg/logger"
	"maiyer/pkg/tasksclient"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Run the interactive setup wizard",
		Long: `Walks through connecting your Kroger developer credentials, authorizing
your account, picking a store and optionally linking a Google Tasks
shopping list. Writes the result to ` + envFile + ` in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			zlogger := logger.NewZeroLog("development")
			httpClient := &http.Client{Timeout: 30 * time.Second}

			wizard := setup.NewWizard(setup.Deps{
				HTTPClient:     httpClient,
				KrogerProvider: krogerProvider(),
				GoogleProvider: googleProvider(),
				KrogerAPI:      krogerclient.New(httpClient, krogerBaseURL(), zlogger),
				TasksAPI:       tasksclient.New(httpClient, tasksBaseURL(), zlogger),
				EnvPath:        envFile,
				In:             os.Stdin,
				Out:            os.Stdout,
				Logger:         zlogger,
			})
			return wizard.Run(cmd.Context())
		},
	}
}
