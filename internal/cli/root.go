package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"pioneer-cli/internal/api"
	"pioneer-cli/internal/config"
	"pioneer-cli/internal/logging"
	"pioneer-cli/internal/mutate"
	"pioneer-cli/internal/notify"
	"pioneer-cli/internal/session"
	"pioneer-cli/internal/tui"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigFile string
	BaseURL    string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "pioneer",
		Short:        "Pioneer task manager CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  pioneer

  # Scriptable commands
  pioneer login --email ada@example.com
  pioneer tasks list --today --next5
  pioneer tasks create --title "Pay rent" --date 2026-09-30
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", envOr("PIONEER_CONFIG", ""), "Path to config file (default: ~/.config/pioneer/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "API base URL (overrides config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newSignupCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newAccountCmd(app))

	return cmd
}

// runtime is the wired object graph behind every command: config, logging,
// the session store, the API gateway and the mutation orchestrator.
type runtime struct {
	cfg      *config.Config
	log      *log.Logger
	closeLog func() error
	store    session.Store
	sess     *session.Session
	client   *api.Client
	notifier *notify.Notifier
	orch     *mutate.Orchestrator
}

func loadRuntime(app *App) (*runtime, error) {
	cfg, err := config.Load(app.ConfigFile)
	if err != nil {
		return nil, err
	}
	if app.BaseURL != "" {
		cfg.API.BaseURL = app.BaseURL
	}

	logger, closeLog, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	store := session.Store{Dir: cfg.State.Dir}
	sess, err := store.Load(context.Background())
	if err != nil {
		// Commands that need a credential fail later with a clear message.
		sess = &session.Session{}
	}

	client := api.NewClient(api.Config{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: &http.Client{Timeout: cfg.API.Timeout},
		Logger:     logger,
		Session:    sess,
	})
	notifier := notify.New()

	return &runtime{
		cfg:      cfg,
		log:      logger,
		closeLog: closeLog,
		store:    store,
		sess:     sess,
		client:   client,
		notifier: notifier,
		orch:     mutate.NewOrchestrator(client, notifier, logger),
	}, nil
}

func (rt *runtime) Close() {
	if rt.closeLog != nil {
		_ = rt.closeLog()
	}
}

func runTUI(app *App) error {
	rt, err := loadRuntime(app)
	if err != nil {
		return err
	}
	defer rt.Close()
	return tui.Run(tui.Deps{
		Client:       rt.client,
		Orchestrator: rt.orch,
		Notifier:     rt.notifier,
		SessionStore: rt.store,
		Session:      rt.sess,
		Logger:       rt.log,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	if app.PrettyJSON {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), mutate.UserMessage(err))
	return err
}
