package cli

import (
	"errors"
	"strings"
	"time"

	"pioneer-cli/internal/model"
	"pioneer-cli/internal/session"

	"github.com/spf13/cobra"
)

func newSignupCmd(app *App) *cobra.Command {
	var firstName, lastName, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			req := model.SignupRequest{
				FirstName: strings.TrimSpace(firstName),
				LastName:  strings.TrimSpace(lastName),
				Email:     strings.TrimSpace(email),
				Password:  password,
			}
			if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" {
				return writeErr(cmd, errors.New("missing --first-name, --last-name, --email or --password"))
			}

			profile, err := rt.client.Signup(cmd.Context(), req)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, profile)
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", envOr("PIONEER_PASSWORD", ""), "Password (or set PIONEER_PASSWORD)")
	return cmd
}

func newLoginCmd(app *App) *cobra.Command {
	var email, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			email = strings.TrimSpace(email)
			if email == "" {
				return writeErr(cmd, errors.New("missing --email"))
			}
			if password == "" {
				// A remembered login fills the gap, like the web form did.
				if pw, ok, _ := rt.store.RememberedLogin(cmd.Context(), email); ok {
					password = pw
				} else {
					return writeErr(cmd, errors.New("missing --password (or set PIONEER_PASSWORD)"))
				}
			}

			resp, err := rt.client.Login(cmd.Context(), model.LoginRequest{Email: email, Password: password})
			if err != nil {
				return writeErr(cmd, err)
			}

			sess := &session.Session{Access: resp.Access, Email: email, SavedAt: time.Now().UTC()}
			if err := rt.store.Save(cmd.Context(), sess); err != nil {
				return writeErr(cmd, err)
			}
			if remember {
				_ = rt.store.RememberLogin(cmd.Context(), email, password)
			} else {
				_ = rt.store.ForgetLogin(cmd.Context(), email)
			}

			cmd.Printf("Logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", envOr("PIONEER_PASSWORD", ""), "Password (or set PIONEER_PASSWORD)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Remember this login for next time")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			if err := rt.store.Clear(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			cmd.Println("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			profile, err := rt.client.Me(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, profile)
		},
	}
}
