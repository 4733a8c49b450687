package cli

import (
	"errors"
	"os"
	"time"

	"pioneer-cli/internal/api"

	"github.com/spf13/cobra"
)

func newAccountCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Profile commands",
	}

	cmd.AddCommand(newAccountShowCmd(app))
	cmd.AddCommand(newAccountUpdateCmd(app))

	return cmd
}

func newAccountShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current profile",
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

func newAccountUpdateCmd(app *App) *cobra.Command {
	var upd api.ProfileUpdate
	var imagePath string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update the current profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			// Unchanged flags keep their current server values.
			existing, err := rt.client.Me(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("first-name") {
				upd.FirstName = existing.FirstName
			}
			if !cmd.Flags().Changed("last-name") {
				upd.LastName = existing.LastName
			}
			if !cmd.Flags().Changed("email") {
				upd.Email = existing.Email
			}
			if !cmd.Flags().Changed("address") {
				upd.Address = existing.Address
			}
			if !cmd.Flags().Changed("contact") {
				upd.ContactNumber = existing.ContactNumber
			}
			if !cmd.Flags().Changed("birthday") && existing.Birthday != nil {
				upd.Birthday = *existing.Birthday
			}
			if upd.Birthday != "" {
				if _, err := time.Parse("2006-01-02", upd.Birthday); err != nil {
					return writeErr(cmd, errors.New("invalid --birthday (want YYYY-MM-DD)"))
				}
			}

			if imagePath != "" {
				f, err := os.Open(imagePath)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				upd.Image = &api.ImageAttachment{Filename: imagePath, Reader: f}
			}

			profile, err := rt.client.UpdateProfile(cmd.Context(), upd)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, profile)
		},
	}

	cmd.Flags().StringVar(&upd.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&upd.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&upd.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&upd.Address, "address", "", "Address")
	cmd.Flags().StringVar(&upd.ContactNumber, "contact", "", "Contact number")
	cmd.Flags().StringVar(&upd.Birthday, "birthday", "", "Birthday (YYYY-MM-DD)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a profile image")
	return cmd
}
