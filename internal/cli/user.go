package cli

import (
	"log"

	"github.com/spf13/cobra"
	"quizo-service/internal/app"
	"quizo-service/internal/config"
)

// NewUserCmd groups account administration.
func NewUserCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var in app.RegisterInput
	var admin bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()

			accounts, _ := newAccountService(cfg, b.users)
			register := accounts.Register
			if admin {
				register = accounts.CreateAdmin
			}
			tok, err := register(cmd.Context(), in)
			if err != nil {
				return err
			}
			log.Printf("created %s account %s", tok.User.Role, tok.User.Email)
			return nil
		},
	}
	create.Flags().StringVar(&in.Username, "name", "", "display name")
	create.Flags().StringVar(&in.Email, "email", "", "login email")
	create.Flags().StringVar(&in.Password, "password", "", "password")
	create.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
