package cli

import (
	"fmt"

	"quiztour/internal/api"
	"quiztour/internal/domain"
	"quiztour/internal/session"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			identity, err := e.api.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if err := e.store.Save(session.FromIdentity(identity)); err != nil {
				return err
			}
			fmt.Printf("logged in as %s (%s)\n", identity.Username, identity.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the persisted session",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			// Unconditional: logout succeeds even without a session.
			if err := e.store.Clear(); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var username, email, password, role string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := domain.Role(role)
			if r != domain.RolePlayer && r != domain.RoleAdmin {
				return &domain.ValidationError{Field: "role", Reason: "must be PLAYER or ADMIN"}
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			req := api.RegisterRequest{Username: username, Email: email, Password: password, Role: r}
			if err := e.api.Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Println("registered; log in with 'quiztour login'")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVar(&role, "role", string(domain.RolePlayer), "account role (PLAYER or ADMIN)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newResetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Request or confirm a password reset",
	}

	request := &cobra.Command{
		Use:   "request <email>",
		Short: "Mail a reset token to the given address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.api.RequestPasswordReset(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("reset token requested, check your mail")
			return nil
		},
	}

	confirm := &cobra.Command{
		Use:   "confirm <token> <new-password>",
		Short: "Redeem a reset token for a new password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := newEnv()
			if err != nil {
				return err
			}
			if err := e.api.ConfirmPasswordReset(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Println("password updated, log in with the new password")
			return nil
		},
	}

	cmd.AddCommand(request, confirm)
	return cmd
}
