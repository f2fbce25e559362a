package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/docchat/internal/domain"
)

var (
	loginUserID string
	loginEmail  string
	loginToken  string
)

func init() {
	loginCmd.Flags().StringVar(&loginUserID, "user-id", "", "backend user id")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "access token for authenticated backends")
	_ = loginCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the user identity used for backend requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		user := &domain.User{
			UserID:      loginUserID,
			Email:       loginEmail,
			AccessToken: loginToken,
		}
		if err := app.cache.SaveUser(user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		fmt.Printf("Logged in as %s\n", user.UserID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored identity and clear the local cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.cache.Clear(); err != nil {
			return fmt.Errorf("clear cache: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	},
}
