package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var loginEmail string

// loginCmd exchanges credentials for a session token and stores it in
// the system keyring.
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(loginEmail)
		var password string

		fields := []huh.Field{}
		if email == "" {
			fields = append(fields, huh.NewInput().
				Title("Email").
				Value(&loginEmail))
		}
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password))

		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return err
		}
		email = strings.TrimSpace(loginEmail)

		client := newAPIClient()
		sessions := newSessionManager(client)

		ctx, cancel := commandContext()
		defer cancel()

		sess, err := sessions.Login(ctx, email, password)
		if err != nil {
			return err
		}

		fmt.Printf("Logged in as %s (%s)\n", sess.User.Email, sess.User.Role)
		return nil
	},
}

// logoutCmd tears down the session locally and, best-effort, remotely.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()
		sessions := newSessionManager(client)

		ctx, cancel := commandContext()
		defer cancel()

		sessions.Logout(ctx)
		fmt.Println("Logged out.")
		return nil
	},
}

// whoamiCmd shows the account behind the stored session.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newAPIClient()

		ctx, cancel := commandContext()
		defer cancel()

		sess, err := requireSession(ctx, client)
		if err != nil {
			return err
		}

		u := sess.User
		fmt.Printf("%s <%s>\n", u.Name, u.Email)
		fmt.Printf("Role:       %s\n", u.Role)
		fmt.Printf("Department: %s\n", u.Department)
		if !sess.Expiry.IsZero() {
			fmt.Printf("Session expires: %s\n", sess.Expiry.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "login email address")
}
