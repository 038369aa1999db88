package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/99minutos/storefront/internal/core/domain"
)

var (
	loginEmail    string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session",
	Long: `Logs in with email and password. The password may also be given in
STOREFRONT_PASSWORD so it stays out of the shell history.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "account email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "account password")
	_ = loginCmd.MarkFlagRequired("email")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	password := loginPassword
	if password == "" {
		password = os.Getenv("STOREFRONT_PASSWORD")
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.auth().Login(cmd.Context(), loginEmail, password)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(cmd.OutOrStdout(), publicSession(sess))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (id %s)\n", sess.Name, sess.UserID)
	return nil
}

func runLogout(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.auth().Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
	return nil
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.store.Load(cmd.Context())
	if errors.Is(err, domain.ErrNoSession) {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
		return nil
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(cmd.OutOrStdout(), publicSession(sess))
	}
	w := newTable(cmd.OutOrStdout())
	fmt.Fprintf(w, "ID\t%s\n", sess.UserID)
	fmt.Fprintf(w, "Name\t%s\n", sess.Name)
	fmt.Fprintf(w, "Email\t%s\n", sess.Email)
	fmt.Fprintf(w, "Role\t%s\n", sess.Role)
	fmt.Fprintf(w, "Avatar\t%s\n", sess.Avatar)
	return w.Flush()
}

// publicSession drops the token from printed output.
func publicSession(s *domain.Session) domain.Session {
	out := *s
	out.Token = ""
	return out
}
