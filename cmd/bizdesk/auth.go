package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/bizdesk/internal/adapter/output"
	"github.com/jmylchreest/bizdesk/internal/auth"
	"github.com/jmylchreest/bizdesk/internal/toast"
)

var authOpts struct {
	email         string
	password      string
	passwordStdin bool
	name          string
}

var signupCmd = &cobra.Command{
	Use:     "signup",
	Short:   "Create an account and sign in",
	Example: `  bizdesk signup --email me@example.com --name "Sam Doe" --password-stdin < pass.txt`,
	RunE:    runSignup,
}

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in to an existing account",
	RunE:  runSignin,
}

var signoutCmd = &cobra.Command{
	Use:   "signout",
	Short: "Sign out and forget the remembered session",
	RunE:  runSignout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(signupCmd, signinCmd, signoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{signupCmd, signinCmd} {
		c.Flags().StringVar(&authOpts.email, "email", "", "Account email")
		c.Flags().StringVar(&authOpts.password, "password", "", "Account password")
		c.Flags().BoolVar(&authOpts.passwordStdin, "password-stdin", false,
			"Read the password from the first line of stdin")
		_ = c.MarkFlagRequired("email")
	}
	signupCmd.Flags().StringVar(&authOpts.name, "name", "", "Display name (default: email local part)")
}

func runSignup(cmd *cobra.Command, args []string) error {
	password, err := readPassword(os.Stdin)
	if err != nil {
		return err
	}

	user, err := authService.SignUp(cmd.Context(), authOpts.email, password, authOpts.name)
	if err != nil {
		return toast.Fail(cmd.Context(), err, auth.Message(err))
	}

	toast.Success(cmd.Context(), fmt.Sprintf("Welcome, %s! Your account is ready.", user.DisplayName))
	return nil
}

func runSignin(cmd *cobra.Command, args []string) error {
	password, err := readPassword(os.Stdin)
	if err != nil {
		return err
	}

	user, err := authService.SignIn(cmd.Context(), authOpts.email, password)
	if err != nil {
		return toast.Fail(cmd.Context(), err, auth.Message(err))
	}

	toast.Success(cmd.Context(), fmt.Sprintf("Signed in as %s.", user.Email))
	return nil
}

func runSignout(cmd *cobra.Command, args []string) error {
	if err := authService.SignOut(cmd.Context()); err != nil {
		return toast.Fail(cmd.Context(), err, auth.Message(err))
	}
	toast.Info(cmd.Context(), "Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	user, err := authService.RequireUser()
	if err != nil {
		return toast.Fail(cmd.Context(), err, auth.Message(err))
	}

	format := globalOpts.format
	if format == "" {
		format = cfg.Output.Format
	}

	w := cmd.OutOrStdout()
	switch output.FormatType(format) {
	case output.FormatJSON:
		return output.NewJSONFormatter().FormatSingle(w, user)
	case output.FormatYAML:
		return yaml.NewEncoder(w).Encode(user)
	case output.FormatIDs:
		_, err = fmt.Fprintln(w, user.ID)
		return err
	default:
		_, err = fmt.Fprintf(w, "%s <%s>\n", user.DisplayName, user.Email)
		return err
	}
}

// readPassword returns --password, or the first line of r with --password-stdin.
func readPassword(r io.Reader) (string, error) {
	if !authOpts.passwordStdin {
		if authOpts.password == "" {
			return "", fmt.Errorf("either --password or --password-stdin is required")
		}
		return authOpts.password, nil
	}

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
