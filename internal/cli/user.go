package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bcnelson/yatube/internal/service"
	"github.com/bcnelson/yatube/internal/validation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUserCreateCommand(a))
	return cmd
}

func newUserCreateCommand(a *app) *cobra.Command {
	var email, name string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "create <username>",
		Short: "Create a user account",
		Long: `Create a user account with a password.

The password is prompted for without echo, or read from the first line
of standard input with --password-stdin.

Examples:
  yatubectl user create alice --email alice@example.com --name "Alice Liddell"
  echo "$PASSWORD" | yatubectl user create bob --password-stdin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			var err error
			if passwordStdin {
				password, err = readPasswordLine(cmd.InOrStdin())
			} else {
				password, err = promptPassword(cmd.ErrOrStderr())
			}
			if err != nil {
				return err
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			user, verrs, err := service.NewAccountService(store).Signup(cmd.Context(), validation.SignupForm{
				Username:  args[0],
				FullName:  name,
				Email:     email,
				Password:  password,
				Password2: password,
			})
			if err != nil {
				return err
			}
			if verrs.HasErrors() {
				p := printer{w: cmd.ErrOrStderr()}
				for _, e := range verrs {
					p.Error("%s: %s", e.Field, e.Message)
				}
				return fmt.Errorf("user %s not created", args[0])
			}

			out(cmd).Success("Created user %s", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

// readPasswordLine reads the first line of r, without its line ending.
func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptPassword asks for the password twice on the terminal.
func promptPassword(w io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("standard input is not a terminal; use --password-stdin")
	}

	fmt.Fprint(w, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Fprint(w, "Password (again): ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if string(first) != string(second) {
		return "", fmt.Errorf("passwords do not match")
	}
	return string(first), nil
}
