package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/authmw"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/validate"
)

// readPassword takes the first line of r when no --password was given.
func readPassword(cmd *cobra.Command, given string) (string, error) {
	if given != "" {
		return given, nil
	}
	_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) finishSignIn(cmd *cobra.Command, token string, err error) error {
	if err != nil {
		if authmw.IsInvalidCredentials(err) {
			return errors.New("invalid login or password")
		}
		return err
	}

	me, err := a.signIn(cmd.Context(), token)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", displayName(me))

	return nil
}

func newLoginCommand(a *App) *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session",
		Long: `Sign in with a login and password.

The password is read from stdin when --password is not given.

Examples:
  pms login --login anna
  echo "$PASS" | pms login -l anna`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, creds.Password)
			if err != nil {
				return err
			}
			creds.Password = pw
			if err := validate.Login(creds); err != nil {
				return err
			}

			token, err := a.provider().Login(cmd.Context(), creds)
			return a.finishSignIn(cmd, token, err)
		},
	}

	cmd.Flags().StringVarP(&creds.Login, "login", "l", "", "Login name")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password (read from stdin if empty)")

	return cmd
}

func newRegisterCommand(a *App) *cobra.Command {
	var creds models.Credentials

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, creds.Password)
			if err != nil {
				return err
			}
			creds.Password = pw
			if err := validate.Register(creds); err != nil {
				return err
			}

			token, err := a.provider().Register(cmd.Context(), creds)
			return a.finishSignIn(cmd, token, err)
		},
	}

	cmd.Flags().StringVarP(&creds.Login, "login", "l", "", "Login name")
	cmd.Flags().StringVarP(&creds.Email, "email", "e", "", "Email address")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "Password (read from stdin if empty)")

	return cmd
}

func newLogoutCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := sess.Clear(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Signed out")

			return nil
		},
	}
}

func newWhoamiCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *apiclient.Client) error {
				me, err := c.Users.Me(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintf(w, "ID:\t%d\n", me.ID)
				_, _ = fmt.Fprintf(w, "Login:\t%s\n", me.Login)
				_, _ = fmt.Fprintf(w, "Name:\t%s\n", displayName(me))
				_, _ = fmt.Fprintf(w, "Email:\t%s\n", me.Email)
				_, _ = fmt.Fprintf(w, "Role:\t%s\n", me.GlobalRole)
				if me.AvatarURL != nil {
					_, _ = fmt.Fprintf(w, "Avatar:\t%s\n", c.Storage.ResolveURL(*me.AvatarURL))
				}

				return w.Flush()
			})
		},
	}
}

func newMyTasksCommand(a *App) *cobra.Command {
	var opts struct {
		Week bool
		From string
	}

	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List tasks assigned to you",
		Long: `List the tasks assigned to you across all projects.

With --week the tasks are laid out on the seven days starting at --from
(today by default). Giving --from implies --week.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *apiclient.Client) error {
				tasks, err := c.Users.Tasks(cmd.Context())
				if err != nil {
					return err
				}
				if !opts.Week && opts.From == "" {
					return printTasks(cmd.OutOrStdout(), tasks)
				}

				wk, err := parseWeek(opts.From)
				if err != nil {
					return err
				}
				return printWeek(cmd.OutOrStdout(), wk, tasks)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.Week, "week", false, "Show a weekly calendar")
	cmd.Flags().StringVar(&opts.From, "from", "", "First day of the week (YYYY-MM-DD)")

	return cmd
}

func displayName(u models.User) string {
	if u.FullName != nil && *u.FullName != "" {
		return fmt.Sprintf("%s (%s)", u.Login, *u.FullName)
	}

	return u.Login
}
