package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-workspace/internal/access"
	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/filter"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/utils"
	"kyri56xcaesar/pms-workspace/internal/validate"
	"kyri56xcaesar/pms-workspace/internal/workspace"
)

func newProjectsCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List and manage your projects",
	}
	cmd.AddCommand(
		newProjectsListCommand(a),
		newProjectsCreateCommand(a),
		newProjectsEditCommand(a),
		newProjectsDeleteCommand(a),
	)

	return cmd
}

func newProjectsListCommand(a *App) *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *apiclient.Client) error {
				projects, err := c.Projects.List(cmd.Context())
				if err != nil {
					return err
				}

				return printProjects(cmd.OutOrStdout(), filter.Projects(projects, query))
			})
		},
	}
	cmd.Flags().StringVarP(&query, "q", "q", "", "Only projects whose name or description contains this")

	return cmd
}

func newProjectsCreateCommand(a *App) *cobra.Command {
	var opts struct {
		Description string
		Avatar      string
	}

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withClient(ctx, func(c *apiclient.Client) error {
				existing, err := c.Projects.List(ctx)
				if err != nil {
					return err
				}
				if err := validate.ProjectName(args[0], existing, nil); err != nil {
					return err
				}

				p := models.Project{Name: args[0], Description: opts.Description, IsActive: true}
				if opts.Avatar != "" {
					p.AvatarURL = models.StringP(opts.Avatar)
				}
				created, err := c.Projects.Create(ctx, p)
				if err != nil {
					return err
				}
				if created.ID != nil {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (#%d)\n", created.Name, *created.ID)
				} else {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created project %s\n", args[0])
				}

				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Project description")
	cmd.Flags().StringVar(&opts.Avatar, "avatar", "", "Avatar path as returned by `pms upload`")

	return cmd
}

func newProjectsEditCommand(a *App) *cobra.Command {
	var opts struct {
		Name        string
		Description string
		Avatar      string
		Active      bool
	}

	cmd := &cobra.Command{
		Use:   "edit <project-id>",
		Short: "Rename or describe a project (manager or owner)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return a.withClient(ctx, func(c *apiclient.Client) error {
				me, err := c.Users.Me(ctx)
				if err != nil {
					return err
				}
				ws, err := workspace.Open(ctx, workspace.NewGateway(c), projectID, me)
				if err != nil {
					return err
				}
				snap := ws.Snapshot()
				if err := snap.Require(access.Manager, "edit project"); err != nil {
					return err
				}

				p := snap.Info.Project
				flags := cmd.Flags()
				if flags.Changed("name") {
					existing, err := c.Projects.List(ctx)
					if err != nil {
						return err
					}
					if err := validate.ProjectName(opts.Name, existing, models.Int64P(projectID)); err != nil {
						return err
					}
					p.Name = opts.Name
				}
				if flags.Changed("description") {
					p.Description = opts.Description
				}
				if flags.Changed("avatar") {
					p.AvatarURL = models.StringP(opts.Avatar)
				}
				if flags.Changed("active") {
					p.IsActive = opts.Active
				}

				if _, err := c.Projects.Edit(ctx, projectID, p); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated project #%d\n", projectID)

				return nil
			})
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "New name")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "New description")
	cmd.Flags().StringVar(&opts.Avatar, "avatar", "", "New avatar path")
	cmd.Flags().BoolVar(&opts.Active, "active", true, "Whether the project is active")

	return cmd
}

func newProjectsDeleteCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			return a.withClient(ctx, func(c *apiclient.Client) error {
				me, err := c.Users.Me(ctx)
				if err != nil {
					return err
				}
				ws, err := workspace.Open(ctx, workspace.NewGateway(c), projectID, me)
				if err != nil {
					return err
				}
				if err := ws.Snapshot().Require(access.Owner, "delete project"); err != nil {
					return err
				}
				if err := c.Projects.Delete(ctx, projectID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted project #%d\n", projectID)

				return nil
			})
		},
	}
}

func newProjectCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Look at one project",
	}
	cmd.AddCommand(
		newProjectShowCommand(a),
		newProjectWeekCommand(a),
		newProjectLeaveCommand(a),
	)

	return cmd
}

func newProjectShowCommand(a *App) *cobra.Command {
	var members bool

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show the board with the actions available to you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			return a.withWorkspace(cmd.Context(), projectID, func(ws *workspace.Workspace) error {
				snap := ws.Snapshot()
				if err := printBoard(cmd.OutOrStdout(), snap.Board()); err != nil {
					return err
				}
				if !members {
					return nil
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())

				return printMembers(cmd.OutOrStdout(), snap.Info.Project)
			})
		},
	}
	cmd.Flags().BoolVarP(&members, "members", "m", false, "Also list the members")

	return cmd
}

func newProjectWeekCommand(a *App) *cobra.Command {
	var opts struct {
		From string
		Mine bool
	}

	cmd := &cobra.Command{
		Use:   "week <project-id>",
		Short: "Lay the project's tasks out on a week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}
			week, err := parseWeek(opts.From)
			if err != nil {
				return err
			}

			return a.withWorkspace(cmd.Context(), projectID, func(ws *workspace.Workspace) error {
				snap := ws.Snapshot()
				tasks := snap.Tasks()
				if opts.Mine {
					tasks = utils.Filter(tasks, func(t models.Task) bool { return t.IsAssignedTo(snap.User.ID) })
				}

				return printWeek(cmd.OutOrStdout(), week, tasks)
			})
		},
	}
	cmd.Flags().StringVar(&opts.From, "from", "", "First day of the week (YYYY-MM-DD), today by default")
	cmd.Flags().BoolVar(&opts.Mine, "mine", false, "Only tasks assigned to you")

	return cmd
}

func newProjectLeaveCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "leave <project-id>",
		Short: "Leave a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			return a.withWorkspace(cmd.Context(), projectID, func(ws *workspace.Workspace) error {
				if err := ws.RemoveMember(cmd.Context(), ws.Snapshot().User.ID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Left project #%d\n", projectID)

				return nil
			})
		},
	}
}
