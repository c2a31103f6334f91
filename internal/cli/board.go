package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-workspace/internal/access"
	"kyri56xcaesar/pms-workspace/internal/workspace"
)

// boardAction opens the project named by the first argument, runs fn and
// prints the refetched board.
func (a *App) boardAction(cmd *cobra.Command, args []string, fn func(ws *workspace.Workspace) error) error {
	projectID, err := parseID(args[0], "project id")
	if err != nil {
		return err
	}

	return a.withWorkspace(cmd.Context(), projectID, func(ws *workspace.Workspace) error {
		if err := fn(ws); err != nil {
			return err
		}

		return printBoard(cmd.OutOrStdout(), ws.Snapshot().Board())
	})
}

func newBranchCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "branch",
		Short: "Add or delete branches",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <project-id> <name>",
		Short: "Add a branch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
				return ws.AddBranch(cmd.Context(), args[1])
			})
		},
	}, &cobra.Command{
		Use:   "delete <project-id> <branch-id>",
		Short: "Delete a branch and its tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
				return ws.DeleteBranch(cmd.Context(), args[1])
			})
		},
	})

	return cmd
}

// taskEditFlags binds the editable task fields; only flags given on the
// command line end up in the edit.
type taskEditFlags struct {
	title, description, start, end, file string
	skill                                int64
}

func (f *taskEditFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "Title")
	cmd.Flags().StringVarP(&f.description, "description", "d", "", "Description")
	cmd.Flags().StringVar(&f.start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.file, "file", "", "Attachment path as returned by `pms upload`")
	cmd.Flags().Int64Var(&f.skill, "skill", 0, "Required skill id")
}

func (f *taskEditFlags) edit(cmd *cobra.Command) workspace.TaskEdit {
	var e workspace.TaskEdit
	flags := cmd.Flags()
	if flags.Changed("title") {
		e.Title = &f.title
	}
	if flags.Changed("description") {
		e.Description = &f.description
	}
	if flags.Changed("start") {
		e.StartDate = &f.start
	}
	if flags.Changed("end") {
		e.EndDate = &f.end
	}
	if flags.Changed("file") {
		e.File = &f.file
	}
	if flags.Changed("skill") {
		e.SkillID = &f.skill
	}

	return e
}

func newTaskCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with tasks on a board",
		Long: `Work with tasks on a board.

Every subcommand takes the project id and branch id first and prints the
board as it is after the change.`,
	}

	var addFlags taskEditFlags
	add := &cobra.Command{
		Use:   "add <project-id> <branch-id>",
		Short: "Add a task (defaults: \"New task\", today..today)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
				return ws.AddTask(cmd.Context(), args[1], addFlags.edit(cmd))
			})
		},
	}
	addFlags.bind(add)

	var editFlags taskEditFlags
	edit := &cobra.Command{
		Use:   "edit <project-id> <branch-id> <task-id>",
		Short: "Edit a task's fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
				return ws.Edit(cmd.Context(), args[1], args[2], editFlags.edit(cmd))
			})
		},
	}
	editFlags.bind(edit)

	var message string
	problem := &cobra.Command{
		Use:   "problem <project-id> <branch-id> <task-id>",
		Short: "Report a problem with a task",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
				return ws.MarkProblem(cmd.Context(), args[1], args[2], message)
			})
		},
	}
	problem.Flags().StringVarP(&message, "message", "m", "", "What went wrong")

	cmd.AddCommand(add, edit, problem,
		&cobra.Command{
			Use:   "delete <project-id> <branch-id> <task-id>",
			Short: "Delete a task",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
					return ws.DeleteTask(cmd.Context(), args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "done <project-id> <branch-id> <task-id>",
			Short: "Mark a task done",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
					return ws.MarkDone(cmd.Context(), args[1], args[2])
				})
			},
		},
		&cobra.Command{
			Use:   "assign <project-id> <branch-id> <task-id> <user-id>",
			Short: "Assign a task to a user",
			Args:  cobra.ExactArgs(4),
			RunE: func(cmd *cobra.Command, args []string) error {
				userID, err := parseID(args[3], "user id")
				if err != nil {
					return err
				}
				return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
					return ws.Assign(cmd.Context(), args[1], args[2], userID)
				})
			},
		},
		&cobra.Command{
			Use:   "unassign <project-id> <branch-id> <task-id>",
			Short: "Clear a task's assignee",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.boardAction(cmd, args, func(ws *workspace.Workspace) error {
					return ws.Unassign(cmd.Context(), args[1], args[2])
				})
			},
		},
	)

	return cmd
}

func newMembersCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage project members",
	}

	var roleName string
	add := &cobra.Command{
		Use:   "add <project-id> <user-id>...",
		Short: "Add users to a project; existing members are skipped",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userIDs, err := parseIDs(args[1:], "user id")
			if err != nil {
				return err
			}
			role, err := access.ParseRole(roleName)
			if err != nil {
				return err
			}
			projectID, err := parseID(args[0], "project id")
			if err != nil {
				return err
			}

			return a.withWorkspace(cmd.Context(), projectID, func(ws *workspace.Workspace) error {
				added, err := ws.AddMembers(cmd.Context(), userIDs, role)
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added %d of %d user(s)\n", added, len(userIDs))
				if err != nil {
					return err
				}

				return printMembers(cmd.OutOrStdout(), ws.Snapshot().Info.Project)
			})
		},
	}
	add.Flags().StringVarP(&roleName, "role", "r", "MEMBER", "Role for the new members (MEMBER, MANAGER, OWNER)")

	cmd.AddCommand(add,
		&cobra.Command{
			Use:   "remove <project-id> <user-id>",
			Short: "Remove a member",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				userID, err := parseID(args[1], "user id")
				if err != nil {
					return err
				}
				projectID, err := parseID(args[0], "project id")
				if err != nil {
					return err
				}

				return a.withWorkspace(cmd.Context(), projectID, func(ws *workspace.Workspace) error {
					if err := ws.RemoveMember(cmd.Context(), userID); err != nil {
						return err
					}

					return printMembers(cmd.OutOrStdout(), ws.Snapshot().Info.Project)
				})
			},
		},
		&cobra.Command{
			Use:   "role <project-id> <user-id> <role>",
			Short: "Change a member's role",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				userID, err := parseID(args[1], "user id")
				if err != nil {
					return err
				}
				role, err := access.ParseRole(args[2])
				if err != nil {
					return err
				}
				projectID, err := parseID(args[0], "project id")
				if err != nil {
					return err
				}

				return a.withWorkspace(cmd.Context(), projectID, func(ws *workspace.Workspace) error {
					if err := ws.ChangeMemberRole(cmd.Context(), userID, role); err != nil {
						return err
					}

					return printMembers(cmd.OutOrStdout(), ws.Snapshot().Info.Project)
				})
			},
		},
	)

	return cmd
}
