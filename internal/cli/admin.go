package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kyri56xcaesar/pms-workspace/internal/apiclient"
	"kyri56xcaesar/pms-workspace/internal/filter"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/validate"
)

func newUsersCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Find users",
	}

	var opts struct {
		Query      string
		Skills     []int64
		NotProject int64
	}
	search := &cobra.Command{
		Use:   "search",
		Short: "Search users by text and skills",
		Long: `Search users by login, email or name, optionally requiring skills.

Examples:
  pms users search --q anna
  pms users search --skill 1 --skill 2
  pms users search --not-in 7      # candidates for project 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return a.withClient(ctx, func(c *apiclient.Client) error {
				users, err := c.Admin.Users(ctx)
				if err != nil {
					return err
				}
				if opts.NotProject > 0 {
					info, err := c.Project.Info(ctx, opts.NotProject)
					if err != nil {
						return err
					}
					users = filter.NonMembers(users, info.Project)
				}

				return printUsers(cmd.OutOrStdout(), filter.Users(users, opts.Query, opts.Skills))
			})
		},
	}
	search.Flags().StringVarP(&opts.Query, "q", "q", "", "Text to look for")
	search.Flags().Int64SliceVar(&opts.Skills, "skill", nil, "Required skill id (repeatable)")
	search.Flags().Int64Var(&opts.NotProject, "not-in", 0, "Leave out members of this project")
	cmd.AddCommand(search)

	return cmd
}

func newUploadCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload a file and print its storage path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			return a.withClient(ctx, func(c *apiclient.Client) error {
				path, err := c.Storage.Upload(ctx, uuid.NewString()+filepath.Ext(args[0]), f)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), c.Storage.ResolveURL(path))

				return nil
			})
		},
	}
}

func newAdminCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Site administration (admin role required)",
	}
	cmd.AddCommand(newAdminSkillsCommand(a), newAdminUsersCommand(a))

	return cmd
}

func newAdminSkillsCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "skills",
		Short: "Manage the skill catalogue",
	}

	var query string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List skills",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *apiclient.Client) error {
				skills, err := c.Admin.Skills(cmd.Context())
				if err != nil {
					return err
				}

				return printSkills(cmd.OutOrStdout(), filter.Skills(skills, query))
			})
		},
	}
	list.Flags().StringVarP(&query, "q", "q", "", "Only skills whose name contains this")

	var skillType string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withClient(ctx, func(c *apiclient.Client) error {
				existing, err := c.Admin.Skills(ctx)
				if err != nil {
					return err
				}
				skill := models.Skill{Name: args[0], Type: skillType}
				if err := validate.Skill(skill, existing); err != nil {
					return err
				}
				skills, err := c.Admin.AddSkill(ctx, skill)
				if err != nil {
					return err
				}

				return printSkills(cmd.OutOrStdout(), skills)
			})
		},
	}
	add.Flags().StringVar(&skillType, "type", "", "Skill type, e.g. lang")

	del := &cobra.Command{
		Use:   "delete <skill-id>",
		Short: "Delete a skill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			skillID, err := parseID(args[0], "skill id")
			if err != nil {
				return err
			}

			return a.withClient(cmd.Context(), func(c *apiclient.Client) error {
				if err := c.Admin.DeleteSkill(cmd.Context(), skillID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted skill #%d\n", skillID)

				return nil
			})
		},
	}

	cmd.AddCommand(list, add, del)

	return cmd
}

func newAdminUsersCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}

	var query string
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List users",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd.Context(), func(c *apiclient.Client) error {
				users, err := c.Admin.Users(cmd.Context())
				if err != nil {
					return err
				}

				return printUsers(cmd.OutOrStdout(), filter.Users(users, query, nil))
			})
		},
	}
	list.Flags().StringVarP(&query, "q", "q", "", "Text to look for")

	role := &cobra.Command{
		Use:   "role <user-id> <admin|user>",
		Short: "Set a user's global role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}
			if err := validate.GlobalRole(args[1]); err != nil {
				return err
			}

			return a.withClient(cmd.Context(), func(c *apiclient.Client) error {
				if err := c.Admin.SetRole(cmd.Context(), userID, args[1]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "User #%d is now %s\n", userID, args[1])

				return nil
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user id")
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return a.withClient(ctx, func(c *apiclient.Client) error {
				me, err := c.Users.Me(ctx)
				if err != nil {
					return err
				}
				if me.ID == userID {
					return errors.New("cannot delete your own account")
				}
				if err := c.Admin.DeleteUser(ctx, userID); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted user #%d\n", userID)

				return nil
			})
		},
	}

	cmd.AddCommand(list, role, del)

	return cmd
}
