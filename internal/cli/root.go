// Package cli provides the pms command-line client.
package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupAccount = "account"
	groupProject = "project"
	groupAdmin   = "admin"
)

// NewRootCommand creates the root command with every subcommand bound to a.
func NewRootCommand(a *App, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "pms",
		Short: "Project workspace client",
		Long: `pms works with projects on the project-management backend:
boards, branches, tasks, members and the admin catalogue.

Sign in once with "pms login"; the token is kept in the session store
until it expires or you run "pms logout".`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (main does)
		SilenceErrors: true,
	}

	root.AddGroup(
		&cobra.Group{ID: groupAccount, Title: "Account:"},
		&cobra.Group{ID: groupProject, Title: "Projects:"},
		&cobra.Group{ID: groupAdmin, Title: "Administration:"},
	)

	for _, cmd := range []*cobra.Command{
		newLoginCommand(a),
		newRegisterCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newMyTasksCommand(a),
	} {
		cmd.GroupID = groupAccount
		root.AddCommand(cmd)
	}

	for _, cmd := range []*cobra.Command{
		newProjectsCommand(a),
		newProjectCommand(a),
		newBranchCommand(a),
		newTaskCommand(a),
		newMembersCommand(a),
		newUsersCommand(a),
		newUploadCommand(a),
	} {
		cmd.GroupID = groupProject
		root.AddCommand(cmd)
	}

	adminCmd := newAdminCommand(a)
	adminCmd.GroupID = groupAdmin
	root.AddCommand(adminCmd)

	return root
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", what, s)
	}

	return id, nil
}

func parseIDs(args []string, what string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg, what)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}
