package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"kyri56xcaesar/pms-workspace/internal/filter"
	"kyri56xcaesar/pms-workspace/internal/models"
	"kyri56xcaesar/pms-workspace/internal/workspace"
)

const dateLayout = "2006-01-02"

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func assignee(t models.Task) string {
	if t.AssignedTo == nil {
		return "-"
	}

	return fmt.Sprintf("#%d", *t.AssignedTo)
}

func printTasks(out io.Writer, tasks []models.Task) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tSTATE\tTITLE\tSTART\tEND\tASSIGNEE")
	for _, t := range tasks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			orDash(t.ID()), t.State(), t.Title, orDash(t.StartDate), orDash(t.EndDate), assignee(t))
	}

	return w.Flush()
}

// cardActions lists what the viewer may do with a card, e.g. "edit,assign".
func cardActions(c workspace.TaskCard) string {
	var acts []string
	for _, a := range []struct {
		ok   bool
		name string
	}{
		{c.CanResolve, "resolve"},
		{c.CanEdit, "edit"},
		{c.CanDelete, "delete"},
		{c.CanAssign, "assign"},
		{c.CanUnassign, "unassign"},
	} {
		if a.ok {
			acts = append(acts, a.name)
		}
	}

	return orDash(strings.Join(acts, ","))
}

func printBoard(out io.Writer, b workspace.Board) error {
	_, _ = fmt.Fprintf(out, "%s (#%d), you are %s\n", b.Name, b.ProjectID, b.RoleLabel)
	_, _ = fmt.Fprintf(out, "tasks: %d, done: %d, delayed: %d, problems: %d\n",
		b.Statistics.TaskCount, b.Statistics.CompletedTasksCount,
		b.Statistics.DelayedTasksCount, b.Statistics.ProblemTasksCount)

	var acts []string
	if b.CanAddBranch {
		acts = append(acts, "add-branch")
	}
	if b.CanAddTask {
		acts = append(acts, "add-task")
	}
	if b.CanManageUsers {
		acts = append(acts, "manage-members")
	}
	if b.CanLeave {
		acts = append(acts, "leave")
	}
	_, _ = fmt.Fprintf(out, "actions: %s\n", orDash(strings.Join(acts, ", ")))

	for _, tab := range b.Tabs {
		_, _ = fmt.Fprintf(out, "\n== %s [%s] ==\n", tab.Name, tab.ID)
		if len(tab.Cards) == 0 {
			_, _ = fmt.Fprintln(out, "(no tasks)")
			continue
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tSTATE\tTITLE\tDATES\tASSIGNEE\tACTIONS")
		for _, c := range tab.Cards {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s..%s\t%s\t%s\n",
				c.Task.ID(), c.State, c.Task.Title, c.Task.StartDate, c.Task.EndDate,
				assignee(c.Task), cardActions(c))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	return nil
}

func printMembers(out io.Writer, p models.Project) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "USER\tROLE")
	for _, m := range p.Members {
		_, _ = fmt.Fprintf(w, "#%d\t%s\n", m.UserID, m.Role)
	}

	return w.Flush()
}

// parseWeek reads a YYYY-MM-DD anchor, today when empty.
func parseWeek(from string) (filter.Week, error) {
	if from == "" {
		return filter.NewWeek(time.Now()), nil
	}
	t, err := time.ParseInLocation(dateLayout, from, time.Local)
	if err != nil {
		return filter.Week{}, fmt.Errorf("--from must be YYYY-MM-DD: %w", err)
	}

	return filter.NewWeek(t), nil
}

func printWeek(out io.Writer, week filter.Week, tasks []models.Task) error {
	slots := week.Place(tasks)
	for i, day := range week.Days {
		_, _ = fmt.Fprintf(out, "%s %s\n", day.Format("Mon"), day.Format(dateLayout))
		for _, p := range slots[i] {
			_, _ = fmt.Fprintf(out, "  %s %s [%s] %dd\n", p.Task.ID(), p.Task.Title, p.Task.State(), p.Span)
		}
	}

	return nil
}

func printProjects(out io.Writer, projects []models.Project) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tACTIVE\tMEMBERS\tDESCRIPTION")
	for _, p := range projects {
		id := "-"
		if p.ID != nil {
			id = fmt.Sprint(*p.ID)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n", id, p.Name, p.IsActive, len(p.Members), p.Description)
	}

	return w.Flush()
}

func printUsers(out io.Writer, users []models.User) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tLOGIN\tNAME\tEMAIL\tROLE")
	for _, u := range users {
		name := ""
		if u.FullName != nil {
			name = *u.FullName
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Login, orDash(name), u.Email, u.GlobalRole)
	}

	return w.Flush()
}

func printSkills(out io.Writer, skills []models.Skill) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTYPE\tUSERS")
	for _, s := range skills {
		id, users := "-", "-"
		if s.ID != nil {
			id = fmt.Sprint(*s.ID)
		}
		if s.UserCount != nil {
			users = fmt.Sprint(*s.UserCount)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, s.Name, s.Type, users)
	}

	return w.Flush()
}
