package cli

import (
	"bufio"
	"errors"
	"strings"
	"time"

	"pioneer-cli/internal/model"
	"pioneer-cli/internal/taskview"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var search string
	var buckets taskview.Buckets

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, optionally filtered by title or due window",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			tasks, err := rt.client.ListTodos(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, taskview.Filter(tasks, search, buckets, time.Now()))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by title (case-insensitive substring)")
	cmd.Flags().BoolVar(&buckets.Today, "today", false, "Only tasks due today")
	cmd.Flags().BoolVar(&buckets.Next5Days, "next5", false, "Only tasks due within 5 days")
	cmd.Flags().BoolVar(&buckets.Next10Days, "next10", false, "Only tasks due within 10 days")
	cmd.Flags().BoolVar(&buckets.Next30Days, "next30", false, "Only tasks due within 30 days")
	return cmd
}

func taskFieldFlags(cmd *cobra.Command, fields *model.TaskFields) {
	cmd.Flags().StringVar(&fields.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&fields.Description, "description", "", "Task description (markdown)")
	cmd.Flags().StringVar((*string)(&fields.Priority), "priority", string(model.PriorityModerate), "Priority (extreme|moderate|low)")
	cmd.Flags().StringVar(&fields.TodoDate, "date", "", "Due date (YYYY-MM-DD)")
}

func validateTaskFields(fields model.TaskFields) error {
	if fields.Title == "" {
		return errors.New("missing --title")
	}
	if !model.ValidPriority(fields.Priority) {
		return errors.New("invalid --priority (want extreme, moderate or low)")
	}
	if fields.TodoDate != "" {
		if _, err := time.Parse("2006-01-02", fields.TodoDate); err != nil {
			return errors.New("invalid --date (want YYYY-MM-DD)")
		}
	}
	return nil
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var fields model.TaskFields

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			if err := validateTaskFields(fields); err != nil {
				return writeErr(cmd, err)
			}
			res, err := rt.orch.Create(cmd.Context(), fields)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, res.Task)
		},
	}

	taskFieldFlags(cmd, &fields)
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var fields model.TaskFields

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			// Unchanged flags keep their current server values.
			existing, ok, err := findTask(cmd, rt, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !ok {
				return writeErr(cmd, errors.New("task not found: "+args[0]))
			}
			if !cmd.Flags().Changed("title") {
				fields.Title = existing.Title
			}
			if !cmd.Flags().Changed("description") {
				fields.Description = existing.Description
			}
			if !cmd.Flags().Changed("priority") {
				fields.Priority = existing.Priority
			}
			if !cmd.Flags().Changed("date") {
				fields.TodoDate = existing.TodoDate
			}

			if err := validateTaskFields(fields); err != nil {
				return writeErr(cmd, err)
			}
			res, err := rt.orch.Update(cmd.Context(), args[0], fields)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, res.Task)
		},
	}

	taskFieldFlags(cmd, &fields)
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer rt.Close()

			if !yes && !confirmDeletion(cmd, args[0]) {
				return writeErr(cmd, errors.New("deletion not confirmed (answer y, or pass --yes)"))
			}
			if _, err := rt.orch.Delete(cmd.Context(), args[0], true); err != nil {
				return writeErr(cmd, err)
			}
			cmd.Printf("Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	return cmd
}

// confirmDeletion asks on stdin; anything but an explicit yes declines.
func confirmDeletion(cmd *cobra.Command, id string) bool {
	cmd.Printf("Delete task %s? [y/N]: ", id)
	sc := bufio.NewScanner(cmd.InOrStdin())
	if !sc.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes"
}

func findTask(cmd *cobra.Command, rt *runtime, id string) (model.Task, bool, error) {
	tasks, err := rt.client.ListTodos(cmd.Context())
	if err != nil {
		return model.Task{}, false, err
	}
	for _, t := range tasks {
		if t.ID == id {
			return t, true, nil
		}
	}
	return model.Task{}, false, nil
}
