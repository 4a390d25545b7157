package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewTodoCommands создаёт команды управления todo.
func NewTodoCommands(clientFn func() *Client, outputFn func() *Output) []*cobra.Command {
	return []*cobra.Command{
		newListCmd(clientFn, outputFn),
		newShowCmd(clientFn, outputFn),
		newAddCmd(clientFn, outputFn),
		newUpdateCmd(clientFn, outputFn),
		newDoneCmd(clientFn, outputFn),
		newDeleteCmd(clientFn, outputFn),
		newClearCmd(clientFn, outputFn),
	}
}

func newListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			todos, err := clientFn().ListTodos()
			if err != nil {
				return err
			}
			outputFn().PrintTodos(todos)
			return nil
		},
	}
}

func newShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			todo, err := clientFn().GetTodo(id)
			if err != nil {
				return err
			}
			outputFn().PrintTodo(todo)
			return nil
		},
	}
}

func newAddCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var order int
	var completed bool

	cmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Create a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			todo, err := clientFn().CreateTodo(CreateTodoRequest{
				Title:     args[0],
				Completed: completed,
				Order:     order,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Todo created: %d", todo.ID))
			out.PrintTodo(todo)
			return nil
		},
	}

	cmd.Flags().IntVar(&order, "order", 0, "Sort position")
	cmd.Flags().BoolVar(&completed, "completed", false, "Create already completed")

	return cmd
}

func newUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var title string
	var completed string
	var order int

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var req UpdateTodoRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("completed") {
				v, err := strconv.ParseBool(completed)
				if err != nil {
					return fmt.Errorf("invalid --completed value %q: %w", completed, err)
				}
				req.Completed = &v
			}
			if cmd.Flags().Changed("order") {
				req.Order = &order
			}
			if req.Title == nil && req.Completed == nil && req.Order == nil {
				return fmt.Errorf("nothing to update: use --title, --completed or --order")
			}

			out := outputFn()
			todo, err := clientFn().UpdateTodo(id, req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Todo updated: %d", todo.ID))
			out.PrintTodo(todo)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&completed, "completed", "", "Completion flag (true/false)")
	cmd.Flags().IntVar(&order, "order", 0, "New sort position")

	return cmd
}

func newDoneCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a todo as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			done := true
			out := outputFn()
			todo, err := clientFn().UpdateTodo(id, UpdateTodoRequest{Completed: &done})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Todo completed: %d", todo.ID))
			out.PrintTodo(todo)
			return nil
		},
	}
}

func newDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			todo, err := clientFn().DeleteTodo(id)
			if err != nil {
				return err
			}

			outputFn().Success(fmt.Sprintf("Todo deleted: %d", todo.ID))
			return nil
		},
	}
}

func newClearCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all todos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := clientFn().ClearTodos()
			if err != nil {
				return err
			}

			out := outputFn()
			out.Success(fmt.Sprintf("Todos deleted: %d", n))
			return nil
		},
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid todo id %q", s)
	}
	return id, nil
}
