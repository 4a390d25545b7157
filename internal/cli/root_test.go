package cli

import "github.com/spf13/cobra"

// newRoot собирает корневую команду так же, как cmd/todos.
func newRoot(c *Client, out *Output) *cobra.Command {
	root := &cobra.Command{
		Use:           "todos",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(NewTodoCommands(
		func() *Client { return c },
		func() *Output { return out },
	)...)
	return root
}
