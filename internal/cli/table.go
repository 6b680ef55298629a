package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koustreak/relstore/internal/database"
)

// TableOptions holds flags for the table subcommands.
type TableOptions struct {
	*RootOptions
	Columns string
}

type tableOutput struct {
	Table  string          `json:"table"`
	Action database.Action `json:"action"`
	OK     bool            `json:"ok"`
}

// NewTableCommand creates the table command and its subcommands.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Create, drop, back up or inspect a table",
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a table if it does not exist",
		Example: `  relstore table create contacts \
    --columns "id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, phone TEXT"`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTableAction(cmd, opts, args[0], database.ActionCreate)
		},
	}
	create.Flags().StringVarP(&opts.Columns, "columns", "c", "", "column definition clause")

	cmd.AddCommand(
		create,
		&cobra.Command{
			Use:   "drop <name>",
			Short: "Drop a table if it exists",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTableAction(cmd, opts, args[0], database.ActionDrop)
			},
		},
		&cobra.Command{
			Use:   "backup <name>",
			Short: "Copy a table into a timestamped snapshot table",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTableAction(cmd, opts, args[0], database.ActionBackup)
			},
		},
		&cobra.Command{
			Use:   "exists <name>",
			Short: "Report whether a table exists (exit 1 when it does not)",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTableExists(cmd, opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "describe <name>",
			Short: "List a table's columns",
			Args:  exactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTableDescribe(cmd, opts, args[0])
			},
		},
	)

	return cmd
}

func runTableAction(cmd *cobra.Command, opts *TableOptions, table string, action database.Action) error {
	c, err := opts.open(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	res := c.ManageTable(cmd.Context(), table, opts.Columns, string(action))
	out := tableOutput{Table: res.Table, Action: res.Action, OK: res.OK}
	f := opts.output(cmd)

	if !res.OK {
		if err := f.Fail(out, res.Err); err != nil {
			return err
		}
		return operationError(fmt.Sprintf("table %s failed", action), res.Err)
	}

	return f.Emit(out, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, tableMessage(table, res))
		return err
	})
}

func tableMessage(table string, res database.TableResult) string {
	switch res.Action {
	case database.ActionCreate:
		return fmt.Sprintf("Table '%s' created or already exists.", table)
	case database.ActionDrop:
		return fmt.Sprintf("Table '%s' dropped.", table)
	default:
		return fmt.Sprintf("Table '%s' backed up as '%s'.", table, res.Table)
	}
}

func runTableExists(cmd *cobra.Command, opts *TableOptions, table string) error {
	c, err := opts.open(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	exists := c.TableExists(cmd.Context(), table)
	err = opts.output(cmd).Emit(map[string]any{"table": table, "exists": exists}, func(w io.Writer) error {
		if exists {
			_, err := fmt.Fprintf(w, "Table '%s' exists.\n", table)
			return err
		}
		_, err := fmt.Fprintf(w, "Table '%s' does not exist.\n", table)
		return err
	})
	if err != nil {
		return err
	}
	if !exists {
		return NewExitError(ExitFailure, fmt.Sprintf("table %q does not exist", table))
	}
	return nil
}

func runTableDescribe(cmd *cobra.Command, opts *TableOptions, table string) error {
	c, err := opts.open(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	cols, err := c.Columns(cmd.Context(), table)
	if err != nil {
		return operationError("describe failed", err)
	}

	return opts.output(cmd).Emit(cols, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "COLUMN\tTYPE\tNULLABLE\tPRIMARY KEY")
		for _, col := range cols {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%t\n", col.Name, col.DataType, col.Nullable, col.PrimaryKey)
		}
		return tw.Flush()
	})
}
