package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/koustreak/relstore/internal/database"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Mode   string
	Params []string // name=value
	Args   []string // positional values
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Execute a parameterized statement",
		Long: `Execute a parameterized statement in one of the modes read, insert,
update or delete. Bind values by name with --param or by position with --arg.
Named parameters are supported by the SQLite driver only; MySQL and Postgres
take --arg values for "?" and "$1" placeholders respectively.

Example:
  relstore exec --mode insert --param name='John Doe' \
    "INSERT INTO contacts (name) VALUES (:name)"
  relstore exec --arg 1 "SELECT * FROM contacts WHERE id = ?"`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.Mode, "mode", "m", string(database.ModeRead), "statement mode (read|insert|update|delete)")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "named parameter as name=value, SQLite only (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Args, "arg", "a", nil, "positional parameter (repeatable)")

	return cmd
}

func runExec(cmd *cobra.Command, opts *ExecOptions, query string) error {
	params, err := opts.params()
	if err != nil {
		return err
	}

	c, err := opts.open(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	res, err := c.Execute(cmd.Context(), query, params, opts.Mode)
	if err != nil {
		return operationError("statement failed", err)
	}

	return opts.output(cmd).Emit(res, func(w io.Writer) error {
		return writeResult(w, res)
	})
}

func (o *ExecOptions) params() (database.Params, error) {
	switch {
	case len(o.Params) > 0 && len(o.Args) > 0:
		return nil, NewExitError(ExitCommandError, "--param and --arg cannot be combined")
	case len(o.Args) > 0:
		pos := make(database.Positional, len(o.Args))
		for i, a := range o.Args {
			pos[i] = a
		}
		return pos, nil
	case len(o.Params) > 0:
		named := make(database.Named, len(o.Params))
		for _, p := range o.Params {
			name, value, ok := strings.Cut(p, "=")
			if !ok || name == "" {
				return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --param %q: want name=value", p))
			}
			named[name] = value
		}
		return named, nil
	default:
		return nil, nil
	}
}

func writeResult(w io.Writer, res *database.Result) error {
	if res.Mode == database.ModeRead {
		if err := writeRows(w, res.Columns, res.Rows); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
		return err
	}

	if _, err := fmt.Fprintf(w, "%d rows affected\n", res.RowsAffected); err != nil {
		return err
	}
	if res.LastInsertID != "" {
		_, err := fmt.Fprintf(w, "last insert id: %s\n", res.LastInsertID)
		return err
	}
	return nil
}
