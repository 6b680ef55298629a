package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/koustreak/relstore/internal/database"
)

const (
	demoTable   = "contacts"
	demoColumns = "id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, email TEXT UNIQUE, phone TEXT"
)

var demoContacts = []database.Named{
	{":name": "John Doe", ":email": "john.doe@example.com", ":phone": "123-456-7890"},
	{":name": "Jane Smith", ":email": "jane.smith@example.com", ":phone": "987-654-3210"},
	{":name": "Peter Jones", ":email": "peter.jones@example.com", ":phone": "555-123-4567"},
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Walk through an address book against the configured database",
		Long: `Create a contacts table, insert three contacts, list them, update and
delete one each, and back the table up. Output is always text.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := rootOpts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			if err := runDemo(cmd.Context(), c, cmd.OutOrStdout()); err != nil {
				return operationError("demo failed", err)
			}
			return nil
		},
	}
}

func runDemo(ctx context.Context, c database.Store, w io.Writer) error {
	if c.ManageTable(ctx, demoTable, demoColumns, string(database.ActionCreate)).OK {
		fmt.Fprintf(w, "Table '%s' created or already exists.\n", demoTable)
	} else {
		fmt.Fprintf(w, "Failed to create table '%s'.\n", demoTable)
	}

	if c.TableExists(ctx, demoTable) {
		fmt.Fprintf(w, "Table '%s' exists.\n", demoTable)
	} else {
		fmt.Fprintf(w, "Table '%s' does not exist.\n", demoTable)
	}

	insert := fmt.Sprintf("INSERT INTO %s (name, email, phone) VALUES (:name, :email, :phone)", demoTable)
	for _, contact := range demoContacts {
		res, err := c.Execute(ctx, insert, contact, string(database.ModeInsert))
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			fmt.Fprintln(w, "Failed to insert contact.")
			continue
		}
		id, err := c.LastInsertID(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Inserted contact with ID: %s\n", id)
	}

	if err := listContacts(ctx, c, w); err != nil {
		return err
	}

	res, err := c.Execute(ctx, fmt.Sprintf("UPDATE %s SET phone = :phone WHERE id = :id", demoTable),
		database.Named{":phone": "111-222-3333", ":id": 1}, string(database.ModeUpdate))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\nUpdated %d rows.\n", res.RowsAffected)

	res, err = c.Execute(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = :id", demoTable),
		database.Named{":id": 3}, string(database.ModeDelete))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Deleted %d rows.\n", res.RowsAffected)

	if err := listContacts(ctx, c, w); err != nil {
		return err
	}

	fmt.Fprintln(w)
	if backup := c.ManageTable(ctx, demoTable, "", string(database.ActionBackup)); backup.OK {
		fmt.Fprintf(w, "Table '%s' backed up as '%s'.\n", demoTable, backup.Table)
	} else {
		fmt.Fprintf(w, "Failed to backup table '%s'.\n", demoTable)
	}
	return nil
}

func listContacts(ctx context.Context, c database.Store, w io.Writer) error {
	res, err := c.Execute(ctx, "SELECT * FROM "+demoTable, nil, string(database.ModeRead))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\nContacts:")
	return writeRows(w, res.Columns, res.Rows)
}
