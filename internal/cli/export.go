package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/koustreak/relstore/internal/export"
	"github.com/koustreak/relstore/internal/filestore"
	"github.com/koustreak/relstore/internal/filestore/minio"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Bucket string
	List   bool
	Limit  int
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Upload a table's rows as JSON lines to object storage",
		Long: `Upload every row of a table as one JSON object per line to the
configured MinIO/S3 endpoint (export.endpoint or RELSTORE_EXPORT_ENDPOINT).
With --list, show the table's earlier exports instead, oldest first.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Bucket, "bucket", "", "target bucket (default from config)")
	cmd.Flags().BoolVar(&opts.List, "list", false, "list earlier exports of the table")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "with --list, show at most this many exports")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, table string) error {
	fsCfg := opts.cfg.Export
	if opts.Bucket != "" {
		fsCfg.Bucket = opts.Bucket
	}
	if !fsCfg.Enabled() {
		return NewExitError(ExitCommandError, "export endpoint is not configured")
	}

	ctx := cmd.Context()
	files, err := minio.New(ctx, &fsCfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to object storage", err)
	}
	defer files.Close()

	c, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	exporter := export.New(c, files, &fsCfg, opts.log)
	if opts.List {
		return listExports(cmd, opts, exporter, table)
	}

	info, err := exporter.ExportTable(ctx, table)
	if err != nil {
		return operationError("export failed", err)
	}

	return opts.output(cmd).Emit(info, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "Exported '%s' to %s/%s (%d bytes).\n", table, info.Bucket, info.Key, info.Size)
		return err
	})
}

func listExports(cmd *cobra.Command, opts *ExportOptions, exporter *export.Exporter, table string) error {
	objects, err := exporter.ListExports(cmd.Context(), table, opts.Limit)
	if err != nil {
		return operationError("listing exports failed", err)
	}

	return opts.output(cmd).Emit(objects, func(w io.Writer) error {
		return writeObjects(w, objects)
	})
}

func writeObjects(w io.Writer, objects []filestore.ObjectInfo) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSIZE\tLAST MODIFIED")
	for _, obj := range objects {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", obj.Key, obj.Size, formatValue(obj.LastModified))
	}
	return tw.Flush()
}
