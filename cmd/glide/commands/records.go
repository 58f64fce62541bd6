package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/glide-client/internal/constants"
	"github.com/fivetwenty-io/glide-client/pkg/glide"
)

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	var (
		clauses     []string
		fields      string
		limit       int
		batchSize   int
		orderBy     string
		orderByDesc string
	)

	cmd := &cobra.Command{
		Use:     "query TABLE",
		Aliases: []string{"list", "ls"},
		Short:   "Query records of a table",
		Long:    "List the records of a table matching encoded query clauses, fetching them in batches",
		Example: `  glide query incident -q active=true -q priority=1 --order-by-desc sys_created_on --limit 20
  glide query sys_user -q "nameSTARTSWITHAbel" -f sys_id,name,email -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, err := newCursor(args[0], glide.WithLimit(limit), glide.WithBatchSize(batchSize))
			if err != nil {
				return err
			}

			for _, clause := range clauses {
				cursor.AddEncodedQuery(clause)
			}

			if orderBy != "" {
				cursor.AddEncodedQuery(glide.OrderBy(orderBy))
			}

			if orderByDesc != "" {
				cursor.AddEncodedQuery(glide.OrderByDesc(orderByDesc))
			}

			err = cursor.Query(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to query %s: %w", args[0], err)
			}

			records := cursor.All(cmd.Context())

			err = cursor.Err()
			if err != nil {
				return fmt.Errorf("failed to query %s: %w", args[0], err)
			}

			return renderRecords(cmd.OutOrStdout(), records, splitFields(fields))
		},
	}

	cmd.Flags().StringArrayVarP(&clauses, "query", "q", nil, "encoded query clause, repeatable (joined with ^)")
	cmd.Flags().StringVarP(&fields, "fields", "f", "", "comma separated fields to display")
	cmd.Flags().IntVarP(&limit, "limit", "l", constants.DefaultQueryLimit, "maximum number of records")
	cmd.Flags().IntVar(&batchSize, "batch-size", constants.DefaultBatchSize, "records fetched per request")
	cmd.Flags().StringVar(&orderBy, "order-by", "", "sort ascending by field")
	cmd.Flags().StringVar(&orderByDesc, "order-by-desc", "", "sort descending by field")

	return cmd
}

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var fields string

	cmd := &cobra.Command{
		Use:   "get TABLE SYS_ID",
		Short: "Get a record",
		Long:  "Display a single record of a table by its sys_id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, err := newCursor(args[0])
			if err != nil {
				return err
			}

			rec, ok := cursor.Get(cmd.Context(), args[1])
			if !ok {
				return absent(cursor, "failed to get record from")
			}

			return renderRecord(cmd.OutOrStdout(), rec, splitFields(fields))
		},
	}

	cmd.Flags().StringVarP(&fields, "fields", "f", "", "comma separated fields to display")

	return cmd
}

// NewInsertCommand creates the insert command.
func NewInsertCommand() *cobra.Command {
	var data, file string

	cmd := &cobra.Command{
		Use:     "insert TABLE",
		Aliases: []string{"create"},
		Short:   "Insert a record",
		Long:    "Create a record from JSON or YAML given inline or in a file",
		Example: `  glide insert incident --data '{"short_description":"Printer on fire","urgency":"1"}'
  glide insert incident --file incident.yml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecordInput(cmd, data, file)
			if err != nil {
				return err
			}

			cursor, err := newCursor(args[0])
			if err != nil {
				return err
			}

			created, ok := cursor.Insert(cmd.Context(), rec)
			if !ok {
				return absent(cursor, "failed to insert into")
			}

			return renderRecord(cmd.OutOrStdout(), created, nil)
		},
	}

	addRecordInputFlags(cmd, &data, &file)

	return cmd
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand() *cobra.Command {
	var data, file string

	cmd := &cobra.Command{
		Use:   "update TABLE SYS_ID",
		Short: "Update a record",
		Long:  "Update the fields of an existing record from JSON or YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecordInput(cmd, data, file)
			if err != nil {
				return err
			}

			cursor, err := newCursor(args[0])
			if err != nil {
				return err
			}

			updated, ok := cursor.Update(cmd.Context(), rec, args[1])
			if !ok {
				return absent(cursor, "failed to update record in")
			}

			return renderRecord(cmd.OutOrStdout(), updated, nil)
		},
	}

	addRecordInputFlags(cmd, &data, &file)

	return cmd
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand() *cobra.Command {
	var legacyPut bool

	cmd := &cobra.Command{
		Use:     "delete TABLE SYS_ID",
		Aliases: []string{"rm"},
		Short:   "Delete a record",
		Long:    "Delete a record of a table by its sys_id",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []glide.Option
			if legacyPut {
				opts = append(opts, glide.WithDeleteMethod(http.MethodPut))
			}

			cursor, err := newCursor(args[0], opts...)
			if err != nil {
				return err
			}

			_, ok := cursor.Delete(cmd.Context(), args[1])
			if !ok {
				return absent(cursor, "failed to delete record from")
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s/%s\n", args[0], args[1])

			return nil
		},
	}

	cmd.Flags().BoolVar(&legacyPut, "use-put", false, "delete with a body-less PUT instead of DELETE")

	return cmd
}

func addRecordInputFlags(cmd *cobra.Command, data, file *string) {
	cmd.Flags().StringVarP(data, "data", "d", "", "record as inline JSON or YAML")
	cmd.Flags().StringVar(file, "file", "", "file holding the record as JSON or YAML (- for stdin)")
}
