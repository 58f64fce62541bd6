package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/glide-client/internal/constants"
	"github.com/fivetwenty-io/glide-client/pkg/glide"
)

// NewRefCommand creates the ref command.
func NewRefCommand() *cobra.Command {
	var (
		fields    string
		parseOnly bool
	)

	cmd := &cobra.Command{
		Use:   "ref LINK",
		Short: "Resolve a reference link",
		Long:  "Fetch the record a reference link points at, e.g. https://host/api/now/table/sys_user/<sys_id> or sys_user/<sys_id>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref := glide.ParseReference(args[0])
			if ref.IsZero() {
				return fmt.Errorf("%w: %s", constants.ErrReferenceMalformed, args[0])
			}

			if parseOnly {
				return renderRecord(cmd.OutOrStdout(), record{"table": ref.Table, "sys_id": ref.SysID}, nil)
			}

			rec, err := glide.ResolveItem[record](cmd.Context(), ref, clientOptions()...)
			if err != nil {
				return err
			}

			return renderRecord(cmd.OutOrStdout(), rec, splitFields(fields))
		},
	}

	cmd.Flags().StringVarP(&fields, "fields", "f", "", "comma separated fields to display")
	cmd.Flags().BoolVar(&parseOnly, "parse-only", false, "print the table and sys_id without fetching")

	return cmd
}
