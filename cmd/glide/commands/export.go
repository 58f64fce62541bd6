package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/glide-client/internal/constants"
	"github.com/fivetwenty-io/glide-client/internal/publish"
	"github.com/fivetwenty-io/glide-client/pkg/glide"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var (
		clauses   []string
		limit     int
		batchSize int
		natsURL   string
		natsToken string
		subject   string
	)

	cmd := &cobra.Command{
		Use:   "export TABLE",
		Short: "Stream records to NATS or stdout",
		Long: `Stream every record matching the query as a JSON message.

With --nats-url each record is published to the subject (default glide.<table>);
otherwise records are written to stdout as newline delimited JSON.`,
		Example: `  glide export incident -q active=true --nats-url nats://localhost:4222
  glide export sys_user > users.ndjson`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := args[0]
			if subject == "" {
				subject = constants.DefaultSubjectPrefix + "." + table
			}

			publisher, err := newPublisher(cmd, natsURL, natsToken)
			if err != nil {
				return err
			}

			defer func() { _ = publisher.Close() }()

			cursor, err := newCursor(table, glide.WithLimit(limit), glide.WithBatchSize(batchSize))
			if err != nil {
				return err
			}

			for _, clause := range clauses {
				cursor.AddEncodedQuery(clause)
			}

			err = cursor.Query(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to query %s: %w", table, err)
			}

			count, err := publish.Export(cmd.Context(), publisher, subject, cursor.Records(cmd.Context()))
			if err != nil {
				return fmt.Errorf("failed to export %s after %d records: %w", table, count, err)
			}

			err = cursor.Err()
			if err != nil {
				return fmt.Errorf("export of %s stopped after %d records: %w", table, count, err)
			}

			if natsURL != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Published %d records to %s\n", count, subject)
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&clauses, "query", "q", nil, "encoded query clause, repeatable (joined with ^)")
	cmd.Flags().IntVarP(&limit, "limit", "l", constants.DefaultQueryLimit, "maximum number of records")
	cmd.Flags().IntVar(&batchSize, "batch-size", constants.DefaultBatchSize, "records fetched per request")
	cmd.Flags().StringVar(&natsURL, "nats-url", "", "NATS server URL; stdout when empty")
	cmd.Flags().StringVar(&natsToken, "nats-token", "", "NATS authentication token")
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "NATS subject (default glide.<table>)")

	return cmd
}

func newPublisher(cmd *cobra.Command, natsURL, natsToken string) (publish.Publisher, error) {
	if natsURL == "" {
		return publish.NewWriterPublisher(cmd.OutOrStdout()), nil
	}

	publisher, err := publish.NewNATSPublisher(&publish.NATSConfig{
		URL:     natsURL,
		Name:    "glide-cli",
		Timeout: constants.DefaultNATSTimeout,
		Token:   natsToken,
	})
	if err != nil {
		return nil, err
	}

	return publisher, nil
}
