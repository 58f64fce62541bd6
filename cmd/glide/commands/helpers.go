package commands

import (
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/glide-client/internal/constants"
	"github.com/fivetwenty-io/glide-client/pkg/glide"
)

// record is a table row as returned by the Table API.
type record = map[string]interface{}

// newCursor builds a cursor for table from the global flags, the config file
// and the SNOW_API_* environment.
func newCursor(table string, extra ...glide.Option) (*glide.Cursor[record], error) {
	return glide.New[record](table, append(clientOptions(), extra...)...)
}

func clientOptions() []glide.Option {
	opts := []glide.Option{
		glide.WithConfigProvider(glide.NewViperProvider(viper.GetViper())),
		glide.WithUserAgent("glide-cli/" + cliVersion),
	}

	if viper.GetBool("verbose") {
		opts = append(opts, glide.WithLogger(newStderrLogger(os.Stderr)), glide.WithDebug(true))
	}

	if timeout := viper.GetDuration("timeout"); timeout > 0 {
		opts = append(opts, glide.WithTimeout(timeout))
	}

	if retries := viper.GetInt("retries"); retries > 0 {
		opts = append(opts, glide.WithRetryConfig(retries, constants.DefaultRetryWaitMin, constants.DefaultRetryWaitMax))
	}

	return opts
}

// absent turns a false result from a record operation into an error.
func absent[T any](cursor *glide.Cursor[T], action string) error {
	cause := cursor.Err()
	if cause == nil {
		return fmt.Errorf("%s %s: %w", action, cursor.Table(), constants.ErrRecordNotReturned)
	}

	return fmt.Errorf("%s %s: %w", action, cursor.Table(), cause)
}

// readRecordInput parses --data or --file into a record. Both JSON and YAML
// are accepted; "-" reads the file from stdin.
func readRecordInput(cmd *cobra.Command, data, file string) (record, error) {
	if data != "" && file != "" {
		return nil, constants.ErrDataAndFile
	}

	var raw []byte

	switch {
	case data != "":
		raw = []byte(data)
	case file == "-":
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}

		raw = content
	case file != "":
		// #nosec G304 -- the path is supplied by the user on purpose
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}

		raw = content
	default:
		return nil, constants.ErrRecordRequired
	}

	var rec record

	err := yaml.Unmarshal(raw, &rec)
	if err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}

	if len(rec) == 0 {
		return nil, constants.ErrRecordRequired
	}

	return rec, nil
}

func splitFields(fields string) []string {
	var out []string

	for _, field := range strings.Split(fields, ",") {
		if field = strings.TrimSpace(field); field != "" {
			out = append(out, field)
		}
	}

	return out
}

func project(rec record, fields []string) record {
	if len(fields) == 0 {
		return rec
	}

	out := make(record, len(fields))
	for _, field := range fields {
		out[field] = rec[field]
	}

	return out
}

// renderRecords writes records in the configured output format.
func renderRecords(w io.Writer, records []record, fields []string) error {
	projected := make([]record, 0, len(records))
	for _, rec := range records {
		projected = append(projected, project(rec, fields))
	}

	switch format := viper.GetString("output"); format {
	case constants.FormatJSON:
		return encodeJSON(w, projected)
	case constants.FormatYAML:
		return yaml.NewEncoder(w).Encode(projected)
	case constants.FormatTable, "":
		return renderTable(w, projected, fields)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownOutput, format)
	}
}

// renderRecord writes one record, as a property table in table format.
func renderRecord(w io.Writer, rec record, fields []string) error {
	rec = project(rec, fields)

	switch format := viper.GetString("output"); format {
	case constants.FormatJSON:
		return encodeJSON(w, rec)
	case constants.FormatYAML:
		return yaml.NewEncoder(w).Encode(rec)
	case constants.FormatTable, "":
		table := tablewriter.NewWriter(w)
		table.Header("Field", "Value")

		for _, key := range sortedKeys(rec) {
			_ = table.Append(key, cellValue(rec[key]))
		}

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownOutput, format)
	}
}

func encodeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

func renderTable(w io.Writer, records []record, fields []string) error {
	columns := fields
	if len(columns) == 0 {
		columns = defaultColumns(records)
	}

	if len(columns) == 0 {
		_, _ = fmt.Fprintln(w, "No records found")

		return nil
	}

	header := make([]any, 0, len(columns))
	for _, column := range columns {
		header = append(header, column)
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	for _, rec := range records {
		row := make([]string, 0, len(columns))
		for _, column := range columns {
			row = append(row, cellValue(rec[column]))
		}

		_ = table.Append(row)
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// defaultColumns picks sys_id followed by the alphabetically first fields.
func defaultColumns(records []record) []string {
	seen := map[string]struct{}{}

	for _, rec := range records {
		for key := range rec {
			seen[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	if idx := slices.Index(keys, "sys_id"); idx > 0 {
		keys = append([]string{"sys_id"}, slices.Delete(keys, idx, idx+1)...)
	}

	if len(keys) > constants.MaxTableColumns {
		keys = keys[:constants.MaxTableColumns]
	}

	return keys
}

func sortedKeys(rec record) []string {
	keys := make([]string, 0, len(rec))
	for key := range rec {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// cellValue renders a field for table output. Reference fields show their
// sys_id.
func cellValue(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case map[string]interface{}:
		if ref, ok := typed["value"]; ok {
			return cast.ToString(ref)
		}
	}

	text, err := cast.ToStringE(value)
	if err != nil {
		encoded, marshalErr := json.Marshal(value)
		if marshalErr != nil {
			return constants.NotAvailable
		}

		return string(encoded)
	}

	return text
}
