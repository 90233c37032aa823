package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// tableProvider is a result with a tabular rendering.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// jsonValuer is a result whose JSON form differs from its Go shape.
type jsonValuer interface {
	JSONValue() interface{}
}

// PrintResult writes data to stdout in the session's output format; JSON
// when the command runs without a session.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	format := "json"
	if session, err := GetCLIContext(cmd); err == nil {
		format = session.OutputFormat
	}
	switch format {
	case "json":
		return printJSON(cmd, data)
	case "table":
		if tp, ok := data.(tableProvider); ok {
			_, err := fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
			return err
		}
	}
	return printText(cmd, data)
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	if jv, ok := data.(jsonValuer); ok {
		data = jv.JSONValue()
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	var err error
	switch v := data.(type) {
	case string:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return err
}

// PrintError writes err to stderr; nil is ignored.
func PrintError(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s\n", err)
	}
}

func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", msg)
}

// FormatTable left-aligns every column, two spaces apart, with a dashed rule
// under the headers.  Short rows are padded with empty cells; cells beyond
// the headers are dropped.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	cell := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
		for _, row := range rows {
			widths[i] = max(widths[i], len(cell(row, i)))
		}
	}

	rule := make([]string, len(headers))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}

	var b strings.Builder
	for _, row := range append([][]string{headers, rule}, rows...) {
		for i, w := range widths {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%-*s", w, cell(row, i))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

//Personal.AI order the ending
