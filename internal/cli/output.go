package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/chunger/cfdb/graph"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitCommandError = 2
)

// ExitError carries the process exit code of a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitFailure
}

// writeTable renders rows as a markdown table.
func writeTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

func notFound(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.YellowString(format, args...))
}

func formatTime(nanos int64) string {
	return time.Unix(0, nanos).UTC().Format(time.RFC3339)
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

var nodeHeaders = []string{"id", "name", "type", "created", "description"}

func nodeRows(nodes []*graph.Node) [][]string {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{u64(n.ID), n.Name, fmt.Sprintf("%s#%d", n.Type, n.TypeCode), formatTime(n.CreatedAt), n.Description})
	}
	return rows
}

var edgeHeaders = []string{"id", "name", "head", "tail", "type", "created", "description"}

func edgeRows(edges []*graph.Edge) [][]string {
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []string{u64(e.ID), e.Name, u64(e.Head), u64(e.Tail), fmt.Sprintf("%s#%d", e.Type, e.TypeCode), formatTime(e.CreatedAt), e.Description})
	}
	return rows
}

func saveError(err error) error {
	if errors.Is(err, graph.ErrUnknownID) {
		return WrapExitError(ExitCommandError, "cannot replace", err)
	}
	return err
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid id %q", s), err)
	}
	return id, nil
}
