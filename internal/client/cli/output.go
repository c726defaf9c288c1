package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/vova4o/passkeeper/internal/client/handlers"
	"github.com/vova4o/passkeeper/internal/client/menu"
	"github.com/vova4o/passkeeper/internal/client/storage"
	"github.com/vova4o/passkeeper/internal/models"
	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // The store rejected the request
	ExitCommandError = 2 // Connection, pairing or storage problems
)

// ExitError represents an error with a specific exit code.
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

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if errors.Is(err, models.ErrStoreFailure) ||
		errors.Is(err, handlers.ErrUnauthenticated) ||
		errors.Is(err, storage.ErrNoSession) {
		return ExitCommandError
	}
	return ExitFailure
}

// OutputFormatter handles text, JSON and YAML output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Data writes v as JSON or YAML, or calls text for the text format
func (f *OutputFormatter) Data(v interface{}, text func(w io.Writer) error) error {
	switch f.Format {
	case "json":
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(f.Writer)
	}
}

// Message writes a status line. Structured formats get {"message": ...}.
func (f *OutputFormatter) Message(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	return f.Data(map[string]string{"message": msg}, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, msg)
		return err
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func destinations(p models.Pass) string {
	var names []string
	for _, d := range models.Destinations() {
		if p.On(d) {
			names = append(names, d.String())
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}

func writePass(w io.Writer, p models.Pass) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", p.Title)
	fmt.Fprintf(tw, "Code:\t%s\n", p.Code)
	fmt.Fprintf(tw, "Format:\t%s\n", p.Format())
	fmt.Fprintf(tw, "Watch:\t%s\n", yesNo(p.IsOnWatch))
	fmt.Fprintf(tw, "Widget:\t%s\n", yesNo(p.IsOnWidget))
	fmt.Fprintf(tw, "Siri:\t%s\n", yesNo(p.IsOnSiri))
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(tw, "Updated:\t%s\n", p.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return tw.Flush()
}

func writePassList(w io.Writer, passes []models.Pass) error {
	if len(passes) == 0 {
		_, err := fmt.Fprintln(w, "No passes")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tFORMAT\tDESTINATIONS")
	for _, p := range passes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Format(), destinations(p))
	}
	return tw.Flush()
}

func writeMenu(w io.Writer, rows []menu.Row) error {
	for _, row := range rows {
		var err error
		switch row.Kind {
		case menu.RowHeader:
			marker := ">"
			if len(rows) > 1 {
				marker = "v"
			}
			_, err = fmt.Fprintf(w, "%s %s\n", marker, row.Title)
		case menu.RowChirp:
			_, err = fmt.Fprintf(w, "      %s\n", row.Title)
		default:
			check := " "
			if row.Checked {
				check = "x"
			}
			_, err = fmt.Fprintf(w, "  [%s] %s\n", check, row.Title)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
