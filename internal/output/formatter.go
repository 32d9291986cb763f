package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
)

// quiet suppresses informational output (Info, Success, Print).
// Errors and warnings are always shown.
var quiet bool

// SetQuiet toggles quiet mode for the process.
func SetQuiet(q bool) {
	quiet = q
}

// JSON outputs data as JSON. JSON output ignores quiet mode because it is
// the machine-readable result of the command.
func JSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Table outputs data as a formatted table
func Table(headers []string, rows [][]string) {
	if quiet || len(headers) == 0 {
		return
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	// Print headers
	headerLine := make([]string, len(headers))
	for i, h := range headers {
		headerLine[i] = fmt.Sprintf("%-*s", widths[i], h)
	}
	fmt.Println(strings.Join(headerLine, "  "))

	// Print separator
	sepLine := make([]string, len(headers))
	for i, w := range widths {
		sepLine[i] = strings.Repeat("-", w)
	}
	fmt.Println(strings.Join(sepLine, "  "))

	// Print rows
	for _, row := range rows {
		rowLine := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			rowLine[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Println(strings.Join(rowLine, "  "))
	}
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	if quiet {
		return
	}
	_, _ = successColor.Printf("✓ "+format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Printf("✗ "+format+"\n", args...)
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Printf("! "+format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	if quiet {
		return
	}
	_, _ = infoColor.Printf("→ "+format+"\n", args...)
}

// Print prints a plain message
func Print(format string, args ...interface{}) {
	if quiet {
		return
	}
	fmt.Printf(format+"\n", args...)
}
