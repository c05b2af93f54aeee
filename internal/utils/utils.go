package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/pankajredekar/lemonmenu/internal/model"
)

// Color output helpers
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// Output is where status lines are written
var Output io.Writer = os.Stdout

func printStatus(color, symbol, msg string, args ...interface{}) {
	fmt.Fprintf(Output, color+symbol+" "+msg+ColorReset+"\n", args...)
}

// PrintSuccess prints a success message
func PrintSuccess(msg string, args ...interface{}) {
	printStatus(ColorGreen, "✓", msg, args...)
}

// PrintError prints an error message
func PrintError(msg string, args ...interface{}) {
	printStatus(ColorRed, "✗", msg, args...)
}

// PrintInfo prints an info message
func PrintInfo(msg string, args ...interface{}) {
	printStatus(ColorCyan, "ℹ", msg, args...)
}

// PrintWarning prints a warning message
func PrintWarning(msg string, args ...interface{}) {
	printStatus(ColorYellow, "⚠", msg, args...)
}

// PrintMenu writes one row per record: the title, then the price right
// aligned with two decimals.
func PrintMenu(w io.Writer, records []model.MenuRecord) {
	width := 0
	for _, r := range records {
		width = max(width, utf8.RuneCountInString(r.Title))
	}
	for _, r := range records {
		pad := width - utf8.RuneCountInString(r.Title)
		fmt.Fprintf(w, "%s%s  %8s\n", r.Title, strings.Repeat(" ", pad), r.FormattedPrice())
	}
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
