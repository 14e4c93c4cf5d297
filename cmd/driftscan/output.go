package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	headerColor  = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

func setNoColor(v bool) { color.NoColor = v }

func printHeader(format string, args ...any) {
	headerColor.Fprintf(os.Stderr, format+"\n", args...)
}

func printSuccess(format string, args ...any) {
	successColor.Fprint(os.Stderr, "✓ ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func printFail(format string, args ...any) {
	failColor.Fprint(os.Stderr, "✗ ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func printWarn(format string, args ...any) {
	warnColor.Fprint(os.Stderr, "! ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func printDim(format string, args ...any) {
	dimColor.Fprintf(os.Stderr, format+"\n", args...)
}
