package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Nick80835/boredom2/internal/logger"
	"github.com/Nick80835/boredom2/internal/runner"
	"github.com/Nick80835/boredom2/pkg/color"

	"github.com/charmbracelet/log"
)

// Main entry point for the boredom2 interpreter.
func main() {
	options := runner.Runner{}
	var help bool

	flag.BoolVar(&help, "h", false, "Show help")
	flag.BoolVar(&options.Verbose, "v", false, "Verbose mode")
	flag.BoolVar(&options.NoColor, "n", false, "No color")
	flag.BoolVar(&options.DumpProgram, "d", false, "Dump the parsed program")
	flag.IntVar(&options.MaxSteps, "s", 0, "Maximum interpreter steps (0 = unlimited)")

	flag.Parse()
	args := flag.Args()

	logger.Init(options.Verbose, options.NoColor)
	if help {
		fmt.Printf("Usage: %s [options] <filepath>\n", os.Args[0])
		fmt.Println("Options:")
		flag.PrintDefaults()
		return
	}

	if options.NoColor {
		color.EnableColor(false)
	}

	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <filepath>\n", os.Args[0])
		os.Exit(1)
	}

	options.SourceFile = args[0]

	if err := options.Run(); err != nil {
		log.Fatal("run failed", "error", err)
	}
}
