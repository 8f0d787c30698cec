// Command uilang reads an HTML page, binds the click instruction embedded in
// it, performs simulated clicks and prints the resulting HTML.
//
// Usage:
//
//	uilang -click .btn page.html
//
// Read from stdin and click twice:
//
//	cat page.html | uilang -click "#menu-toggle" -click "#menu-toggle"
//
// Report classes of the instruction that no style sheet of the page uses:
//
//	uilang -lint page.html
//
// Settings can be kept in a YAML file (-config); flags given on the command
// line are added to it.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/boxesandglue/uilang"
	"gopkg.in/yaml.v3"
)

// config is the content of the -config file.
type config struct {
	InstructionSelector string   `yaml:"instruction_selector"`
	Clicks              []string `yaml:"clicks"`
	Lint                bool     `yaml:"lint"`
}

func loadConfig(path string) (config, error) {
	var cfg config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// stringList collects a repeatable flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns a Unix-style exit code:
//   - 0 for success
//   - 2 for usage/config errors
//   - 1 for runtime errors
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("uilang", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var clicks stringList
	fs.Var(&clicks, "click", "CSS selector of elements to click, may be repeated")
	configPath := fs.String("config", "", "Optional: YAML config file")
	instructionSelector := fs.String("selector", "", "CSS selector of the elements holding the instruction (default \"code\")")
	lint := fs.Bool("lint", false, "Warn about instruction classes no style sheet mentions")
	verbose := fs.Bool("v", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "at most one input file expected\n")
		return 2
	}

	var cfg config
	if *configPath != "" {
		var err error
		if cfg, err = loadConfig(*configPath); err != nil {
			fmt.Fprintf(stderr, "load config: %v\n", err)
			return 2
		}
	}
	if *instructionSelector != "" {
		cfg.InstructionSelector = *instructionSelector
	}
	cfg.Clicks = append(cfg.Clicks, clicks...)
	cfg.Lint = cfg.Lint || *lint

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	loader := uilang.NewLoader()
	loader.InstructionSelector = cfg.InstructionSelector
	loader.Logger = logger

	var page *uilang.Page
	var err error
	if fs.NArg() == 1 {
		page, err = loader.LoadFile(fs.Arg(0))
	} else {
		page, err = loader.Load(stdin)
	}
	if err != nil {
		fmt.Fprintf(stderr, "load html: %v\n", err)
		return 1
	}

	// Failed clauses are reported but the working ones are still used.
	status := 0
	bindings, err := page.Activate()
	if err != nil {
		fmt.Fprintf(stderr, "activate: %v\n", err)
		status = 1
	}

	if cfg.Lint {
		rules := make([]uilang.Rule, 0, len(bindings))
		for _, b := range bindings {
			rules = append(rules, b.Rule)
		}
		for _, c := range uilang.UnstyledClasses(rules, page.Stylesheets) {
			logger.Warn("class not found in any style sheet", "class", c)
		}
	}

	for _, sel := range cfg.Clicks {
		events, err := page.ClickAll(sel)
		if err != nil {
			fmt.Fprintf(stderr, "click %s: %v\n", sel, err)
			status = 1
		}
		for _, ev := range events {
			if ev.DefaultPrevented() {
				logger.Debug("navigation prevented", "selector", sel)
			}
		}
		logger.Debug("clicked", "selector", sel, "elements", len(events))
	}

	out, err := page.HTML()
	if err != nil {
		fmt.Fprintf(stderr, "render html: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, out)
	return status
}
