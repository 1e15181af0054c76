package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/xenixjr/webrisk-demo-repo/internal/model"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/ctlog"
	"github.com/xenixjr/webrisk-demo-repo/internal/service/scanner"
)

const defaultLogSource = "https://ct.googleapis.com/aviator/ct/v1/get-entries"

type options struct {
	brand       string
	logs        []string
	configPath  string
	pageSize    int64
	concurrency int
	tail        int64
	jsonOut     bool
	verbose     bool
}

// scanProfile mirrors the --config YAML file. Explicit flags win over
// profile values.
type scanProfile struct {
	Brand       string   `yaml:"brand"`
	Logs        []string `yaml:"logs"`
	PageSize    int64    `yaml:"pageSize"`
	Concurrency int      `yaml:"concurrency"`
	Tail        int64    `yaml:"tail"`
}

func loadProfile(path string) (*scanProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	profile := &scanProfile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("parse scan profile: %w", err)
	}
	return profile, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "ctscan",
		Short:         "ctscan sweeps Certificate Transparency logs for certificates naming a brand",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.brand, "brand", "", "brand keyword to search for (case-insensitive)")
	cmd.Flags().StringSliceVar(&opts.logs, "log", []string{defaultLogSource}, "get-entries endpoint to sweep (repeatable)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML scan profile")
	cmd.Flags().Int64Var(&opts.pageSize, "page-size", 1000, "entries per get-entries request")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 1, "log sources swept in parallel")
	cmd.Flags().Int64Var(&opts.tail, "tail", 0, "sweep only the newest N entries of each log (0 = from the start)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print matches as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func run(cmd *cobra.Command, opts *options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if opts.configPath != "" {
		profile, err := loadProfile(opts.configPath)
		if err != nil {
			return err
		}
		applyProfile(cmd, opts, profile)
	}

	if opts.brand == "" {
		return errors.New("a brand is required (--brand or a config file)")
	}

	client := ctlog.NewClient()
	s := scanner.New(client, opts.pageSize, opts.concurrency, opts.tail)

	matches := s.Scan(cmd.Context(), opts.brand, opts.logs)

	if opts.jsonOut {
		if matches == nil {
			matches = []model.Match{}
		}
		return json.NewEncoder(os.Stdout).Encode(matches)
	}

	printMatches(os.Stdout, opts.brand, matches)
	return nil
}

// applyProfile fills in options the user did not set on the command line.
func applyProfile(cmd *cobra.Command, opts *options, profile *scanProfile) {
	flags := cmd.Flags()
	if !flags.Changed("brand") && profile.Brand != "" {
		opts.brand = profile.Brand
	}
	if !flags.Changed("log") && len(profile.Logs) > 0 {
		opts.logs = profile.Logs
	}
	if !flags.Changed("page-size") && profile.PageSize > 0 {
		opts.pageSize = profile.PageSize
	}
	if !flags.Changed("concurrency") && profile.Concurrency > 0 {
		opts.concurrency = profile.Concurrency
	}
	if !flags.Changed("tail") && profile.Tail > 0 {
		opts.tail = profile.Tail
	}
}

func printMatches(w io.Writer, brand string, matches []model.Match) {
	for _, m := range matches {
		fmt.Fprintf(w, "  %s  index %d  %s\n",
			color.New(color.FgRed).Sprint(m.Domain), m.EntryIndex, m.LogURL)
	}

	if len(matches) == 0 {
		fmt.Fprintf(w, "%s no certificates matching %q\n",
			color.New(color.FgGreen).Sprint("✓"), brand)
		return
	}
	fmt.Fprintf(w, "%s %d certificates matching %q\n",
		color.New(color.FgRed).Sprint("✗"), len(matches), brand)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
