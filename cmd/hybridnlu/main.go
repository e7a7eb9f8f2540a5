// Package main provides the command line interface of the hybrid NLU pipeline.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/siherrmann/hybridnlu"
	"github.com/siherrmann/hybridnlu/core/dispatch"
	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
	"github.com/spf13/cobra"
)

var (
	// Version information (set at build time)
	version = "dev"

	titleStyle = color.New(color.FgMagenta, color.Bold)
	okStyle    = color.New(color.FgGreen)
	warnStyle  = color.New(color.FgYellow)
	dimStyle   = color.New(color.FgHiBlack)
)

// cliOptions are the global flags.
type cliOptions struct {
	verbose    bool
	jsonOutput bool
	logLevel   string
}

// newNLU is replaced in tests.
var newNLU = func(logger *slog.Logger) (*hybridnlu.HybridNLU, error) {
	return hybridnlu.NewHybridNLUFromEnv(hybridnlu.WithLogger(logger))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "hybridnlu",
		Short: "Hybrid NLU for the contacts and notes assistant",
		Long: `Maps free text to an intent, entities and a validation block.

Models are read from HYBRIDNLU_INTENT_MODEL_DIR and HYBRIDNLU_NER_MODEL_DIR.
Without models the keyword classifier and the regex extractors are used.`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every pipeline stage")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newParseCmd(opts),
		newBatchCmd(opts),
		newHistoryCmd(opts),
		newCapabilitiesCmd(opts),
	)

	return rootCmd
}

func newParseCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [text...]",
		Short: "Parse one utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nlu, err := openNLU(opts)
			if err != nil {
				return err
			}
			defer func() { _ = nlu.Shutdown() }()

			result, err := nlu.Process(cmd.Context(), strings.Join(args, " "), opts.verbose)
			if err != nil {
				return err
			}

			return printResult(cmd.OutOrStdout(), result, opts.jsonOutput)
		},
	}
}

func newBatchCmd(opts *cliOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Parse one utterance per line from a file or stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file) // #nosec G304 -- user supplied input file
				if err != nil {
					return helper.NewError("open input", err)
				}
				defer f.Close()
				in = f
			}

			texts, err := readLines(in)
			if err != nil {
				return err
			}

			nlu, err := openNLU(opts)
			if err != nil {
				return err
			}
			defer func() { _ = nlu.Shutdown() }()

			results, err := nlu.ProcessBatch(cmd.Context(), texts, opts.verbose)
			if err != nil {
				return err
			}

			for _, result := range results {
				if err := printResult(cmd.OutOrStdout(), result, opts.jsonOutput); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "input file, stdin if empty")

	return cmd
}

func newHistoryCmd(opts *cliOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the newest logged utterances",
		Long:  "Reads the utterance log from the Postgres database configured by the HYBRIDNLU_DB_* variables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbConfig, err := helper.NewDatabaseConfiguration()
			if err != nil {
				return err
			}

			nlu, err := openNLU(opts)
			if err != nil {
				return err
			}
			defer func() { _ = nlu.Shutdown() }()

			if err := nlu.UseUtteranceLog(dbConfig, nil, hybridnlu.EmbeddingDim); err != nil {
				return err
			}

			history, err := nlu.History(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, history)
			}
			for _, u := range history {
				fmt.Fprintf(out, "%s  %-20s %.2f  %s\n", dimStyle.Sprint(u.CreatedAt.Format("2006-01-02 15:04:05")), u.Intent, u.Confidence, u.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of utterances")

	return cmd
}

func newCapabilitiesCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "Show which models and parsing libraries are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			nlu, err := openNLU(opts)
			if err != nil {
				return err
			}
			defer func() { _ = nlu.Shutdown() }()

			available := nlu.Library.Capabilities().Available()
			available["intent_model"] = nlu.Classifier.HasModel()
			available["ner_model"] = nlu.NER.HasModel()

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, available)
			}

			names := make([]string, 0, len(available))
			for name := range available {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				status := warnStyle.Sprint("missing")
				if available[name] {
					status = okStyle.Sprint("available")
				}
				fmt.Fprintf(out, "%-16s %s\n", name, status)
			}
			return nil
		},
	}
}

func openNLU(opts *cliOptions) (*hybridnlu.HybridNLU, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return nil, helper.NewError("parse log level", err)
	}
	if opts.verbose && level > slog.LevelInfo {
		level = slog.LevelInfo
	}
	return newNLU(helper.NewLogger(os.Stderr, level))
}

func readLines(in io.Reader) ([]string, error) {
	var texts []string
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			texts = append(texts, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, helper.NewError("read input", err)
	}
	return texts, nil
}

func printResult(out io.Writer, result *model.NLUResult, jsonOutput bool) error {
	command, err := dispatch.GetCommandArgs(result)
	if err != nil {
		return err
	}

	if jsonOutput {
		return writeJSON(out, struct {
			*model.NLUResult
			Command string   `json:"command"`
			Args    []string `json:"args"`
		}{result, command.Name, command.Args})
	}

	fmt.Fprintf(out, "%s %s %s\n", titleStyle.Sprint(result.Intent), dimStyle.Sprintf("(%.2f, %s)", result.Confidence, result.Raw.Source), commandLine(result, command))

	keys := make([]string, 0, len(result.Entities))
	for k := range result.Entities {
		if !model.IsReservedKey(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-14s %s\n", k, result.Entities[k])
	}

	if !result.Validation.Valid {
		fmt.Fprintf(out, "  %s %s\n", warnStyle.Sprint("missing:"), strings.Join(result.Validation.Missing, ", "))
	}
	for _, e := range result.Validation.Errors {
		fmt.Fprintf(out, "  %s %s\n", warnStyle.Sprint("error:"), e)
	}
	return nil
}

func commandLine(result *model.NLUResult, command dispatch.Command) string {
	if command.IsPipeline() {
		return "\n" + dispatch.Summary(dispatch.BuildCommandPipeline(result))
	}
	return "-> " + strings.TrimSpace(command.Name+" "+strings.Join(command.Args, " "))
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
