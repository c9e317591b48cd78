package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/bow"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/service"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/internal/textsource"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexical-similarity/pkg/logger"
)

type commandContext struct {
	configFlag   string
	logLevelFlag string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		c.config, c.configErr = config.Load(strings.TrimSpace(c.configFlag))
	})
	return c.config, c.configErr
}

// newService builds an in-process service without store, cache or events.
// The extractor flags replace the configured defaults, so reference files and
// input are extracted alike.
func (c *commandContext) newService(cmd *cobra.Command, flags *extractorFlags, corpusDir string) (*service.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := service.OptionsFromConfig(cfg)
	opts.Defaults = flags.params(cmd.Flags(), opts.Defaults)
	if corpusDir != "" {
		opts.CorpusDir = corpusDir
	}
	loader := textsource.New(cfg.Corpus.MaxFileBytes)
	return service.New(bow.NewExtractor(loader), opts, service.Deps{}), nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "lexsim",
		Short:         "Bag-of-words extraction and lexical similarity scoring",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger.SetupWriter(cmd.ErrOrStderr(), ctx.logLevelFlag, "text")
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&ctx.logLevelFlag, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newBowCommand(ctx))
	rootCmd.AddCommand(newScoreCommand(ctx))

	return rootCmd
}

// extractorFlags overrides the configured extractor defaults. Only flags set
// on the command line are applied.
type extractorFlags struct {
	file           bool
	mode           string
	bowSize        int
	wordSize       int
	skipSpaces     bool
	nonUniqueWords bool
	ngramMin       int
	ngramMax       int
	jsonOutput     bool
}

func (f *extractorFlags) register(flags *pflag.FlagSet) {
	flags.BoolVarP(&f.file, "file", "f", false, "Treat the argument as a file path")
	flags.StringVarP(&f.mode, "mode", "m", "", "Extractor: fixed or ngram")
	flags.IntVarP(&f.bowSize, "bow-size", "n", 0, "Maximum number of entries in a bag")
	flags.IntVarP(&f.wordSize, "word-size", "w", 0, "Window length of the fixed extractor")
	flags.BoolVar(&f.skipSpaces, "skip-spaces", true, "Discard fixed windows containing whitespace")
	flags.BoolVar(&f.nonUniqueWords, "non-unique", true, "Keep only words occurring at least twice")
	flags.IntVar(&f.ngramMin, "ngram-min", 0, "Shortest n-gram in tokens")
	flags.IntVar(&f.ngramMax, "ngram-max", 0, "Longest n-gram in tokens")
	flags.BoolVar(&f.jsonOutput, "json", false, "Write JSON instead of a table")
}

func (f *extractorFlags) params(flags *pflag.FlagSet, defaults bow.Params) bow.Params {
	p := defaults
	if flags.Changed("mode") {
		p.Mode = bow.Mode(f.mode)
	}
	if flags.Changed("bow-size") {
		p.BowSize = f.bowSize
	}
	if flags.Changed("word-size") {
		p.WordSize = f.wordSize
	}
	if flags.Changed("skip-spaces") {
		p.SkipSpaces = f.skipSpaces
	}
	if flags.Changed("non-unique") {
		p.NonUniqueWords = f.nonUniqueWords
	}
	if flags.Changed("ngram-min") {
		p.NGramMin = f.ngramMin
	}
	if flags.Changed("ngram-max") {
		p.NGramMax = f.ngramMax
	}
	return p
}

func (f *extractorFlags) source() bow.Source {
	if f.file {
		return bow.SourceFile
	}
	return bow.SourceString
}

// reportDiagnostic prints a diagnostic to stderr. Diagnostics do not fail
// the command; anything else does.
func reportDiagnostic(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if !apperrors.IsDiagnostic(err) {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "diagnostic (%s): %v\n", apperrors.Kind(err), err)
	return nil
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
