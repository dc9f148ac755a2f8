// Package cmd implements the ts2ass command line.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/ristryder/ts2ass"
	"github.com/ristryder/ts2ass/interfaces"
	"github.com/ristryder/ts2ass/internal/config"
	"github.com/ristryder/ts2ass/internal/observability"
	"github.com/ristryder/ts2ass/subtitles"
	"github.com/ristryder/ts2ass/translate"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	outputPath string
	progress   bool
)

var rootCmd = &cobra.Command{
	Use:   "ts2ass <input> [pid]",
	Short: "Extract ARIB closed captions from an MPEG transport stream",
	Long: `ts2ass reads a recorded ISDB (ARIB STD-B24) transport stream, decodes the
closed captions carried on one elementary stream and writes them as an ASS or
SubRip subtitle file, optionally machine translated.

When no PID is given the first caption stream announced in the program map
table is used. The output defaults to <input>_ENG.ass next to the input.`,
	Args:          validateArgs,
	RunE:          runExtract,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and prints any error to stderr.
func Execute(ctx context.Context) error {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		return err
	}

	return nil
}

func init() {
	persistent := rootCmd.PersistentFlags()
	persistent.StringVar(&cfgFile, "config", "", "config file (default is ./.ts2ass.yaml or $HOME/.ts2ass.yaml)")
	persistent.String("log-level", "info", "log level (debug, info, warn, error)")
	persistent.String("log-format", "text", "log format (text, json)")

	mustBindPFlag("logging.level", persistent.Lookup("log-level"))
	mustBindPFlag("logging.format", persistent.Lookup("log-format"))

	flags := rootCmd.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "output file (default is <input><suffix><extension>)")
	flags.BoolVar(&progress, "progress", false, "report progress on stderr")
	flags.StringP("format", "f", "ass", "subtitle format (ass, srt)")
	flags.String("suffix", "_ENG", "suffix appended to the input name for the default output")
	flags.String("title", "", "title written to the ASS header (default is the input file name)")
	flags.Bool("emit-positions", false, "keep caption positions and colors as ASS override tags")
	flags.Bool("resync", false, "skip damaged packets instead of stopping")
	flags.String("translate", config.ProviderNone, "translation provider (none, microsoft)")
	flags.String("from", "ja", "source language")
	flags.String("to", "en", "target language")
	flags.Int("workers", 4, "concurrent translation requests")
	flags.String("cache", "", "translation cache database")

	mustBindPFlag("output.format", flags.Lookup("format"))
	mustBindPFlag("output.suffix", flags.Lookup("suffix"))
	mustBindPFlag("output.title", flags.Lookup("title"))
	mustBindPFlag("output.emit_positions", flags.Lookup("emit-positions"))
	mustBindPFlag("input.resync", flags.Lookup("resync"))
	mustBindPFlag("translate.provider", flags.Lookup("translate"))
	mustBindPFlag("translate.from", flags.Lookup("from"))
	mustBindPFlag("translate.to", flags.Lookup("to"))
	mustBindPFlag("translate.workers", flags.Lookup("workers"))
	mustBindPFlag("translate.cache_path", flags.Lookup("cache"))
}

// mustBindPFlag binds a viper key to a cobra flag and panics if binding fails.
func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %q to key %q: %v", flag.Name, key, err))
	}
}

func validateArgs(_ *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("please provide an input transport stream file")
	}
	if len(args) > 2 {
		return errors.Newf("expected <input> [pid], got %d arguments", len(args))
	}

	return nil
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, cfgErr := config.Load(viper.GetViper(), cfgFile)
	if cfgErr != nil {
		return nil, nil, cfgErr
	}

	logger := observability.NewLogger(cfg.Logging)
	logger = observability.WithRunID(logger, observability.NewRunID())
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func parsePID(value string) (uint16, error) {
	pid, parseErr := strconv.ParseUint(value, 0, 13)
	if parseErr != nil {
		return 0, errors.Wrapf(parseErr, "invalid PID %q", value)
	}

	return uint16(pid), nil
}

func defaultOutputPath(inputPath string, suffix string, format subtitles.Format) string {
	return inputPath + suffix + format.Extension()
}

func newTranslator(cfg config.TranslateConfig, logger *slog.Logger) (interfaces.Translator, func() error, error) {
	noClose := func() error { return nil }

	if cfg.Provider == config.ProviderNone {
		return translate.Identity{}, noClose, nil
	}

	microsoft, microsoftErr := translate.NewMicrosoft(translate.MicrosoftConfig{
		APIKey:        cfg.APIKey,
		Endpoint:      cfg.Endpoint,
		From:          cfg.From,
		Logger:        logger,
		Region:        cfg.Region,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		Timeout:       cfg.Timeout,
		To:            cfg.To,
	})
	if microsoftErr != nil {
		return nil, nil, errors.Wrap(microsoftErr, "failed to create translator")
	}

	if cfg.CachePath == "" {
		return microsoft, noClose, nil
	}

	cache, cacheErr := translate.OpenCache(cfg.CachePath, cfg.From, cfg.To, microsoft, logger)
	if cacheErr != nil {
		return nil, nil, cacheErr
	}

	return cache, func() error {
		hits, misses := cache.Stats()
		logger.Info("translation cache", slog.Int64("hits", hits), slog.Int64("misses", misses))

		return cache.Close()
	}, nil
}

func reportProgress(position int64, total int64) {
	if total <= 0 {
		return
	}

	fmt.Fprintf(os.Stderr, "\r%5.1f%%", float64(position)*100/float64(total))
	if position >= total {
		fmt.Fprintln(os.Stderr)
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, statErr := os.Stat(inputPath); statErr != nil {
		return errors.Wrap(statErr, "please provide an input transport stream file")
	}

	cfg, logger, cfgErr := loadConfig()
	if cfgErr != nil {
		return cfgErr
	}

	ctx := cmd.Context()

	transportStreamFile, openErr := ts2ass.NewTransportStreamFile(inputPath,
		ts2ass.TransportStreamFileOptLogger(logger),
		ts2ass.TransportStreamFileOptPositionedLines(cfg.Output.EmitPositions),
		ts2ass.TransportStreamFileOptResync(cfg.Input.Resync),
	)
	if openErr != nil {
		return openErr
	}

	defer transportStreamFile.Close()

	var pid uint16
	if len(args) == 2 {
		parsedPid, pidErr := parsePID(args[1])
		if pidErr != nil {
			return pidErr
		}

		pid = parsedPid
	} else {
		probedPid, probeErr := transportStreamFile.CaptionPID(ctx)
		if probeErr != nil {
			return errors.Wrap(probeErr, "failed to find a caption stream, pass the PID explicitly")
		}

		pid = probedPid
		logger.Info("using caption stream", slog.Int("pid", int(pid)))
	}

	format, formatErr := subtitles.ParseFormat(cfg.Output.Format)
	if formatErr != nil {
		return formatErr
	}

	target := outputPath
	if target == "" {
		target = defaultOutputPath(inputPath, cfg.Output.Suffix, format)
	}

	title := cfg.Output.Title
	if title == "" {
		title = filepath.Base(inputPath)
	}

	translator, closeTranslator, translatorErr := newTranslator(cfg.Translate, observability.WithComponent(logger, "translate"))
	if translatorErr != nil {
		return translatorErr
	}

	defer func() {
		if closeErr := closeTranslator(); closeErr != nil {
			observability.WithError(logger, closeErr).Warn("failed to close translator")
		}
	}()

	outputFile, createErr := os.Create(target)
	if createErr != nil {
		return errors.Wrapf(createErr, "failed to create %s", target)
	}

	sink, sinkErr := subtitles.NewSink(format, outputFile, subtitles.SinkOptions{
		EmitPositions: cfg.Output.EmitPositions,
		Height:        cfg.Output.Height,
		Title:         title,
		Width:         cfg.Output.Width,
	})
	if sinkErr != nil {
		_ = outputFile.Close()

		return sinkErr
	}

	stage := translate.NewStage(translator, sink,
		translate.StageOptLogger(observability.WithComponent(logger, "stage")),
		translate.StageOptWorkers(cfg.Translate.Workers),
	)

	var progressCallback func(int64, int64)
	if progress {
		progressCallback = reportProgress
	}

	stats, captionsErr := transportStreamFile.Captions(ctx, pid, stage, progressCallback)
	closeErr := stage.Close()

	if captionsErr != nil {
		return errors.CombineErrors(captionsErr, closeErr)
	}
	if closeErr != nil {
		return errors.Wrapf(closeErr, "failed to write %s", target)
	}

	logger.Info("subtitles written",
		slog.String("output", target),
		slog.Int("cues", stats.Cues),
		slog.Int64("translated", stage.Translated()),
		slog.Int64("translation_failures", stage.Failures()),
	)

	return nil
}
