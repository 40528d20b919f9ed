package cli

import (
	"errors"
	"fmt"

	"github.com/pfrederiksen/activity-intake/internal/config"
	"github.com/pfrederiksen/activity-intake/internal/feedback"
	"github.com/pfrederiksen/activity-intake/internal/llm"
	"github.com/pfrederiksen/activity-intake/internal/logger"
	"github.com/pfrederiksen/activity-intake/internal/pipeline"
	"github.com/pfrederiksen/activity-intake/internal/source"
	"github.com/pfrederiksen/activity-intake/internal/storage"
	"github.com/pfrederiksen/activity-intake/internal/validate"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs: config, logger and corpus
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	corpus *storage.Corpus
	format feedback.Format
	opts   feedback.Options
}

// overrides are subcommand flags that map onto config fields
type overrides struct {
	llm         string
	checkLinks  bool
	idStrategy  string
	parallelism int
}

// newApp loads the config file and environment, then applies flags the
// user set explicitly.
func newApp(cmd *cobra.Command, ov overrides) (*app, error) {
	format, err := feedback.ParseFormat(flagFormat)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if ov.llm != "" {
		provider, model, err := llm.ParseLLMFlag(ov.llm)
		if err != nil {
			return nil, err
		}
		cfg.LLM.Provider = provider
		if model != "" {
			cfg.LLM.Model = model
		}
	}
	if ov.checkLinks {
		cfg.Validation.CheckLinks = true
	}
	if ov.idStrategy != "" {
		cfg.Builder.IDStrategy = ov.idStrategy
	}
	if ov.parallelism > 0 {
		cfg.Parallelism = ov.parallelism
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel), cmd.ErrOrStderr())
	logger.SetDefault(log)

	store, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}
	corpus, err := store.LoadCorpus()
	if err != nil {
		return nil, err
	}
	log.Debug("corpus loaded", logger.Fields{
		"data_dir": store.DataDir(),
		"records":  corpus.Size(),
		"ids":      corpus.IDCount(),
		"tags":     len(corpus.Tags()),
	})

	return &app{
		cfg:    cfg,
		log:    log,
		corpus: corpus,
		format: format,
		opts:   feedback.Options{Color: feedback.ColorEnabled(cmd.OutOrStdout(), flagNoColor)},
	}, nil
}

func (a *app) validator() *validate.Validator {
	opts := a.cfg.ValidateOptions()
	opts.Logger = a.log
	return validate.New(a.corpus, opts)
}

// parser returns the LLM field parser. Missing credentials disable the LLM
// instead of failing the run.
func (a *app) parser() (*llm.Parser, error) {
	provider, err := llm.NewProvider(a.cfg.LLM)
	if err != nil {
		if !errors.Is(err, llm.ErrNoProvider) {
			return nil, err
		}
		if a.cfg.LLM.Provider != llm.ProviderNone {
			a.log.Warn("llm unavailable, using rules only", logger.Fields{"reason": err.Error()})
		}
		provider = nil
	}
	return llm.NewParser(provider, a.log), nil
}

func (a *app) pipeline() (*pipeline.Pipeline, error) {
	parser, err := a.parser()
	if err != nil {
		return nil, err
	}
	ext := source.New(a.cfg.SourceOptions(), a.log)
	return pipeline.New(ext, parser, a.cfg.NewBuilder(), a.validator(), a.log), nil
}
