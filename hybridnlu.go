package hybridnlu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/siherrmann/hybridnlu/core/dispatch"
	"github.com/siherrmann/hybridnlu/core/extract"
	"github.com/siherrmann/hybridnlu/core/intent"
	"github.com/siherrmann/hybridnlu/core/ner"
	"github.com/siherrmann/hybridnlu/core/pipeline"
	"github.com/siherrmann/hybridnlu/core/postprocess"
	"github.com/siherrmann/hybridnlu/core/template"
	"github.com/siherrmann/hybridnlu/database"
	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
	loadSql "github.com/siherrmann/hybridnlu/sql"
	"golang.org/x/sync/errgroup"
)

// EmbeddingDim is the dimension of the default utterance embedder.
const EmbeddingDim = 384

const batchLimit = 4

// HybridNLU bundles the pipeline with its components and the optional utterance log.
type HybridNLU struct {
	Pipeline   *pipeline.Pipeline
	Classifier *intent.ModelClassifier
	NER        *ner.ModelExtractor
	Spans      *extract.SpanExtractor
	Library    *extract.LibraryExtractor
	Utterances *database.UtterancesDBHandler // Optional
	Embedder   pipeline.EmbedFunc            // Optional

	db     *helper.Database
	config model.NLUConfig
	// Logging
	log *slog.Logger
}

// Option configures a HybridNLU.
type Option func(*options)

type options struct {
	logger        *slog.Logger
	addressParser extract.AddressParser
	addressTagger extract.AddressParser
	capabilities  *extract.Capabilities
}

// WithLogger sets the logger of every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithAddressParser plugs in a postal address parser and an optional tagger fallback.
func WithAddressParser(parser extract.AddressParser, tagger extract.AddressParser) Option {
	return func(o *options) {
		o.addressParser = parser
		o.addressTagger = tagger
	}
}

// WithCapabilities skips library detection.
func WithCapabilities(c extract.Capabilities) Option {
	return func(o *options) {
		o.capabilities = &c
	}
}

// NewHybridNLU creates the pipeline from config.
// Missing or broken models are not an error: the classifier degrades to keyword
// scoring and the NER model to regex extraction, with a warning.
func NewHybridNLU(config model.NLUConfig, opts ...Option) (*HybridNLU, error) {
	if config.DefaultIntent == "" {
		return nil, helper.NewError("config validation", fmt.Errorf("default intent is empty"))
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = helper.NewLogger(os.Stdout, slog.LevelInfo)
	}

	classifier := intent.NewModelClassifier(nil, config, logger)
	if config.IntentModelDir != "" {
		c, err := intent.NewHugotClassifier(config.IntentModelDir, config, logger)
		if err != nil {
			logger.Warn("Intent model unavailable, using keyword classifier", slog.String("dir", config.IntentModelDir), slog.Any("error", err))
		} else {
			classifier = c
		}
	}

	nerExtractor := ner.NewModelExtractor(nil, logger)
	if config.NERModelDir != "" {
		e, err := ner.NewHugotExtractor(config.NERModelDir, logger)
		if err != nil {
			logger.Warn("NER model unavailable, using regex extraction", slog.String("dir", config.NERModelDir), slog.Any("error", err))
		} else {
			nerExtractor = e
		}
	}

	libraryOpts := []extract.LibraryOption{
		extract.WithRegion(config.DefaultRegion),
		extract.WithLogger(logger),
	}
	if o.addressParser != nil {
		libraryOpts = append(libraryOpts, extract.WithAddressParser(o.addressParser))
	}
	if o.addressTagger != nil {
		libraryOpts = append(libraryOpts, extract.WithAddressTagger(o.addressTagger))
	}
	if o.capabilities != nil {
		libraryOpts = append(libraryOpts, extract.WithCapabilities(*o.capabilities))
	}
	library := extract.NewLibraryExtractor(libraryOpts...)
	spans := extract.NewSpanExtractor(logger, library, extract.NewRegexExtractor(), extract.NewHeuristicExtractor())

	p := pipeline.NewPipeline(classifier.Predict, nerExtractor.Extract, spans.Extract, config, logger)
	p.SetTemplateParser(template.NewParser(config).Parse)
	p.SetPostProcessor(postprocess.NewRules(config.DefaultRegion).Apply)

	logger.Info(
		"Initialized hybrid NLU",
		slog.Bool("intent_model", classifier.HasModel()),
		slog.Bool("ner_model", nerExtractor.HasModel()),
		slog.Any("libraries", library.Capabilities().Available()),
	)

	return &HybridNLU{
		Pipeline:   p,
		Classifier: classifier,
		NER:        nerExtractor,
		Spans:      spans,
		Library:    library,
		config:     config,
		log:        logger,
	}, nil
}

// NewHybridNLUFromEnv reads the HYBRIDNLU_* environment and the optional YAML
// config file it names, then creates the pipeline.
func NewHybridNLUFromEnv(opts ...Option) (*HybridNLU, error) {
	envConfig, err := helper.NewNLUConfigurationFromEnv()
	if err != nil {
		return nil, helper.NewError("read environment", err)
	}

	config := model.DefaultNLUConfig()
	if envConfig.ConfigFile != "" {
		config, err = model.LoadNLUConfig(envConfig.ConfigFile)
		if err != nil {
			return nil, helper.NewError("load config file", err)
		}
	}
	if config.IntentModelDir == "" {
		config.IntentModelDir = envConfig.IntentModelDir
	}
	if config.NERModelDir == "" {
		config.NERModelDir = envConfig.NERModelDir
	}
	config.DefaultRegion = envConfig.DefaultRegion
	config.Parallel = envConfig.Parallel

	return NewHybridNLU(config, opts...)
}

// UseUtteranceLog connects to Postgres and stores every processed utterance.
// embedder may be nil, the log then has no similarity search.
func (h *HybridNLU) UseUtteranceLog(dbConfig *helper.DatabaseConfiguration, embedder pipeline.EmbedFunc, embeddingDim int) error {
	db := helper.NewDatabase("hybridnlu", dbConfig, h.log)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return helper.NewError("initialize database extensions", err)
	}

	utterances, err := database.NewUtterancesDBHandler(db, embeddingDim, false)
	if err != nil {
		return helper.NewError("create utterances handler", err)
	}

	h.db = db
	h.Utterances = utterances
	h.Embedder = embedder
	return nil
}

// UseDefaultUtteranceLog is UseUtteranceLog with the all-MiniLM-L6-v2 embedder.
func (h *HybridNLU) UseDefaultUtteranceLog(dbConfig *helper.DatabaseConfiguration) error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}
	return h.UseUtteranceLog(dbConfig, embedder, EmbeddingDim)
}

// Config returns the configuration of the pipeline.
func (h *HybridNLU) Config() model.NLUConfig {
	return h.config
}

// Process runs the pipeline for text and logs the utterance if a log is configured.
// A failing log write is reported as a warning and never fails the result.
func (h *HybridNLU) Process(ctx context.Context, text string, verbose bool) (*model.NLUResult, error) {
	result, err := h.Pipeline.Process(ctx, text, verbose)
	if err != nil {
		return nil, err
	}

	if h.Utterances != nil {
		h.logUtterance(text, result, verbose)
	}

	return result, nil
}

// ProcessBatch processes texts concurrently and returns the results in input order.
func (h *HybridNLU) ProcessBatch(ctx context.Context, texts []string, verbose bool) ([]*model.NLUResult, error) {
	results := make([]*model.NLUResult, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchLimit)
	for i, text := range texts {
		g.Go(func() error {
			result, err := h.Process(ctx, text, verbose)
			if err != nil {
				return helper.NewError(fmt.Sprintf("process utterance %d", i), err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// GetCommandArgs maps a result to the command to run.
func (h *HybridNLU) GetCommandArgs(result *model.NLUResult) (dispatch.Command, error) {
	return dispatch.GetCommandArgs(result)
}

// Dispatch runs the command of result with handler, expanding pipeline commands.
func (h *HybridNLU) Dispatch(handler dispatch.CommandHandler, result *model.NLUResult) ([]string, error) {
	command, err := dispatch.GetCommandArgs(result)
	if err != nil {
		return nil, err
	}
	if command.IsPipeline() {
		h.log.Debug("Running command pipeline", slog.String("summary", dispatch.Summary(dispatch.BuildCommandPipeline(result))))
	}
	return dispatch.Execute(handler, command)
}

// History returns the newest logged utterances.
func (h *HybridNLU) History(limit int) ([]*model.Utterance, error) {
	if h.Utterances == nil {
		return nil, helper.NewError("history", fmt.Errorf("utterance log not set, use UseUtteranceLog() first"))
	}
	return h.Utterances.SelectRecentUtterances(limit)
}

// SimilarUtterances returns logged utterances similar to text.
func (h *HybridNLU) SimilarUtterances(text string, limit int, threshold float64) ([]*model.Utterance, error) {
	if h.Utterances == nil || h.Embedder == nil {
		return nil, helper.NewError("similar utterances", fmt.Errorf("utterance log with embedder not set"))
	}

	embedding, err := h.Embedder(text)
	if err != nil {
		return nil, helper.NewError("embed text", err)
	}

	return h.Utterances.SelectUtterancesBySimilarity(embedding, limit, threshold)
}

// Shutdown stops the pipeline and releases the models and the database connection.
func (h *HybridNLU) Shutdown() error {
	h.Pipeline.Shutdown()

	var errs []error
	if err := h.Classifier.Close(); err != nil {
		errs = append(errs, helper.NewError("close intent model", err))
	}
	if err := h.NER.Close(); err != nil {
		errs = append(errs, helper.NewError("close ner model", err))
	}
	if h.db != nil && h.db.Instance != nil {
		if err := h.db.Instance.Close(); err != nil {
			errs = append(errs, helper.NewError("close database", err))
		}
	}

	return errors.Join(errs...)
}

func (h *HybridNLU) logUtterance(text string, result *model.NLUResult, verbose bool) {
	utterance := model.NewUtterance(text, result, model.Metadata{
		"verbose":        verbose,
		"low_confidence": result.Confidence < h.config.Thresholds.LowConfidence,
	})
	if h.Embedder != nil {
		embedding, err := h.Embedder(text)
		if err != nil {
			h.log.Warn("Failed to embed utterance", slog.Any("error", err))
		} else {
			utterance.Embedding = embedding
		}
	}

	if err := h.Utterances.InsertUtterance(utterance); err != nil {
		h.log.Warn("Failed to log utterance", slog.Any("error", err))
		return
	}
	h.log.Debug("Logged utterance", slog.String("rid", utterance.RID.String()))
}
