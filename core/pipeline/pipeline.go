package pipeline

import (
	"log/slog"
	"sync/atomic"

	"github.com/siherrmann/hybridnlu/core/validate"
	"github.com/siherrmann/hybridnlu/helper"
	"github.com/siherrmann/hybridnlu/model"
)

const workerCount = 2

// Pipeline sequences intent classification, entity extraction, validation,
// fallbacks and post-processing for one utterance at a time.
// Concurrent Process calls share nothing but the injected functions.
type Pipeline struct {
	IntentPredictor IntentPredictFunc
	NERExtractor    NERExtractFunc
	SpanExtractor   SpanExtractFunc   // Optional
	TemplateParser  TemplateParseFunc // Optional
	PostProcessor   PostProcessFunc   // Optional

	config    model.NLUConfig
	validator *validate.EntityValidator
	merger    *validate.Merger
	pool      *WorkerPool
	metrics   *Metrics
	closed    atomic.Bool
	log       *slog.Logger
}

// NewPipeline creates a pipeline. The two-worker pool for the parallel
// intent and NER stage is only started when config.Parallel is set.
func NewPipeline(intentPredictor IntentPredictFunc, nerExtractor NERExtractFunc, spanExtractor SpanExtractFunc, config model.NLUConfig, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = helper.DiscardLogger()
	}

	p := &Pipeline{
		IntentPredictor: intentPredictor,
		NERExtractor:    nerExtractor,
		SpanExtractor:   spanExtractor,
		config:          config,
		validator:       validate.NewEntityValidator(config.Requirements),
		merger:          validate.NewMerger(config, logger),
		metrics:         NewMetrics(),
		log:             logger,
	}
	if config.Parallel {
		p.pool = NewWorkerPool(workerCount)
	}

	return p
}

// SetTemplateParser sets the last-resort template parser
func (p *Pipeline) SetTemplateParser(parser TemplateParseFunc) {
	p.TemplateParser = parser
}

// SetPostProcessor sets the entity normalizer
func (p *Pipeline) SetPostProcessor(postProcessor PostProcessFunc) {
	p.PostProcessor = postProcessor
}

// Metrics returns the metrics of the pipeline.
func (p *Pipeline) Metrics() *Metrics {
	return p.metrics
}

// Config returns the configuration of the pipeline.
func (p *Pipeline) Config() model.NLUConfig {
	return p.config
}

// Shutdown drains the worker pool. Process fails with ErrPipelineClosed afterwards.
func (p *Pipeline) Shutdown() {
	p.closed.Store(true)
	if p.pool != nil {
		p.pool.Shutdown()
	}
}
