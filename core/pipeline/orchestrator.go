package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/siherrmann/hybridnlu/core/validate"
	"github.com/siherrmann/hybridnlu/model"
)

// run holds the state of one utterance while it moves through the stages.
type run struct {
	ctx   context.Context
	text  string
	level slog.Level

	stage      Stage
	intent     string
	confidence float64

	nerEntities    model.EntityMap
	nerConfidences model.Confidences
	entities       model.EntityMap
	confidences    model.Confidences
	spans          []model.Entity
	source         model.Source
	report         validate.Report
}

// Process runs the pipeline for text. It fails only when ctx is done or the
// pipeline was shut down; bad input always yields a best-effort result.
// verbose logs every stage at info level and never changes the result.
func (p *Pipeline) Process(ctx context.Context, text string, verbose bool) (*model.NLUResult, error) {
	if p.closed.Load() {
		return nil, ErrPipelineClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r := &run{
		ctx:    ctx,
		text:   text,
		level:  slog.LevelDebug,
		stage:  StageStart,
		source: model.SourceNER,
	}
	if verbose {
		r.level = slog.LevelInfo
	}
	p.trace(r, "Processing utterance", slog.String("text", text))

	if err := p.intentAndNER(r); err != nil {
		return nil, err
	}

	p.stage(r, StageValidate, func() {
		r.report = p.validator.Validate(r.entities, r.intent)
		p.trace(r, "Validated NER entities", slog.Bool("needs_fallback", r.report.NeedsFallback), slog.String("reason", r.report.Reason))
	})

	if r.report.NeedsFallback && p.SpanExtractor != nil {
		p.stage(r, StageRegexFallback, func() { p.regexFallback(r, verbose) })
	}

	p.stage(r, StageRevalidate, func() {
		r.report = p.validator.Validate(r.entities, r.intent)
		p.trace(r, "Revalidated entities", slog.Bool("needs_fallback", r.report.NeedsFallback), slog.String("reason", r.report.Reason))
	})

	if r.report.NeedsFallback && r.confidence < p.config.Thresholds.IntentConfidence && p.TemplateParser != nil {
		p.stage(r, StageTemplateFallback, func() { p.templateFallback(r) })
	}

	var validation model.Validation
	p.stage(r, StagePostProcess, func() {
		var errs []string
		if p.PostProcessor != nil {
			r.entities, errs = p.PostProcessor(r.entities)
		}
		validation = validate.Final(r.entities, r.intent, p.config.RequiredEntities, p.config.OptionalEntities, errs)
		if !validation.Valid {
			p.trace(r, "Missing required entities", slog.Any("missing", validation.Missing))
		}
		if len(validation.Errors) > 0 {
			p.trace(r, "Validation errors", slog.Any("errors", validation.Errors))
		}
	})

	r.stage = StageDone
	p.metrics.Processed.WithLabelValues(string(r.source)).Inc()
	if r.confidence < p.config.Thresholds.LowConfidence {
		p.metrics.LowConfidence.Inc()
	}

	result := &model.NLUResult{
		Intent:     r.intent,
		Confidence: r.confidence,
		Entities:   r.entities,
		Validation: validation,
		Raw: model.RawResult{
			Source:            r.source,
			EntityConfidences: r.confidences,
			Spans:             r.spans,
		},
	}
	p.trace(r, "Processed utterance", slog.String("intent", result.Intent), slog.Float64("confidence", result.Confidence), slog.String("source", string(result.Raw.Source)))

	return result, nil
}

// intentAndNER runs the intent classifier and the NER model, in parallel when the pool is running.
func (p *Pipeline) intentAndNER(r *run) error {
	start := time.Now()
	r.stage = StageIntentNER

	var intent string
	var confidence float64
	var entities model.EntityMap
	var confidences model.Confidences

	predict := func() { intent, confidence = p.predictIntent(r.text) }
	extract := func() { entities, confidences = p.extractNER(r.text) }

	if p.pool != nil {
		intentDone, err := p.pool.Submit(r.ctx, predict)
		if err != nil {
			return err
		}
		nerDone, err := p.pool.Submit(r.ctx, extract)
		if err != nil {
			return err
		}
		for _, done := range []<-chan struct{}{intentDone, nerDone} {
			select {
			case <-done:
			case <-r.ctx.Done():
				return r.ctx.Err()
			}
		}
	} else {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		predict()
		extract()
	}

	r.intent, r.confidence = intent, confidence
	r.nerEntities = entities.Compact()
	r.nerConfidences = confidences.Clone()
	r.entities = r.nerEntities.Clone()
	r.confidences = r.nerConfidences.Clone()

	p.metrics.observeStage(StageIntentNER, start)
	p.trace(r, "Predicted intent and NER entities",
		slog.String("intent", r.intent),
		slog.Float64("confidence", r.confidence),
		slog.Any("entities", r.entities),
		slog.Bool("parallel", p.pool != nil),
	)

	return nil
}

func (p *Pipeline) predictIntent(text string) (string, float64) {
	if p.IntentPredictor == nil {
		return p.config.DefaultIntent, p.config.Thresholds.DefaultIntentConfidence
	}
	return p.IntentPredictor(text)
}

func (p *Pipeline) extractNER(text string) (model.EntityMap, model.Confidences) {
	if p.NERExtractor == nil {
		return model.EntityMap{}, model.Confidences{}
	}
	return p.NERExtractor(text)
}

func (p *Pipeline) regexFallback(r *run, verbose bool) {
	regexEntities, spans, regexConfidences := p.SpanExtractor(r.text)
	p.trace(r, "Extracted fallback spans", slog.Any("entities", regexEntities), slog.Int("spans", len(spans)))

	r.entities = p.merger.Merge(regexEntities, r.nerEntities, regexConfidences, r.nerConfidences, verbose)
	r.spans = spans
	r.source = model.SourceNERRegex

	confidences := model.Confidences{}
	for key, value := range r.entities {
		if c, ok := r.nerConfidences[key]; ok && value == r.nerEntities[key] {
			confidences[key] = c
		} else if c, ok := regexConfidences[key]; ok && value == regexEntities[key] {
			confidences[key] = c
		}
	}
	r.confidences = confidences
}

func (p *Pipeline) templateFallback(r *run) {
	hint := r.intent
	result := p.TemplateParser(r.text, hint, r.entities)
	if result == nil {
		return
	}

	r.entities = result.Entities
	r.source = model.SourceTemplate
	r.confidence = result.Confidence
	r.intent = result.Intent
	if hint != "" && result.Confidence < p.config.Thresholds.EntityMerge {
		r.intent = hint
		p.trace(r, "Kept original intent due to low template confidence", slog.String("intent", hint))
	}
	if strings.TrimSpace(r.intent) == "" {
		r.intent = p.config.DefaultIntent
	}

	p.trace(r, "Template fallback", slog.String("intent", r.intent), slog.Any("entities", r.entities))
}

func (p *Pipeline) stage(r *run, stage Stage, fn func()) {
	start := time.Now()
	r.stage = stage
	fn()
	p.metrics.observeStage(stage, start)
}

func (p *Pipeline) trace(r *run, msg string, args ...any) {
	args = append(args, slog.String("stage", string(r.stage)))
	p.log.Log(r.ctx, r.level, msg, args...)
}
