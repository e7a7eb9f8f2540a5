package extract

import "github.com/siherrmann/hybridnlu/model"

// Extractor produces extraction candidates for one strategy.
type Extractor interface {
	Extract(text string) []model.Entity
	Strategy() model.Strategy
}

// ExtractFunc adapts a function to the Extractor interface.
type ExtractFunc struct {
	Fn   func(text string) []model.Entity
	Kind model.Strategy
}

func (f ExtractFunc) Extract(text string) []model.Entity {
	return f.Fn(text)
}

func (f ExtractFunc) Strategy() model.Strategy {
	return f.Kind
}

func newEntity(text string, start int, end int, entityType model.EntityType, confidence float64, strategy model.Strategy) model.Entity {
	return model.Entity{
		Text:       text,
		Start:      start,
		End:        end,
		Type:       entityType,
		Confidence: confidence,
		Strategy:   strategy,
	}
}
