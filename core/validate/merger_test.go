package validate

import (
	"testing"

	"github.com/siherrmann/hybridnlu/model"
	"github.com/stretchr/testify/assert"
)

func TestMergerMerge(t *testing.T) {
	merger := NewMerger(model.DefaultNLUConfig(), nil)

	tests := []struct {
		name     string
		regex    model.EntityMap
		ner      model.EntityMap
		regexC   model.Confidences
		nerC     model.Confidences
		expected model.EntityMap
	}{
		{
			name:     "Single source values are used",
			regex:    model.EntityMap{"phone": "5551234"},
			ner:      model.EntityMap{"name": "John"},
			expected: model.EntityMap{"phone": "5551234", "name": "John"},
		},
		{
			name:     "Empty values are skipped",
			regex:    model.EntityMap{"tag": ""},
			ner:      model.EntityMap{"tag": ""},
			expected: model.EntityMap{},
		},
		{
			name:     "Large confidence gap picks the higher source",
			regex:    model.EntityMap{"name": "John Smith"},
			ner:      model.EntityMap{"name": "John"},
			regexC:   model.Confidences{"name": 0.95},
			nerC:     model.Confidences{"name": 0.4},
			expected: model.EntityMap{"name": "John Smith"},
		},
		{
			name:     "Close confidences prefer regex for structured fields",
			regex:    model.EntityMap{"phone": "5551234"},
			ner:      model.EntityMap{"phone": "555 1234"},
			regexC:   model.Confidences{"phone": 0.75},
			nerC:     model.Confidences{"phone": 0.9},
			expected: model.EntityMap{"phone": "5551234"},
		},
		{
			name:     "Close confidences prefer NER for free text fields",
			regex:    model.EntityMap{"name": "John Smith"},
			ner:      model.EntityMap{"name": "John"},
			regexC:   model.Confidences{"name": 0.8},
			nerC:     model.Confidences{"name": 0.7},
			expected: model.EntityMap{"name": "John"},
		},
		{
			name:     "Other fields take the weakly higher confidence",
			regex:    model.EntityMap{"days": "7"},
			ner:      model.EntityMap{"days": "14"},
			regexC:   model.Confidences{"days": 0.6},
			nerC:     model.Confidences{"days": 0.6},
			expected: model.EntityMap{"days": "7"},
		},
		{
			name:     "Low confidence NER value is dropped",
			ner:      model.EntityMap{"name": "Call", "phone": "5551234"},
			nerC:     model.Confidences{"name": 0.2, "phone": 0.9},
			expected: model.EntityMap{"phone": "5551234"},
		},
		{
			name:     "Low confidence NER value loses to any regex value",
			regex:    model.EntityMap{"name": "John Smith"},
			ner:      model.EntityMap{"name": "John"},
			regexC:   model.Confidences{"name": 0.6},
			nerC:     model.Confidences{"name": 0.45},
			expected: model.EntityMap{"name": "John Smith"},
		},
		{
			name:     "Unscored values use the defaults",
			regex:    model.EntityMap{"address": "12 Baker Street"},
			ner:      model.EntityMap{"address": "Baker Street"},
			expected: model.EntityMap{"address": "12 Baker Street"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := merger.Merge(tt.regex, tt.ner, tt.regexC, tt.nerC, false)
			assert.Equal(t, tt.expected, merged)
		})
	}
}

func TestMergerTotality(t *testing.T) {
	merger := NewMerger(model.DefaultNLUConfig(), nil)

	regex := model.EntityMap{"name": "A", "phone": "1", "email": "", "tag": "#x"}
	ner := model.EntityMap{"name": "B", "email": "e@x.io", "note_text": "", "id": "3"}

	merged := merger.Merge(regex, ner, model.Confidences{}, model.Confidences{}, true)

	for _, key := range []string{"name", "phone", "email", "tag", "id"} {
		t.Run("Exactly one value for "+key, func(t *testing.T) {
			value, ok := merged[key]
			assert.True(t, ok)
			assert.True(t, value == regex[key] || value == ner[key])
		})
	}
	t.Run("Keys without values are omitted", func(t *testing.T) {
		_, ok := merged["note_text"]
		assert.False(t, ok)
	})
}
