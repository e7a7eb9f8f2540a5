package dispatch

import (
	"errors"
	"testing"

	"github.com/siherrmann/hybridnlu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	command string
	args    []string
}

func recordingHandler(calls *[]call, outputs map[string]string) HandlerFunc {
	return func(command string, args []string) (string, error) {
		*calls = append(*calls, call{command: command, args: args})
		if out, ok := outputs[command]; ok {
			return out, nil
		}
		return "ok", nil
	}
}

type checkingHandler struct {
	HandlerFunc
	existing map[string]bool
	err      error
}

func (h checkingHandler) Exists(command string, args []string) (bool, error) {
	return h.existing[command], h.err
}

func TestBuildCommandPipeline(t *testing.T) {
	t.Run("Add contact adds a step per optional field", func(t *testing.T) {
		steps := BuildCommandPipeline(&model.NLUResult{
			Intent: "add_contact",
			Entities: model.EntityMap{
				"name":              "John",
				"phone":             "+16502530000",
				"email":             "john@example.com",
				"birthday":          "15.03.1990",
				model.KeyEmailValid: "true",
			},
		})
		require.Len(t, steps, 3)
		assert.Equal(t, Step{Command: "add", Args: []string{"John", "+16502530000"}, Primary: true}, steps[0])
		assert.Equal(t, Step{Command: "add-email", Args: []string{"John", "john@example.com"}}, steps[1])
		assert.Equal(t, Step{Command: "add-birthday", Args: []string{"John", "15.03.1990"}}, steps[2])
	})

	t.Run("Edit phone steps carry the if not exists condition", func(t *testing.T) {
		steps := BuildCommandPipeline(&model.NLUResult{
			Intent:   "edit_phone",
			Entities: model.EntityMap{"name": "John", "phone": "1", "address": "Main St 1"},
		})
		require.Len(t, steps, 2)
		assert.Equal(t, ConditionIfNotExists, steps[1].Condition)
		assert.Equal(t, []string{"John", "Main St 1"}, steps[1].Args)
	})

	t.Run("Add note tag step takes the note id from the primary output", func(t *testing.T) {
		steps := BuildCommandPipeline(&model.NLUResult{
			Intent:   "add_note",
			Entities: model.EntityMap{"note_text": "buy milk", "tag": "#home"},
		})
		require.Len(t, steps, 2)
		assert.True(t, steps[1].NoteIDFromPrimary)
		assert.Equal(t, []string{"#home"}, steps[1].Args)
	})

	t.Run("Intent without definition has no steps", func(t *testing.T) {
		assert.Empty(t, BuildCommandPipeline(&model.NLUResult{Intent: "help"}))
		assert.Empty(t, BuildCommandPipeline(nil))
	})
}

func TestExecute(t *testing.T) {
	t.Run("Single command runs once", func(t *testing.T) {
		var calls []call
		out, err := Execute(recordingHandler(&calls, nil), Command{Name: "add", Args: []string{"John", "1"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, out)
		assert.Equal(t, []call{{command: "add", args: []string{"John", "1"}}}, calls)
	})

	t.Run("Pipeline passes the note id to the tag step", func(t *testing.T) {
		var calls []call
		handler := recordingHandler(&calls, map[string]string{"add-note": "Note added with ID: 42"})
		cmd := Command{Name: CommandPipeline, Result: &model.NLUResult{
			Intent:   "add_note",
			Entities: model.EntityMap{"note_text": "buy milk", "tag": "#home"},
		}}

		out, err := Execute(handler, cmd)
		require.NoError(t, err)
		assert.Len(t, out, 2)
		require.Len(t, calls, 2)
		assert.Equal(t, []string{"42", "#home"}, calls[1].args)
	})

	t.Run("Tag step is skipped without a note id", func(t *testing.T) {
		var calls []call
		cmd := Command{Name: CommandPipeline, Result: &model.NLUResult{
			Intent:   "add_note",
			Entities: model.EntityMap{"note_text": "buy milk", "tag": "#home"},
		}}

		_, err := Execute(recordingHandler(&calls, nil), cmd)
		require.NoError(t, err)
		assert.Len(t, calls, 1)
	})

	t.Run("Failing step stops the pipeline", func(t *testing.T) {
		calls := 0
		handler := HandlerFunc(func(command string, args []string) (string, error) {
			calls++
			return "", errors.New("contact exists")
		})
		cmd := Command{Name: CommandPipeline, Result: &model.NLUResult{
			Intent:   "add_contact",
			Entities: model.EntityMap{"name": "John", "phone": "1", "email": "j@x.com"},
		}}

		_, err := Execute(handler, cmd)
		assert.ErrorContains(t, err, "contact exists")
		assert.Equal(t, 1, calls)
	})

	t.Run("Multi-result search skips the follow-up phone step", func(t *testing.T) {
		var calls []call
		handler := recordingHandler(&calls, map[string]string{"search": "Found 3 contacts"})
		cmd := Command{Name: CommandPipeline, Result: &model.NLUResult{
			Intent:   "search_contacts",
			Entities: model.EntityMap{"name": "John"},
		}}

		out, err := Execute(handler, cmd)
		require.NoError(t, err)
		assert.Equal(t, []string{"Found 3 contacts"}, out)
		assert.Equal(t, []call{{command: "search", args: []string{}}}, calls)
	})

	t.Run("Single-result search runs the follow-up phone step", func(t *testing.T) {
		var calls []call
		handler := recordingHandler(&calls, map[string]string{"search": "Found 1 contact\nJohn Smith"})
		cmd := Command{Name: CommandPipeline, Result: &model.NLUResult{
			Intent:   "search_contacts",
			Entities: model.EntityMap{"name": "John"},
		}}

		_, err := Execute(handler, cmd)
		require.NoError(t, err)
		require.Len(t, calls, 2)
		assert.Equal(t, call{command: "phone", args: []string{"John"}}, calls[1])
	})

	t.Run("Existing values skip if not exists steps", func(t *testing.T) {
		var calls []call
		handler := checkingHandler{
			HandlerFunc: recordingHandler(&calls, nil),
			existing:    map[string]bool{"add-email": true},
		}
		cmd := Command{Name: CommandPipeline, Result: &model.NLUResult{
			Intent:   "edit_phone",
			Entities: model.EntityMap{"name": "John", "phone": "1", "email": "j@x.com", "address": "Main St 1"},
		}}

		_, err := Execute(handler, cmd)
		require.NoError(t, err)
		require.Len(t, calls, 2)
		assert.Equal(t, "change", calls[0].command)
		assert.Equal(t, "add-address", calls[1].command)
	})

	t.Run("Handlers without an existence check run if not exists steps", func(t *testing.T) {
		var calls []call
		cmd := Command{Name: CommandPipeline, Result: &model.NLUResult{
			Intent:   "edit_phone",
			Entities: model.EntityMap{"name": "John", "phone": "1", "email": "j@x.com"},
		}}

		_, err := Execute(recordingHandler(&calls, nil), cmd)
		require.NoError(t, err)
		assert.Len(t, calls, 2)
	})

	t.Run("Failing existence check stops the pipeline", func(t *testing.T) {
		var calls []call
		handler := checkingHandler{HandlerFunc: recordingHandler(&calls, nil), err: errors.New("store offline")}
		cmd := Command{Name: CommandPipeline, Result: &model.NLUResult{
			Intent:   "edit_phone",
			Entities: model.EntityMap{"name": "John", "phone": "1", "email": "j@x.com"},
		}}

		_, err := Execute(handler, cmd)
		assert.ErrorContains(t, err, "store offline")
		assert.Len(t, calls, 1)
	})

	t.Run("Pipeline for unknown intent is an error", func(t *testing.T) {
		_, err := Execute(HandlerFunc(func(string, []string) (string, error) { return "", nil }),
			Command{Name: CommandPipeline, Result: &model.NLUResult{Intent: "help"}})
		assert.Error(t, err)
	})
}

func TestResultCount(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		expected int
	}{
		{"Explicit count", "Found 3 contacts", 3},
		{"Single count", "Found 1 contact", 1},
		{"Nothing found", "No contacts found", 0},
		{"One line per result", "John Smith\nJane Smith\n", 2},
		{"Empty output", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResultCount(tt.output))
		})
	}
}

func TestExtractNoteID(t *testing.T) {
	assert.Equal(t, "7", ExtractNoteID("Note added. ID: 7"))
	assert.Equal(t, "", ExtractNoteID("Note added"))
}

func TestSummary(t *testing.T) {
	steps := []Step{
		{Command: "add", Args: []string{"John", "1"}, Primary: true},
		{Command: "add-email", Args: []string{"John", "j@x.com"}},
	}
	assert.Equal(t, "Pipeline:\n1. add John 1\n2. add-email John j@x.com", Summary(steps))
	assert.Equal(t, "", Summary(steps[:1]))
}
