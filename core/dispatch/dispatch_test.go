package dispatch

import (
	"testing"

	"github.com/siherrmann/hybridnlu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCommandArgs(t *testing.T) {
	tests := []struct {
		name     string
		intent   string
		entities model.EntityMap
		command  string
		args     []string
	}{
		{
			name:     "Add contact passes name and phone",
			intent:   "add_contact",
			entities: model.EntityMap{"name": "John", "phone": "+16502530000", model.KeyPhoneValid: "true"},
			command:  "add",
			args:     []string{"John", "+16502530000"},
		},
		{
			name:     "Edit phone falls back to phone as new phone",
			intent:   "edit_phone",
			entities: model.EntityMap{"name": "John", "phone": "+16502530000"},
			command:  "change",
			args:     []string{"John", "+16502530000"},
		},
		{
			name:     "Edit phone uses old and new phone",
			intent:   "edit_phone",
			entities: model.EntityMap{"name": "John", "old_phone": "111", "new_phone": "222"},
			command:  "change",
			args:     []string{"John", "111", "222"},
		},
		{
			name:     "Search contacts prefers name over phone",
			intent:   "search_contacts",
			entities: model.EntityMap{"name": "John", "phone": "123"},
			command:  "search",
			args:     []string{"John"},
		},
		{
			name:     "Search contacts uses email when it is the only field",
			intent:   "search_contacts",
			entities: model.EntityMap{"email": "a@b.com"},
			command:  "search",
			args:     []string{"a@b.com"},
		},
		{
			name:     "List birthdays defaults to seven days",
			intent:   "list_birthdays",
			entities: model.EntityMap{},
			command:  "birthdays",
			args:     []string{"7"},
		},
		{
			name:     "Add note tag passes id and tag",
			intent:   "add_note_tag",
			entities: model.EntityMap{"id": "3", "tag": "#work"},
			command:  "add-tag",
			args:     []string{"3", "#work"},
		},
		{
			name:     "Missing fields are skipped",
			intent:   "add_birthday",
			entities: model.EntityMap{"birthday": "15.03.1990", "name": ""},
			command:  "add-birthday",
			args:     []string{"15.03.1990"},
		},
		{
			name:     "Unknown intent maps to help",
			intent:   "dance",
			entities: model.EntityMap{"name": "John"},
			command:  "help",
			args:     []string{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cmd, err := GetCommandArgs(&model.NLUResult{Intent: test.intent, Entities: test.entities})
			require.NoError(t, err)
			assert.Equal(t, test.command, cmd.Name)
			assert.Equal(t, test.args, cmd.Args)
			assert.False(t, cmd.IsPipeline())
		})
	}

	t.Run("Nil result is an error", func(t *testing.T) {
		_, err := GetCommandArgs(nil)
		assert.Error(t, err)
	})

	t.Run("Optional fields turn the command into a pipeline", func(t *testing.T) {
		result := &model.NLUResult{
			Intent:     "add_contact",
			Entities:   model.EntityMap{"name": "John", "phone": "123", "email": "j@x.com"},
			Validation: model.Validation{HasOptional: true},
		}
		cmd, err := GetCommandArgs(result)
		require.NoError(t, err)
		assert.True(t, cmd.IsPipeline())
		assert.Same(t, result, cmd.Result)
	})

	t.Run("List birthdays never becomes a pipeline", func(t *testing.T) {
		cmd, err := GetCommandArgs(&model.NLUResult{
			Intent:     "list_birthdays",
			Entities:   model.EntityMap{"days": "30"},
			Validation: model.Validation{HasOptional: true},
		})
		require.NoError(t, err)
		assert.Equal(t, "birthdays", cmd.Name)
		assert.Equal(t, []string{"30"}, cmd.Args)
	})
}

func TestCommandFor(t *testing.T) {
	assert.Equal(t, "delete-note", CommandFor("remove_note"))
	assert.Equal(t, "delete-note", CommandFor("delete_note"))
	assert.Equal(t, "phone", CommandFor("show_phone"))
	assert.Equal(t, "help", CommandFor(""))
}
