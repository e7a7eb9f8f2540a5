package extract

import (
	"errors"
	"testing"

	"github.com/siherrmann/hybridnlu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAddressParser struct {
	addresses []string
	err       error
}

func (f fakeAddressParser) ParseAddresses(string) ([]string, error) {
	return f.addresses, f.err
}

func allButNames() Capabilities {
	return Capabilities{Phone: true, Email: true, Address: true, AddressTagging: true, Dates: true}
}

func TestLibraryExtractor(t *testing.T) {
	t.Run("Phone is validated and formatted without country code", func(t *testing.T) {
		extractor := NewLibraryExtractor(WithCapabilities(allButNames()))
		text := "call +1 650-253-0000 now"
		phones := entitiesOfType(extractor.Extract(text), model.EntityPhone)
		require.Len(t, phones, 1)
		assert.Equal(t, "6502530000", phones[0].Text)
		assert.Equal(t, 0.95, phones[0].Confidence)
		assert.Equal(t, "+1 650-253-0000", text[phones[0].Start:phones[0].End])
	})

	t.Run("Dates are not taken for phones", func(t *testing.T) {
		extractor := NewLibraryExtractor(WithCapabilities(allButNames()))
		entities := extractor.Extract("born 15.03.1990")
		assert.Empty(t, entitiesOfType(entities, model.EntityPhone))
		birthdays := entitiesOfType(entities, model.EntityBirthday)
		require.Len(t, birthdays, 1)
		assert.Equal(t, "15.03.1990", birthdays[0].Text)
		assert.Equal(t, 0.85, birthdays[0].Confidence)
	})

	t.Run("Email", func(t *testing.T) {
		extractor := NewLibraryExtractor(WithCapabilities(allButNames()))
		emails := entitiesOfType(extractor.Extract("write to john@example.com"), model.EntityEmail)
		require.Len(t, emails, 1)
		assert.Equal(t, "john@example.com", emails[0].Text)
		assert.Equal(t, 0.95, emails[0].Confidence)
	})

	t.Run("Primary address parser", func(t *testing.T) {
		extractor := NewLibraryExtractor(
			WithCapabilities(allButNames()),
			WithAddressParser(fakeAddressParser{addresses: []string{"12 Baker Street"}}),
			WithAddressTagger(fakeAddressParser{addresses: []string{"Baker Street"}}),
		)
		addresses := entitiesOfType(extractor.Extract("moved to 12 Baker Street"), model.EntityAddress)
		require.Len(t, addresses, 1)
		assert.Equal(t, "12 Baker Street", addresses[0].Text)
		assert.Equal(t, 0.85, addresses[0].Confidence)
	})

	t.Run("Address tagger is used when the parser fails", func(t *testing.T) {
		extractor := NewLibraryExtractor(
			WithCapabilities(allButNames()),
			WithAddressParser(fakeAddressParser{err: errors.New("parser down")}),
			WithAddressTagger(fakeAddressParser{addresses: []string{"Baker Street"}}),
		)
		addresses := entitiesOfType(extractor.Extract("moved to 12 Baker Street"), model.EntityAddress)
		require.Len(t, addresses, 1)
		assert.Equal(t, "Baker Street", addresses[0].Text)
		assert.Equal(t, 0.80, addresses[0].Confidence)
	})

	t.Run("Missing capabilities produce no candidates", func(t *testing.T) {
		extractor := NewLibraryExtractor(WithCapabilities(Capabilities{}))
		assert.Empty(t, extractor.Extract("call +1 650-253-0000 or john@example.com on 15.03.1990"))
		assert.Equal(t, model.StrategyLibrary, extractor.Strategy())
	})
}

func TestDetectCapabilities(t *testing.T) {
	t.Run("Known region without address parsers", func(t *testing.T) {
		capabilities := DetectCapabilities("us", nil, nil)
		assert.True(t, capabilities.Phone)
		assert.True(t, capabilities.Email)
		assert.True(t, capabilities.Dates)
		assert.False(t, capabilities.Address)
		assert.False(t, capabilities.AddressTagging)
	})

	t.Run("Unknown region disables phones", func(t *testing.T) {
		capabilities := DetectCapabilities("XX", fakeAddressParser{}, nil)
		assert.False(t, capabilities.Phone)
		assert.True(t, capabilities.Address)
	})

	t.Run("Available lists every concern", func(t *testing.T) {
		available := Capabilities{Phone: true}.Available()
		assert.Len(t, available, 6)
		assert.True(t, available["phone"])
		assert.False(t, available["names"])
	})
}
