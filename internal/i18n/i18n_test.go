package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		tag  string
		want Language
	}{
		{"fr", French},
		{"en", English},
		{"fr-FR", French},
		{"en-US,en;q=0.9", English},
		{"en-GB,fr;q=0.8", English},
		{"de", French}, // unsupported falls back to the default
		{"", French},
		{"not a tag", French},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.tag))
		})
	}
}

func TestCatalog_T(t *testing.T) {
	c := Default()

	assert.Equal(t, "La prise est conforme aux réglementations actuelles.", c.T(French, KeyCompliant))
	assert.Equal(t, "Catch is compliant with current regulations.", c.T(English, KeyCompliant))

	// Unknown language falls back to French.
	assert.Equal(t, c.T(French, KeyUndersize), c.T(Language("de"), KeyUndersize))

	// Unknown key falls back to the key itself, never an empty string.
	assert.Equal(t, "messages.nope", c.T(French, "messages.nope"))
}

func TestCatalog_AllKeysPresentInBothLanguages(t *testing.T) {
	c := Default()
	keys := []string{
		KeyCompliant, KeySensitive, KeyUndersize, KeyLegalRequired,
		KeyAdviceBass, KeyAdvicePike, KeyAdviceDefault,
		KeyStatusPending, KeyStatusCompliant, KeyStatusToDeclare,
		KeyStatusLegal, KeyStatusValidated,
		KeyLevelBeginner, KeyLevelAmateur, KeyLevelSeasoned,
		KeyLevelExpert, KeyLevelLegend,
	}

	for _, lang := range []Language{French, English} {
		for _, key := range keys {
			s, ok := c.Lookup(lang, key)
			assert.True(t, ok, "%s/%s missing", lang, key)
			assert.NotEmpty(t, s, "%s/%s empty", lang, key)
		}
	}
}
