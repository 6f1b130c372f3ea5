// Package i18n provides the localized message catalog for user-facing
// strings. The compliance engine and handlers never hardcode message text;
// everything user-visible goes through a (language, key) lookup so the
// decision logic stays language-agnostic.
package i18n

import (
	"golang.org/x/text/language"
)

// Language identifies a supported catalog language.
type Language string

const (
	// French is the default language of the application.
	French Language = "fr"

	// English is the secondary language.
	English Language = "en"
)

// IsValid returns true if the language is supported.
func (l Language) IsValid() bool {
	return l == French || l == English
}

// matcher resolves arbitrary BCP 47 tags against the supported languages.
// French first: it is the fallback for unrecognized tags.
var matcher = language.NewMatcher([]language.Tag{
	language.French,
	language.English,
})

// Parse resolves a language tag (e.g. an Accept-Language header value or a
// bare "fr"/"en") to a supported Language. Unrecognized input falls back to
// French.
func Parse(tag string) Language {
	if tag == "" {
		return French
	}
	tags, _, err := language.ParseAcceptLanguage(tag)
	if err != nil || len(tags) == 0 {
		return French
	}
	_, idx, _ := matcher.Match(tags...)
	if idx == 1 {
		return English
	}
	return French
}

// Message keys used by the compliance engine and the API layer.
const (
	KeyCompliant     = "messages.compliant"
	KeySensitive     = "messages.sensitive"
	KeyUndersize     = "messages.undersize"
	KeyLegalRequired = "messages.legal_required"

	KeyAdviceBass    = "advice.bass"
	KeyAdvicePike    = "advice.pike"
	KeyAdviceDefault = "advice.default"

	KeyStatusPending   = "status.pending"
	KeyStatusCompliant = "status.compliant"
	KeyStatusToDeclare = "status.to_declare"
	KeyStatusLegal     = "status.legal_declaration_required"
	KeyStatusValidated = "status.legal_declaration_validated"

	KeyLevelBeginner = "level.beginner"
	KeyLevelAmateur  = "level.amateur"
	KeyLevelSeasoned = "level.seasoned"
	KeyLevelExpert   = "level.expert"
	KeyLevelLegend   = "level.legend"
)

// Catalog is a localized-string table keyed by (language, key).
type Catalog struct {
	entries map[Language]map[string]string
}

// Default returns the built-in catalog with the application's French and
// English strings.
func Default() *Catalog {
	return &Catalog{entries: map[Language]map[string]string{
		French: {
			KeyCompliant:     "La prise est conforme aux réglementations actuelles.",
			KeySensitive:     "Espèce sensible détectée. Déclaration requise.",
			KeyUndersize:     "Taille insuffisante. Veuillez vérifier les réglementations locales.",
			KeyLegalRequired: "Espèce cible nécessitant une déclaration spécifique.",

			KeyAdviceBass:    "Superbe Bar ! La marée descendante est idéale en ce moment. Essayez un leurre de surface 'Walk the Dog' près des rochers pour déclencher plus d'attaques.",
			KeyAdvicePike:    "Beau Brochet ! Il semble chasser en bordure. Insistez sur les zones d'herbiers avec un Spinnerbait.",
			KeyAdviceDefault: "Belle prise ! Vu les conditions météo, continuez à pêcher lentement, les poissons sont peut-être méfiants aujourd'hui.",

			KeyStatusPending:   "En attente",
			KeyStatusCompliant: "Conforme",
			KeyStatusToDeclare: "À déclarer",
			KeyStatusLegal:     "Déclaration Légale Requise",
			KeyStatusValidated: "Déclaration Validée",

			KeyLevelBeginner: "Pêcheur Débutant",
			KeyLevelAmateur:  "Pêcheur Amateur",
			KeyLevelSeasoned: "Pêcheur Confirmé",
			KeyLevelExpert:   "Pêcheur Expert",
			KeyLevelLegend:   "Légende",
		},
		English: {
			KeyCompliant:     "Catch is compliant with current regulations.",
			KeySensitive:     "Sensitive species detected. Declaration required.",
			KeyUndersize:     "Undersize catch. Please verify local regulations.",
			KeyLegalRequired: "Target species requires specific declaration.",

			KeyAdviceBass:    "Great Bass! The falling tide is perfect right now. Try a 'Walk the Dog' topwater lure near the rocks to trigger more strikes.",
			KeyAdvicePike:    "Nice Pike! Seems to be hunting the edges. Focus on weed beds with a Spinnerbait.",
			KeyAdviceDefault: "Nice catch! Given the weather, keep retrieving slowly, fish might be wary today.",

			KeyStatusPending:   "Pending Check",
			KeyStatusCompliant: "Compliant",
			KeyStatusToDeclare: "Action Required",
			KeyStatusLegal:     "Legal Declaration Needed",
			KeyStatusValidated: "Declaration Validated",

			KeyLevelBeginner: "Beginner Angler",
			KeyLevelAmateur:  "Amateur Angler",
			KeyLevelSeasoned: "Seasoned Angler",
			KeyLevelExpert:   "Expert Angler",
			KeyLevelLegend:   "Legend",
		},
	}}
}

// Lookup returns the string for (lang, key) and whether it exists.
func (c *Catalog) Lookup(lang Language, key string) (string, bool) {
	table, ok := c.entries[lang]
	if !ok {
		return "", false
	}
	s, ok := table[key]
	return s, ok
}

// T returns the string for (lang, key), falling back to French and finally to
// the key itself so a missing entry never produces an empty UI string.
func (c *Catalog) T(lang Language, key string) string {
	if s, ok := c.Lookup(lang, key); ok {
		return s
	}
	if s, ok := c.Lookup(French, key); ok {
		return s
	}
	return key
}
