// Package language is the static registry of supported languages.
//
// Each language maps to two locale codes: the ISO-639-1 code used by the
// translation and speech-synthesis services, and the BCP-47 tag used by
// speech recognition. English is the pivot language: all translation hops go
// through it, and its translation code doubles as the "no translation
// needed" sentinel.
package language

// Pivot is the pivot language name.
const Pivot = "English"

// Locale bundles the service locale codes for one language.
type Locale struct {
	// Translation is the ISO-639-1 code used by translation and TTS.
	Translation string

	// Speech is the BCP-47 tag used by speech recognition.
	Speech string
}

var registry = map[string]Locale{
	"English":   {Translation: "en", Speech: "en-IN"},
	"Assamese":  {Translation: "as", Speech: "as-IN"},
	"Bengali":   {Translation: "bn", Speech: "bn-IN"},
	"Gujarati":  {Translation: "gu", Speech: "gu-IN"},
	"Hindi":     {Translation: "hi", Speech: "hi-IN"},
	"Kannada":   {Translation: "kn", Speech: "kn-IN"},
	"Malayalam": {Translation: "ml", Speech: "ml-IN"},
	"Marathi":   {Translation: "mr", Speech: "mr-IN"},
	"Nepali":    {Translation: "ne", Speech: "ne-NP"},
	"Odia":      {Translation: "or", Speech: "or-IN"},
	"Punjabi":   {Translation: "pa", Speech: "pa-IN"},
	"Sindhi":    {Translation: "sd", Speech: "sd-IN"},
	"Tamil":     {Translation: "ta", Speech: "ta-IN"},
	"Telugu":    {Translation: "te", Speech: "te-IN"},
	"Urdu":      {Translation: "ur", Speech: "ur-IN"},
}

// names keeps the selector order stable, pivot first.
var names = []string{
	"English", "Assamese", "Bengali", "Gujarati", "Hindi", "Kannada",
	"Malayalam", "Marathi", "Nepali", "Odia", "Punjabi", "Sindhi",
	"Tamil", "Telugu", "Urdu",
}

// LocaleFor returns the locale codes for a language name. Unknown names fall
// back to the pivot's codes rather than failing.
func LocaleFor(name string) Locale {
	if loc, ok := registry[name]; ok {
		return loc
	}
	return registry[Pivot]
}

// IsPivot reports whether name is the pivot language. Unknown names are
// treated as the pivot, consistent with LocaleFor's fallback.
func IsPivot(name string) bool {
	_, ok := registry[name]
	return !ok || name == Pivot
}

// Names returns the supported language names in selector order.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
