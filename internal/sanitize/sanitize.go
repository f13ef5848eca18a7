// Package sanitize prepares assistant text for speech synthesis.
//
// Synthesis engines read decorative symbols aloud, so the text is stripped
// before it is handed to TTS. The pivot language gets an allow-list tuned for
// Latin script; every other language gets a deny-list of markup punctuation
// instead, so non-Latin scripts pass through untouched.
package sanitize

import (
	"regexp"

	"github.com/asharma/vakeel/internal/language"
)

// emojiRe covers the pictographic blocks: misc symbols, dingbats, emoticons,
// transport, supplemental symbols, flags, and the variation selector that
// turns text presentation into emoji presentation.
var emojiRe = regexp.MustCompile(`[\x{1F000}-\x{1FAFF}\x{2600}-\x{27BF}\x{2190}-\x{21FF}\x{2B00}-\x{2BFF}\x{FE0F}\x{200D}\x{2300}-\x{23FF}]`)

// pivotKeepRe deletes everything outside word characters, whitespace and
// basic sentence punctuation.
var pivotKeepRe = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?]`)

// denyRe deletes the markup punctuation that completion output tends to
// carry (markdown emphasis, brackets, shell noise).
var denyRe = regexp.MustCompile(`[*\-^$#@!~_+=\[\]{}()<>]`)

// Sanitize strips emoji unconditionally, then applies the per-language
// character policy. It is pure and idempotent.
func Sanitize(text, languageName string) string {
	text = emojiRe.ReplaceAllString(text, "")
	if language.IsPivot(languageName) {
		return pivotKeepRe.ReplaceAllString(text, "")
	}
	return denyRe.ReplaceAllString(text, "")
}
