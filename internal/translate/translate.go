// Package translate defines the interface for the machine-translation hop.
//
// All translation goes through the pivot language: user prompts are
// translated into it before completion and answers are translated back out.
// Turns already in the pivot language skip translation entirely, so a
// Translator is never invoked with source equal to target.
package translate

import "context"

// Translator converts text between two locales.
type Translator interface {
	// Translate returns text rendered from sourceLocale into targetLocale.
	// Locales are ISO-639-1 codes (e.g. "hi", "en").
	Translate(ctx context.Context, text, sourceLocale, targetLocale string) (string, error)

	// Close releases any resources held by the translator.
	Close() error
}
