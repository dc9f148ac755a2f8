// Package translate turns decoded caption text into the target language
// before cues reach the subtitle writer.
package translate

import (
	"context"
	"fmt"
)

// FailureError reports a translation that could not be completed. The
// caption pipeline treats it as non-fatal and keeps the original text.
type FailureError struct {
	Cause error
	Text  string
}

func (f *FailureError) Error() string {
	return fmt.Sprintf("failed to translate %q: %v", f.Text, f.Cause)
}

func (f *FailureError) Unwrap() error {
	return f.Cause
}

// Identity returns text unchanged.
type Identity struct{}

func (Identity) Translate(_ context.Context, text string) (string, error) {
	return text, nil
}
