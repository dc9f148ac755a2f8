package interfaces

import "context"

// Translator turns caption text into another language. Implementations may be
// slow or fail; callers decide how to degrade.
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}
