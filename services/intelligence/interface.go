package ai

import (
	"context"
	"errors"

	"chatbook/models"
)

// ErrUnusableOutput is returned by a classifier whose reply cannot be decoded into
// one of the known actions.
var ErrUnusableOutput = errors.New("classifier output unusable")

// Classifier labels a customer message with one of the fixed actions. Implementations
// may fail or time out; the Resolver falls back to the local lexicon when they do.
type Classifier interface {
	Classify(ctx context.Context, systemContext, userText string) (*models.ClassifierResult, error)
}

// ContextStore remembers the last language a customer wrote in, so replies to
// interactive buttons (which carry no text) stay in that language.
type ContextStore interface {
	Language(ctx context.Context, customerID string) (string, error)
	SetLanguage(ctx context.Context, customerID, language string) error
}
