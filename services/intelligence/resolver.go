package ai

import (
	"context"
	"strings"
	"time"

	"chatbook/models"

	"go.uber.org/zap"
)

const DefaultClassifierTimeout = 8 * time.Second

// Resolver turns free text into an action. The classifier is tried first; any error,
// timeout or unusable reply drops to the keyword lexicon.
type Resolver struct {
	Classifier Classifier
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Resolve always returns a valid action with non-empty ResponseText.
func (r *Resolver) Resolve(ctx context.Context, tenant *models.Tenant, text string, pending *models.PendingBooking) models.Resolution {
	text = strings.TrimSpace(text)
	lang := DetectLanguage(text)

	if text == "" {
		return models.Resolution{
			Action:       models.ActionUnknown,
			ResponseText: DefaultResponse(models.ActionUnknown, lang, tenant, pending),
			Language:     lang,
			Source:       models.SourceFallback,
		}
	}

	if r.Classifier != nil {
		res, err := r.classify(ctx, tenant, text, pending, lang)
		if err == nil {
			return res
		}
		r.logger().Warn("classifier unavailable; using keyword fallback", zap.Error(err))
	}
	return Fallback(tenant, text, pending, lang)
}

func (r *Resolver) classify(ctx context.Context, tenant *models.Tenant, text string, pending *models.PendingBooking, lang string) (models.Resolution, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultClassifierTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := r.Classifier.Classify(ctx, BuildSystemPrompt(tenant, pending, lang), BuildUserPrompt(text, pending))
	if err != nil {
		return models.Resolution{}, err
	}
	if out == nil || !out.Action.Valid() {
		return models.Resolution{}, ErrUnusableOutput
	}

	response := strings.TrimSpace(out.Response)
	if response == "" {
		response = DefaultResponse(out.Action, lang, tenant, pending)
	}
	return models.Resolution{
		Action:            out.Action,
		ResponseText:      response,
		ServiceHint:       strings.TrimSpace(out.Service),
		PreferredTimeHint: strings.TrimSpace(out.PreferredTime),
		Language:          lang,
		Source:            models.SourceClassifier,
	}, nil
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}
