package generativeAI

import (
	"context"
	"errors"
	"log/slog"
)

var _ Assistant = (*FallbackAssistant)(nil)
var _ Pinger = (*FallbackAssistant)(nil)

// FallbackAssistant answers from a secondary assistant when the primary
// cannot be reached at all. Errors the provider reported itself (bad key,
// rate limit, timeouts) are returned unchanged.
type FallbackAssistant struct {
	primary   Assistant
	secondary Assistant
	logger    *slog.Logger
}

func NewFallbackAssistant(primary, secondary Assistant, logger *slog.Logger) *FallbackAssistant {
	return &FallbackAssistant{primary: primary, secondary: secondary, logger: logger}
}

func (f *FallbackAssistant) Ask(ctx context.Context, req AskRequest) (*AskResponse, error) {
	resp, err := f.primary.Ask(ctx, req)
	if err == nil || !shouldFallback(err) {
		return resp, err
	}
	f.logger.WarnContext(ctx, "AI provider unavailable, answering from local replies", slog.Any("error", err))
	return f.secondary.Ask(ctx, req)
}

func (f *FallbackAssistant) Ping(ctx context.Context) error {
	if p, ok := f.primary.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func shouldFallback(err error) bool {
	return errors.Is(err, ErrProviderUnreachable) || errors.Is(err, ErrMalformedResponse)
}
