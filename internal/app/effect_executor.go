// Package app contains the application layer - service implementations and effect execution.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/notehub/internal/core/effects"
	"github.com/example/notehub/internal/ports/primary"
	"github.com/example/notehub/internal/ports/secondary"
	"github.com/example/notehub/internal/querycache"
)

// EffectExecutor interprets and executes effects.
// This is the "Imperative Shell" - the only place effect I/O happens.
type EffectExecutor interface {
	Execute(ctx context.Context, effs []effects.Effect) error
}

// DefaultEffectExecutor implements EffectExecutor against the cache,
// the draft store and the notifier.
type DefaultEffectExecutor struct {
	cache    *querycache.Cache
	drafts   primary.DraftService
	notifier secondary.Notifier
	logger   *zap.Logger
}

// NewEffectExecutor creates a new DefaultEffectExecutor.
func NewEffectExecutor(cache *querycache.Cache, drafts primary.DraftService, notifier secondary.Notifier, logger *zap.Logger) *DefaultEffectExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultEffectExecutor{
		cache:    cache,
		drafts:   drafts,
		notifier: notifier,
		logger:   logger,
	}
}

// Execute processes a slice of effects, executing each in sequence.
func (e *DefaultEffectExecutor) Execute(ctx context.Context, effs []effects.Effect) error {
	for _, eff := range effs {
		if err := e.executeOne(ctx, eff); err != nil {
			return fmt.Errorf("failed to execute %s effect: %w", eff.EffectType(), err)
		}
	}
	return nil
}

func (e *DefaultEffectExecutor) executeOne(ctx context.Context, eff effects.Effect) error {
	switch typed := eff.(type) {
	case effects.InvalidateEffect:
		e.cache.Invalidate(querycache.Key(typed.Prefix))
		return nil
	case effects.RemoveEffect:
		e.cache.Remove(querycache.Key(typed.Prefix))
		return nil
	case effects.SaveDraftEffect:
		return e.drafts.SetDraft(ctx, typed.Values)
	case effects.ClearDraftEffect:
		return e.drafts.ClearDraft(ctx)
	case effects.NotifyEffect:
		if e.notifier != nil {
			e.notifier.Notify(ctx, typed.Level, typed.Message)
		}
		return nil
	case effects.CloseModalEffect:
		// Folded into the workflow by modal.Apply.
		return nil
	case effects.CompositeEffect:
		return e.Execute(ctx, typed.Effects)
	case effects.NoEffect:
		return nil
	case effects.LogEffect:
		e.log(typed)
		return nil
	default:
		return fmt.Errorf("unknown effect type: %T", eff)
	}
}

func (e *DefaultEffectExecutor) log(eff effects.LogEffect) {
	fields := make([]zap.Field, 0, len(eff.Fields))
	for k, v := range eff.Fields {
		fields = append(fields, zap.Any(k, v))
	}
	switch eff.Level {
	case "debug":
		e.logger.Debug(eff.Message, fields...)
	case "warn":
		e.logger.Warn(eff.Message, fields...)
	case "error":
		e.logger.Error(eff.Message, fields...)
	default:
		e.logger.Info(eff.Message, fields...)
	}
}
