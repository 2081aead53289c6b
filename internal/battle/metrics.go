package battle

import (
	"context"
	"log/slog"

	"github.com/peterkuimelis/smtx/internal/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/peterkuimelis/smtx/internal/battle"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// battleMetrics records battle counters on the global meter provider
// (no-op unless one is installed). A counter that fails to register stays nil.
type battleMetrics struct {
	battles  metric.Int64Counter
	finished metric.Int64Counter
	rounds   metric.Int64Counter
	actions  metric.Int64Counter
	damage   metric.Int64Counter
}

func newBattleMetrics(logger *slog.Logger) *battleMetrics {
	m := meter()
	bm := &battleMetrics{}

	var err error
	if bm.battles, err = m.Int64Counter("smtx.battles.started",
		metric.WithDescription("Battles started")); err != nil {
		logger.Warn("creating battles counter", "error", err)
	}
	if bm.finished, err = m.Int64Counter("smtx.battles.finished",
		metric.WithDescription("Battles finished, by winner")); err != nil {
		logger.Warn("creating finished counter", "error", err)
	}
	if bm.rounds, err = m.Int64Counter("smtx.rounds",
		metric.WithDescription("Rounds played, by player")); err != nil {
		logger.Warn("creating rounds counter", "error", err)
	}
	if bm.actions, err = m.Int64Counter("smtx.actions",
		metric.WithDescription("Resolved actions, by kind")); err != nil {
		logger.Warn("creating actions counter", "error", err)
	}
	if bm.damage, err = m.Int64Counter("smtx.damage",
		metric.WithDescription("Damage dealt by basic attacks"),
		metric.WithUnit("{hp}")); err != nil {
		logger.Warn("creating damage counter", "error", err)
	}
	return bm
}

func (bm *battleMetrics) battleStarted(ctx context.Context) {
	if bm.battles != nil {
		bm.battles.Add(ctx, 1)
	}
}

func (bm *battleMetrics) battleFinished(ctx context.Context, winner int) {
	if bm.finished != nil {
		bm.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("winner", log.PlayerTag(winner))))
	}
}

func (bm *battleMetrics) roundPlayed(ctx context.Context, player int) {
	if bm.rounds != nil {
		bm.rounds.Add(ctx, 1, metric.WithAttributes(attribute.String("player", log.PlayerTag(player))))
	}
}

func (bm *battleMetrics) actionResolved(ctx context.Context, kind ActionKind) {
	if bm.actions != nil {
		bm.actions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
	}
}

func (bm *battleMetrics) damageDealt(ctx context.Context, amount int, ranged bool) {
	if bm.damage != nil {
		bm.damage.Add(ctx, int64(amount), metric.WithAttributes(attribute.Bool("ranged", ranged)))
	}
}
