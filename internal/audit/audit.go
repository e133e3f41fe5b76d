// Package audit carries state-transition records from the bracket core to
// the activity log. Delivery is best effort: a failing sink is logged and
// never fails the transition that produced the record.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/AdamBeresnev/beerpong/internal/store"
	"github.com/AdamBeresnev/beerpong/internal/utils"
	"github.com/google/uuid"
)

type Kind string

const (
	TournamentCreated Kind = "tournament.created"
	GameStarted       Kind = "game.started"
	GameCompleted     Kind = "game.completed"
	GameCancelled     Kind = "game.cancelled"
)

type Record struct {
	Kind         Kind
	TournamentID uuid.UUID
	GameID       *uuid.UUID
	StatusBefore string
	StatusAfter  string
	Operator     string
	Detail       string
	At           time.Time
}

type Sink interface {
	Emit(ctx context.Context, rec Record) error
}

type operatorKey struct{}

// WithOperator attaches the label of the person driving the bracket to ctx.
func WithOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, operatorKey{}, operator)
}

func OperatorFromContext(ctx context.Context) string {
	op, _ := ctx.Value(operatorKey{}).(string)
	return op
}

// Publish fills in the operator and hands rec to sink, logging any failure.
func Publish(ctx context.Context, sink Sink, rec Record) {
	if sink == nil {
		return
	}
	if rec.Operator == "" {
		rec.Operator = OperatorFromContext(ctx)
	}
	if err := sink.Emit(ctx, rec); err != nil {
		slog.Warn("failed to deliver audit record", "kind", rec.Kind, "tournament_id", rec.TournamentID, "error", err)
	}
}

// StoreSink persists records into the activity log table.
type StoreSink struct {
	store *store.ActivityStore
}

func NewStoreSink(store *store.ActivityStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Emit(ctx context.Context, rec Record) error {
	return s.store.CreateActivity(ctx, &store.Activity{
		ID:           uuid.New(),
		Kind:         string(rec.Kind),
		TournamentID: rec.TournamentID,
		GameID:       rec.GameID,
		StatusBefore: utils.StringOrNil(rec.StatusBefore),
		StatusAfter:  rec.StatusAfter,
		Operator:     utils.StringOrNil(rec.Operator),
		Detail:       utils.StringOrNil(rec.Detail),
		OccurredAt:   rec.At,
	})
}

type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, rec Record) error {
	attrs := []any{
		"tournament_id", rec.TournamentID,
		"before", rec.StatusBefore,
		"after", rec.StatusAfter,
		"at", rec.At,
	}
	if rec.GameID != nil {
		attrs = append(attrs, "game_id", *rec.GameID)
	}
	if rec.Operator != "" {
		attrs = append(attrs, "operator", rec.Operator)
	}
	s.logger.InfoContext(ctx, string(rec.Kind), attrs...)
	return nil
}

// Multi fans a record out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Emit(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
