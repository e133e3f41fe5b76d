package audit

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	records []Record
	err     error
}

func (s *recordingSink) Emit(_ context.Context, rec Record) error {
	s.records = append(s.records, rec)
	return s.err
}

func TestPublishAddsOperator(t *testing.T) {
	sink := &recordingSink{}
	ctx := WithOperator(context.Background(), "bartender")

	Publish(ctx, sink, Record{Kind: GameStarted, TournamentID: uuid.New(), StatusAfter: "in_progress"})

	require.Len(t, sink.records, 1)
	assert.Equal(t, "bartender", sink.records[0].Operator)
}

func TestPublishSwallowsSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	assert.NotPanics(t, func() {
		Publish(context.Background(), sink, Record{Kind: GameCancelled})
	})
	Publish(context.Background(), nil, Record{Kind: GameCancelled})
	assert.Len(t, sink.records, 1)
}

func TestMultiJoinsErrors(t *testing.T) {
	ok := &recordingSink{}
	failing := &recordingSink{err: errors.New("offline")}

	err := Multi{failing, ok}.Emit(context.Background(), Record{Kind: TournamentCreated})
	assert.ErrorContains(t, err, "offline")
	assert.Len(t, ok.records, 1, "a failing sink does not stop the others")
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewTextHandler(&buf, nil)))
	gameID := uuid.New()

	err := sink.Emit(context.Background(), Record{
		Kind:         GameCompleted,
		TournamentID: uuid.New(),
		GameID:       &gameID,
		StatusBefore: "in_progress",
		StatusAfter:  "completed",
		At:           time.Now(),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "game.completed")
	assert.Contains(t, buf.String(), gameID.String())
}
