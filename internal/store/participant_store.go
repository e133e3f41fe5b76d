package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Participant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Event struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ParticipantStore is the participant directory and event container the
// bracket core validates teams against.
type ParticipantStore struct {
	db *sqlx.DB
}

const (
	playerExistsQuery        = "SELECT EXISTS (SELECT 1 FROM participants WHERE id = ?)"
	eventExistsQuery         = "SELECT EXISTS (SELECT 1 FROM events WHERE id = ?)"
	eventHasParticipantQuery = `
		SELECT EXISTS (
			SELECT 1 FROM event_participants
			WHERE event_id = ? AND participant_id = ?
		)
	`
	createParticipantQuery = `
		INSERT INTO participants (id, name, created_at) VALUES
		(:id, :name, :created_at)
	`
	createEventQuery = `
		INSERT INTO events (id, name, created_at) VALUES
		(:id, :name, :created_at)
	`
	addEventParticipantQuery = "INSERT OR IGNORE INTO event_participants (event_id, participant_id) VALUES (?, ?)"
)

func NewParticipantStore(db *sqlx.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func (s *ParticipantStore) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var ok bool
	err := s.db.GetContext(ctx, &ok, query, args...)
	return ok, err
}

func (s *ParticipantStore) PlayerExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists(ctx, playerExistsQuery, id)
}

func (s *ParticipantStore) EventExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.exists(ctx, eventExistsQuery, id)
}

func (s *ParticipantStore) EventHasParticipant(ctx context.Context, eventID, playerID uuid.UUID) (bool, error) {
	return s.exists(ctx, eventHasParticipantQuery, eventID, playerID)
}

func (s *ParticipantStore) CreateParticipant(ctx context.Context, p *Participant) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, createParticipantQuery, p)
	return err
}

func (s *ParticipantStore) CreateEvent(ctx context.Context, e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, createEventQuery, e)
	return err
}

func (s *ParticipantStore) AddEventParticipant(ctx context.Context, eventID, participantID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, addEventParticipantQuery, eventID, participantID)
	return err
}
