package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aretw0/journey/pkg/domain"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store implements ports.JourneyStore on SQLite.
// States and transitions are stored in their own tables keyed by declared
// position, so their order survives a round trip.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at path. Use ":memory:" for a
// throwaway database.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite works best with a single writer; it also keeps ":memory:" on one connection.
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if err := InitSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save replaces the journey and all of its states and transitions in one transaction.
func (s *Store) Save(ctx context.Context, j *domain.Journey) error {
	if j == nil || j.ID == "" {
		return domain.NewUsageError("sqlite store", "journey id must not be empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO journeys (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, created_at = excluded.created_at, updated_at = excluded.updated_at`,
		j.ID, j.Name, formatTime(j.CreatedAt), formatTime(j.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert journey: %w", err)
	}

	if err := deleteChildren(ctx, tx, j.ID); err != nil {
		return err
	}

	for i, st := range j.States {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO states (journey_id, position, name, description, dwell_days) VALUES (?, ?, ?, ?, ?)`,
			j.ID, i, st.Name, st.Description, st.DwellDays)
		if err != nil {
			return fmt.Errorf("failed to insert state %q: %w", st.Name, err)
		}
	}
	for i, tr := range j.Transitions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transitions (journey_id, position, from_state, to_state, trigger_name, probability, channel, content_brief)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			j.ID, i, tr.FromState, tr.ToState, tr.Trigger, tr.Probability, tr.Channel, tr.ContentBrief)
		if err != nil {
			return fmt.Errorf("failed to insert transition %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit journey: %w", err)
	}
	return nil
}

// Load retrieves a journey with its states and transitions in declared order.
func (s *Store) Load(ctx context.Context, id string) (*domain.Journey, error) {
	j := &domain.Journey{ID: id}
	var created, updated string

	err := s.db.QueryRowContext(ctx,
		`SELECT name, created_at, updated_at FROM journeys WHERE id = ?`, id).
		Scan(&j.Name, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, domain.ErrJourneyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query journey: %w", err)
	}
	if j.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if j.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}

	if j.States, err = s.loadStates(ctx, id); err != nil {
		return nil, err
	}
	if j.Transitions, err = s.loadTransitions(ctx, id); err != nil {
		return nil, err
	}
	return j, nil
}

func (s *Store) loadStates(ctx context.Context, id string) ([]domain.State, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, description, dwell_days FROM states WHERE journey_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query states: %w", err)
	}
	defer rows.Close()

	states := []domain.State{}
	for rows.Next() {
		var st domain.State
		if err := rows.Scan(&st.Name, &st.Description, &st.DwellDays); err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		states = append(states, st)
	}
	return states, rows.Err()
}

func (s *Store) loadTransitions(ctx context.Context, id string) ([]domain.Transition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT from_state, to_state, trigger_name, probability, channel, content_brief
		FROM transitions WHERE journey_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer rows.Close()

	transitions := []domain.Transition{}
	for rows.Next() {
		var tr domain.Transition
		if err := rows.Scan(&tr.FromState, &tr.ToState, &tr.Trigger, &tr.Probability, &tr.Channel, &tr.ContentBrief); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		transitions = append(transitions, tr)
	}
	return transitions, rows.Err()
}

// Delete removes a journey with its states and transitions.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := deleteChildren(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM journeys WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	if n == 0 {
		return domain.ErrJourneyNotFound
	}
	return tx.Commit()
}

// List returns all journey IDs in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM journeys ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan journey id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ChannelUsage counts transitions per channel across every stored journey.
func (s *Store) ChannelUsage(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT channel, COUNT(*) FROM transitions GROUP BY channel`)
	if err != nil {
		return nil, fmt.Errorf("failed to query channel usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[string]int)
	for rows.Next() {
		var ch string
		var n int
		if err := rows.Scan(&ch, &n); err != nil {
			return nil, fmt.Errorf("failed to scan channel usage: %w", err)
		}
		usage[ch] = n
	}
	return usage, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func deleteChildren(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM states WHERE journey_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete states: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM transitions WHERE journey_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete transitions: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}
