package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver

	"braindrop/internal/domain"
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single writer keeps the whole-state write-through serial.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// HasProfile reports whether a profile row has ever been saved. A fresh
// database has none, which callers use to apply first-run defaults.
func (db *DB) HasProfile() (bool, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM profile`).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check profile: %w", err)
	}
	return n > 0, nil
}

// LoadState reads the whole persisted state. An empty database yields a
// defaulted state; a partially populated one fills the gaps with defaults
// so a missing or torn save never prevents startup.
func (db *DB) LoadState(now time.Time) (*domain.State, error) {
	state := domain.DefaultState(now)

	if err := db.loadProfile(state); err != nil {
		return nil, err
	}
	if err := db.loadOwned(state); err != nil {
		return nil, err
	}
	if err := db.loadDecks(state); err != nil {
		return nil, err
	}
	ensureBaselineCosmetics(state)
	return state, nil
}

func (db *DB) loadProfile(state *domain.State) error {
	var (
		equippedJSON string
		statsJSON    string
	)
	row := db.conn.QueryRow(`
		SELECT gold, new_per_day, reviews_per_day, exam_date,
		       studied_date, studied_new, studied_reviews, equipped, stats
		FROM profile WHERE id = 1
	`)
	err := row.Scan(
		&state.Gold,
		&state.Settings.NewPerDay,
		&state.Settings.ReviewsPerDay,
		&state.Settings.ExamDate,
		&state.Studied.Date,
		&state.Studied.NewCards,
		&state.Studied.Reviews,
		&equippedJSON,
		&statsJSON,
	)
	if err == sql.ErrNoRows {
		return nil // first run, defaults stand
	}
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}

	// Corrupted blobs fall back to defaults rather than failing the load.
	var equipped map[domain.CosmeticType]string
	if json.Unmarshal([]byte(equippedJSON), &equipped) == nil && equipped != nil {
		state.Equipped = equipped
	}
	var stats domain.Statistics
	if json.Unmarshal([]byte(statsJSON), &stats) == nil {
		state.Stats = stats
	}
	return nil
}

func (db *DB) loadOwned(state *domain.State) error {
	rows, err := db.conn.Query(`SELECT id FROM owned_cosmetics ORDER BY id`)
	if err != nil {
		return fmt.Errorf("failed to load owned cosmetics: %w", err)
	}
	defer rows.Close()

	var owned []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan cosmetic row: %w", err)
		}
		owned = append(owned, id)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate cosmetic rows: %w", err)
	}
	if owned != nil {
		state.Owned = owned
	}
	return nil
}

func (db *DB) loadDecks(state *domain.State) error {
	rows, err := db.conn.Query(`SELECT id, name, icon FROM decks ORDER BY position`)
	if err != nil {
		return fmt.Errorf("failed to load decks: %w", err)
	}
	defer rows.Close()

	var decks []domain.Deck
	for rows.Next() {
		var d domain.Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.Icon); err != nil {
			return fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate deck rows: %w", err)
	}

	for i := range decks {
		cards, err := db.loadCards(decks[i].ID)
		if err != nil {
			return err
		}
		decks[i].Cards = cards
	}
	state.Decks = decks
	return nil
}

func (db *DB) loadCards(deckID string) ([]domain.Card, error) {
	rows, err := db.conn.Query(`
		SELECT id, prompt, answer, option_a, option_b, option_c, option_d,
		       correct_option, ease, interval_days, reps, lapses, due_date,
		       last_reviewed, seen_count, suspended, state
		FROM cards WHERE deck_id = ? ORDER BY position
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var (
			c            domain.Card
			lastReviewed sql.NullTime
		)
		err := rows.Scan(
			&c.ID,
			&c.Prompt,
			&c.Answer,
			&c.Options[0],
			&c.Options[1],
			&c.Options[2],
			&c.Options[3],
			&c.Correct,
			&c.Ease,
			&c.IntervalDays,
			&c.Reps,
			&c.Lapses,
			&c.DueDate,
			&lastReviewed,
			&c.SeenCount,
			&c.Suspended,
			&c.State,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row for deck %s: %w", deckID, err)
		}
		if lastReviewed.Valid {
			c.LastReviewed = lastReviewed.Time
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate card rows for deck %s: %w", deckID, err)
	}
	return cards, nil
}

// SaveState writes the whole state in one transaction. The scheduling
// logic always reads in-memory state, so a whole-state write keeps the
// persisted copy from ever being observed half-updated.
func (db *DB) SaveState(state *domain.State) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM cards`,
		`DELETE FROM decks`,
		`DELETE FROM owned_cosmetics`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to clear tables: %w", err)
		}
	}

	for pos, deck := range state.Decks {
		if _, err := tx.Exec(`
			INSERT INTO decks (id, name, icon, position) VALUES (?, ?, ?, ?)
		`, deck.ID, deck.Name, deck.Icon, pos); err != nil {
			return fmt.Errorf("failed to insert deck %s: %w", deck.ID, err)
		}
		for cpos, c := range deck.Cards {
			lastReviewed := sql.NullTime{Time: c.LastReviewed, Valid: !c.LastReviewed.IsZero()}
			if _, err := tx.Exec(`
				INSERT INTO cards (
					id, deck_id, position, prompt, answer,
					option_a, option_b, option_c, option_d, correct_option,
					ease, interval_days, reps, lapses, due_date,
					last_reviewed, seen_count, suspended, state
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				c.ID, deck.ID, cpos, c.Prompt, c.Answer,
				c.Options[0], c.Options[1], c.Options[2], c.Options[3], string(c.Correct),
				c.Ease, c.IntervalDays, c.Reps, c.Lapses, c.DueDate,
				lastReviewed, c.SeenCount, c.Suspended, string(c.State),
			); err != nil {
				return fmt.Errorf("failed to insert card %s/%s: %w", deck.ID, c.ID, err)
			}
		}
	}

	for _, id := range state.Owned {
		if _, err := tx.Exec(`INSERT OR IGNORE INTO owned_cosmetics (id) VALUES (?)`, id); err != nil {
			return fmt.Errorf("failed to insert cosmetic %s: %w", id, err)
		}
	}

	equippedJSON, err := json.Marshal(state.Equipped)
	if err != nil {
		return fmt.Errorf("failed to encode equipped cosmetics: %w", err)
	}
	statsJSON, err := json.Marshal(state.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode statistics: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO profile (
			id, gold, new_per_day, reviews_per_day, exam_date,
			studied_date, studied_new, studied_reviews, equipped, stats
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			gold = excluded.gold,
			new_per_day = excluded.new_per_day,
			reviews_per_day = excluded.reviews_per_day,
			exam_date = excluded.exam_date,
			studied_date = excluded.studied_date,
			studied_new = excluded.studied_new,
			studied_reviews = excluded.studied_reviews,
			equipped = excluded.equipped,
			stats = excluded.stats
	`,
		state.Gold,
		state.Settings.NewPerDay,
		state.Settings.ReviewsPerDay,
		state.Settings.ExamDate,
		state.Studied.Date,
		state.Studied.NewCards,
		state.Studied.Reviews,
		string(equippedJSON),
		string(statsJSON),
	); err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit save transaction: %w", err)
	}
	return nil
}

// ensureBaselineCosmetics guarantees the free defaults exist regardless
// of how old the save is.
func ensureBaselineCosmetics(state *domain.State) {
	for _, id := range domain.DefaultOwned {
		if !state.Owns(id) {
			state.Owned = append(state.Owned, id)
		}
	}
	if state.Equipped == nil {
		state.Equipped = map[domain.CosmeticType]string{}
	}
	if state.Equipped[domain.CosmeticColor] == "" {
		state.Equipped[domain.CosmeticColor] = domain.CosmeticBaseColor
	}
}
