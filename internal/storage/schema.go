package storage

const schema = `
-- Deck content plus per-card learner progress. Content columns are
-- overwritten on catalog sync; progress columns only ever change through
-- review updates or manual resets.
CREATE TABLE IF NOT EXISTS decks (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    icon TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cards (
    id TEXT NOT NULL,
    deck_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    prompt TEXT NOT NULL,
    answer TEXT NOT NULL,
    option_a TEXT NOT NULL,
    option_b TEXT NOT NULL,
    option_c TEXT NOT NULL,
    option_d TEXT NOT NULL,
    correct_option TEXT NOT NULL,
    ease REAL NOT NULL,
    interval_days REAL NOT NULL,
    reps INTEGER NOT NULL,
    lapses INTEGER NOT NULL,
    due_date DATETIME NOT NULL,
    last_reviewed DATETIME,
    seen_count INTEGER NOT NULL,
    suspended INTEGER NOT NULL,
    state TEXT NOT NULL,

    PRIMARY KEY (deck_id, id),
    FOREIGN KEY(deck_id) REFERENCES decks(id) ON DELETE CASCADE
);

-- Singleton profile row: settings, daily counters, gold, equipped
-- cosmetics and aggregate statistics (the latter two as JSON blobs).
CREATE TABLE IF NOT EXISTS profile (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    gold INTEGER NOT NULL,
    new_per_day INTEGER NOT NULL,
    reviews_per_day INTEGER NOT NULL,
    exam_date DATETIME NOT NULL,
    studied_date TEXT NOT NULL,
    studied_new INTEGER NOT NULL,
    studied_reviews INTEGER NOT NULL,
    equipped TEXT NOT NULL,
    stats TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS owned_cosmetics (
    id TEXT PRIMARY KEY
);
`
