package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS food_log (
    seq                  INTEGER PRIMARY KEY AUTOINCREMENT,
    id                   TEXT NOT NULL UNIQUE,
    meal_name            TEXT NOT NULL,
    calories             REAL NOT NULL DEFAULT 0,
    protein              REAL NOT NULL DEFAULT 0,
    carbohydrates        REAL NOT NULL DEFAULT 0,
    fat                  REAL NOT NULL DEFAULT 0,
    sugar                REAL NOT NULL DEFAULT 0,
    source               TEXT NOT NULL DEFAULT 'manual',
    logged_at            TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analysis_cache (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    meal_name            TEXT NOT NULL,
    calories             REAL NOT NULL DEFAULT 0,
    protein              REAL NOT NULL DEFAULT 0,
    carbohydrates        REAL NOT NULL DEFAULT 0,
    fat                  REAL NOT NULL DEFAULT 0,
    sugar                REAL NOT NULL DEFAULT 0,
    analyzed_at          TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_food_log_logged ON food_log(logged_at);
`
