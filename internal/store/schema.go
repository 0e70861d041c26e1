package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS monthly_summaries (
    workbook_path        TEXT NOT NULL,
    year                 INTEGER NOT NULL,
    options_key          TEXT NOT NULL,
    month                INTEGER NOT NULL,
    event_count          INTEGER NOT NULL,
    confirmed_count      INTEGER NOT NULL,
    average_price        REAL,
    revenue              REAL NOT NULL,
    variable_cost_total  REAL NOT NULL,
    fixed_costs          REAL NOT NULL,
    pizza_addons         INTEGER NOT NULL,
    pizza_margin         REAL NOT NULL,
    net_profit           REAL NOT NULL,
    arpu                 REAL,
    booking_ratio        REAL,
    retro_adoption       REAL,
    new_reviews          REAL NOT NULL,
    computed_at          TEXT NOT NULL,
    PRIMARY KEY (workbook_path, year, options_key, month)
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT NOT NULL,
    year                 INTEGER NOT NULL,
    options_key          TEXT NOT NULL,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL,
    PRIMARY KEY (file_path, year, options_key)
);
`
