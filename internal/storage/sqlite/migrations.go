package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// table_guests.guest_id and guests.table_assignment are not foreign keys:
// dangling references are reported by validation instead.
const schema = `
CREATE TABLE IF NOT EXISTS events (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS venue_tables (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    name TEXT NOT NULL,
    capacity INTEGER NOT NULL CHECK (capacity > 0),
    is_locked INTEGER NOT NULL DEFAULT 0,
    pos_x REAL NOT NULL DEFAULT 0,
    pos_y REAL NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS guests (
    id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL,
    name TEXT NOT NULL,
    relationship_type TEXT NOT NULL,
    side TEXT NOT NULL,
    rsvp_status TEXT NOT NULL,
    additional_guest_count INTEGER NOT NULL DEFAULT 0 CHECK (additional_guest_count >= 0),
    table_assignment TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS guest_dietary (
    guest_id TEXT NOT NULL,
    restriction TEXT NOT NULL,
    PRIMARY KEY (guest_id, restriction),
    FOREIGN KEY (guest_id) REFERENCES guests(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS table_guests (
    table_id TEXT NOT NULL,
    guest_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    PRIMARY KEY (table_id, guest_id),
    FOREIGN KEY (table_id) REFERENCES venue_tables(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_venue_tables_event_id ON venue_tables(event_id);
CREATE INDEX IF NOT EXISTS idx_guests_event_id ON guests(event_id);
CREATE INDEX IF NOT EXISTS idx_guest_dietary_guest_id ON guest_dietary(guest_id);
CREATE INDEX IF NOT EXISTS idx_table_guests_table_id ON table_guests(table_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
