package db

import "database/sql"

// MigrateUp creates the schema. The unique indexes on the natural keys are
// what makes scan acceptance idempotent: the pipeline treats a conflict on
// either of them as "already exists", so check-then-write races between
// concurrently discovered duplicates resolve at the store.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS videos (
    id            TEXT PRIMARY KEY,
    title         TEXT NOT NULL,
    description   TEXT NOT NULL DEFAULT '',
    creator       TEXT NOT NULL DEFAULT '',
    category      VARCHAR(20) NOT NULL,
    video_url     TEXT NOT NULL,
    thumbnail_url TEXT NOT NULL DEFAULT '',
    external_id   TEXT NOT NULL DEFAULT '',
    origin_url    TEXT NOT NULL,
    duration      DOUBLE PRECISION NOT NULL DEFAULT 0,
    views         BIGINT NOT NULL DEFAULT 0,
    clanks        BIGINT NOT NULL DEFAULT 0,
    epic_bots     BIGINT NOT NULL DEFAULT 0,
    system_errors BIGINT NOT NULL DEFAULT 0,
    status        VARCHAR(20) NOT NULL DEFAULT 'active',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
    upload_date   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	// Natural key constraints. external_id is empty for direct-hosted media,
	// so uniqueness is enforced only for non-empty values.
	constraints := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_videos_external_id
    ON videos(external_id) WHERE external_id <> ''`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_videos_origin_url
    ON videos(origin_url)`,
	}
	for _, stmt := range constraints {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	indexes := []string{
		// Fuzzy re-post check on the first 50 title characters
		`CREATE INDEX IF NOT EXISTS idx_videos_title_prefix
    ON videos(lower(substr(title, 1, 50)))`,
		// Read path: active videos by category, newest first
		`CREATE INDEX IF NOT EXISTS idx_videos_active_category
    ON videos(category, created_at DESC) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_videos_created_at
    ON videos(created_at DESC)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	// Constraint name must stay stable: the repository distinguishes
	// natural-key conflicts from other violations by name.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_videos_category'
    ) THEN
        ALTER TABLE videos ADD CONSTRAINT chk_videos_category
        CHECK (category IN ('fails', 'battles', 'highlights'));
    END IF;
END $$;
`)

	return nil
}

// MigrateDown rolls back the schema. Use with caution: this deletes all data.
func MigrateDown(db *sql.DB) error {
	_, err := db.Exec(`DROP TABLE IF EXISTS videos CASCADE`)
	return err
}
