package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"tourapi/internal/logging"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id                     UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name                   TEXT        NOT NULL,
  email                  TEXT        NOT NULL UNIQUE,
  photo                  TEXT        NOT NULL DEFAULT 'default.jpg',
  role                   TEXT        NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'guide', 'lead-guide', 'admin')),
  password_hash          TEXT        NOT NULL,
  password_changed_at    TIMESTAMPTZ,
  password_reset_token   TEXT,
  password_reset_expires TIMESTAMPTZ,
  active                 BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_tours",
		SQL: `CREATE TABLE IF NOT EXISTS tours (
  id                  UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  name                TEXT          NOT NULL UNIQUE CHECK (char_length(name) BETWEEN 10 AND 40),
  slug                TEXT          NOT NULL,
  duration            INTEGER       NOT NULL CHECK (duration > 0),
  max_group_size      INTEGER       NOT NULL CHECK (max_group_size > 0),
  difficulty          TEXT          NOT NULL CHECK (difficulty IN ('easy', 'medium', 'difficult')),
  ratings_average     DOUBLE PRECISION NOT NULL DEFAULT 4.5 CHECK (ratings_average BETWEEN 1 AND 5),
  ratings_quantity    INTEGER       NOT NULL DEFAULT 0,
  price               DOUBLE PRECISION NOT NULL CHECK (price > 0),
  price_discount      DOUBLE PRECISION,
  summary             TEXT          NOT NULL,
  description         TEXT          NOT NULL DEFAULT '',
  image_cover         TEXT          NOT NULL,
  images              JSONB         NOT NULL DEFAULT '[]',
  start_dates         JSONB         NOT NULL DEFAULT '[]',
  premium_tour        BOOLEAN       NOT NULL DEFAULT FALSE,
  start_location      JSONB         NOT NULL DEFAULT '{}',
  start_lng           DOUBLE PRECISION,
  start_lat           DOUBLE PRECISION,
  locations           JSONB         NOT NULL DEFAULT '[]',
  created_at          TIMESTAMPTZ   NOT NULL DEFAULT now(),
  CONSTRAINT tours_price_discount_check CHECK (price_discount IS NULL OR price_discount < price)
);`,
	},
	{
		Name: "create_table_tour_guides",
		SQL: `CREATE TABLE IF NOT EXISTS tour_guides (
  tour_id  UUID    NOT NULL REFERENCES tours (id) ON DELETE CASCADE,
  user_id  UUID    NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (tour_id, user_id)
);`,
	},
	{
		Name: "create_table_reviews",
		SQL: `CREATE TABLE IF NOT EXISTS reviews (
  id         UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  review     TEXT        NOT NULL CHECK (char_length(review) <= 50),
  rating     INTEGER     NOT NULL CHECK (rating BETWEEN 1 AND 5),
  tour_id    UUID        NOT NULL REFERENCES tours (id) ON DELETE CASCADE,
  user_id    UUID        NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT reviews_tour_user_key UNIQUE (tour_id, user_id)
);`,
	},
	{
		Name: "create_table_bookings",
		SQL: `CREATE TABLE IF NOT EXISTS bookings (
  id         UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  tour_id    UUID          NOT NULL REFERENCES tours (id) ON DELETE CASCADE,
  user_id    UUID          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  price      DOUBLE PRECISION NOT NULL CHECK (price > 0),
  paid       BOOLEAN       NOT NULL DEFAULT TRUE,
  checkout_session_id TEXT UNIQUE,
  created_at TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_tours_price_ratings",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tours_price_ratings ON tours (price, ratings_average DESC);`,
	},
	{
		Name: "create_index_tours_slug",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tours_slug ON tours (slug);`,
	},
	{
		Name: "create_index_tours_start_location",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_tours_start_location ON tours (start_lat, start_lng);`,
	},
	{
		Name: "create_index_reviews_tour",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_reviews_tour_id ON reviews (tour_id);`,
	},
	{
		Name: "create_index_bookings_user",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings (user_id);`,
	},
	{
		Name: "create_index_bookings_tour",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_bookings_tour_id ON bookings (tour_id);`,
	},
}

// Sentinel is the table whose presence means the schema is already in place.
const Sentinel = "public.bookings"

// EnsureMigrated checks for the sentinel table and runs every step when it is missing.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logging.Logger, dbHost string) error {
	start := time.Now()

	log.Info("", map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", Sentinel).Scan(&exists)
	if err != nil {
		log.Error("", err, map[string]any{
			"component":   "database",
			"event":       "db_migration_failed",
			"status":      "error",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration", map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	log.Info("", map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
		"steps":     len(steps),
	})

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("", err, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("", map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	log.Info("", map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}
