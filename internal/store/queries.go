package store

// SQL query constants. All SQL lives here; PostgresStore methods reference
// these constants.

// Session queries.
const (
	queryLoadSession = `
		SELECT data
		FROM sessions
		WHERE id = $1 AND expires_at > now()`

	queryUpsertSession = `
		INSERT INTO sessions (id, data, expires_at, created_at, updated_at)
		VALUES (@id, @data, @expires_at, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			data = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()`

	queryDeleteSession = `DELETE FROM sessions WHERE id = $1`

	queryPurgeExpiredSessions = `DELETE FROM sessions WHERE expires_at <= now()`
)
