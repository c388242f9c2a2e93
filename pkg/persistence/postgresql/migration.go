package postgresql

// migrations returns the schema migrations keyed by version. The unique index
// on (schedule_id, fired_at, group_id) is what enforces at-most-once firing
// recording across concurrent publisher instances.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS products (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				price NUMERIC(12, 2) NOT NULL CHECK (price >= 0),
				stock INTEGER NOT NULL CHECK (stock >= 0),
				category TEXT NOT NULL DEFAULT '',
				image_url TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS groups (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL,
				platform_id TEXT NOT NULL DEFAULT '',
				url TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				active BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS publications (
				id UUID PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				image_url TEXT NOT NULL DEFAULT '',
				line_items JSONB NOT NULL DEFAULT '[]',
				status TEXT NOT NULL CHECK (status IN ('draft', 'active', 'paused')),
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS schedules (
				id UUID PRIMARY KEY,
				publication_id TEXT NOT NULL,
				group_ids JSONB NOT NULL DEFAULT '[]',
				recurrence TEXT NOT NULL CHECK (recurrence IN ('daily', 'weekly', 'monthly', 'custom')),
				interval_days INTEGER NOT NULL CHECK (interval_days >= 1),
				time_slots JSONB NOT NULL,
				posts_per_firing INTEGER NOT NULL CHECK (posts_per_firing >= 1),
				start_date TIMESTAMP WITH TIME ZONE NOT NULL,
				end_date TIMESTAMP WITH TIME ZONE,
				status TEXT NOT NULL CHECK (status IN ('active', 'paused', 'completed')),
				next_due_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_schedules_due
				ON schedules (next_due_at)
				WHERE status = 'active';

			CREATE TABLE IF NOT EXISTS firing_history (
				id UUID PRIMARY KEY,
				schedule_id TEXT NOT NULL,
				publication_id TEXT NOT NULL DEFAULT '',
				group_id TEXT NOT NULL DEFAULT '',
				fired_at TIMESTAMP WITH TIME ZONE NOT NULL,
				attempted_at TIMESTAMP WITH TIME ZONE NOT NULL,
				outcome TEXT NOT NULL CHECK (outcome IN ('succeeded', 'failed', 'skipped')),
				platform_post_id TEXT NOT NULL DEFAULT '',
				error_message TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE UNIQUE INDEX IF NOT EXISTS idx_firing_dedup
				ON firing_history (schedule_id, fired_at, group_id);

			CREATE INDEX IF NOT EXISTS idx_firing_schedule
				ON firing_history (schedule_id, fired_at);
		`,
	}
}
