// Package postgres implements the PostgreSQL persistence layer of the
// progression engine.
package postgres

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users_and_content",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_votes",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
		{
			Version: 3,
			Name:    "create_progression",
			UpSQL:   migration003Up,
			DownSQL: migration003Down,
		},
		{
			Version: 4,
			Name:    "seed_catalogs",
			UpSQL:   migration004Up,
			DownSQL: migration004Down,
		},
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: USERS AND CONTENT COUNTERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users table and content counter tables
-- Version: 001

-- Engine-owned columns of the shared user record. Identity and profile
-- fields live with the authentication/profile services; the engine stores
-- only what it mutates.
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    reputation INTEGER NOT NULL DEFAULT 0,
    xp INTEGER NOT NULL DEFAULT 0,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_login_date TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_xp CHECK (xp >= 0),
    CONSTRAINT valid_streaks CHECK (current_streak >= 0 AND longest_streak >= current_streak)
);

CREATE INDEX IF NOT EXISTS idx_users_reputation ON users(reputation DESC, id);

-- Content tables owned by the content service. The engine reads author_id
-- and adjusts the votes counter inside the ledger transaction.
CREATE TABLE IF NOT EXISTS questions (
    id UUID PRIMARY KEY,
    author_id UUID NOT NULL,
    votes INTEGER NOT NULL DEFAULT 0,
    answer_count INTEGER NOT NULL DEFAULT 0,
    accepted_answer_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_questions_author_id ON questions(author_id);
CREATE INDEX IF NOT EXISTS idx_questions_votes ON questions(author_id, votes DESC);

CREATE TABLE IF NOT EXISTS answers (
    id UUID PRIMARY KEY,
    question_id UUID NOT NULL,
    author_id UUID NOT NULL,
    votes INTEGER NOT NULL DEFAULT 0,
    accepted BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_answers_author_id ON answers(author_id);
CREATE INDEX IF NOT EXISTS idx_answers_question_id ON answers(question_id);

CREATE TABLE IF NOT EXISTS comments (
    id UUID PRIMARY KEY,
    author_id UUID NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_comments_author_id ON comments(author_id);
`

const migration001Down = `
DROP TABLE IF EXISTS comments;
DROP TABLE IF EXISTS answers;
DROP TABLE IF EXISTS questions;
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: VOTES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create the vote ledger
-- Version: 002

CREATE TABLE IF NOT EXISTS votes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    voter_id UUID NOT NULL,
    target_type VARCHAR(10) NOT NULL,
    target_id UUID NOT NULL,
    value SMALLINT NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_target_type CHECK (target_type IN ('question', 'answer')),
    CONSTRAINT valid_value CHECK (value IN (-1, 1)),

    -- At most one live vote per (voter, target). The ledger's whole
    -- concurrency story hangs on this index.
    CONSTRAINT uq_votes_voter_target UNIQUE (voter_id, target_type, target_id)
);

CREATE INDEX IF NOT EXISTS idx_votes_target ON votes(target_type, target_id);
CREATE INDEX IF NOT EXISTS idx_votes_voter ON votes(voter_id);
`

const migration002Down = `
DROP TABLE IF EXISTS votes;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: PROGRESSION TABLES
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create badge, achievement, and daily task tables
-- Version: 003

CREATE TABLE IF NOT EXISTS badges (
    id TEXT PRIMARY KEY,
    slug VARCHAR(50) NOT NULL UNIQUE,
    name VARCHAR(100) NOT NULL,
    tier VARCHAR(10) NOT NULL,
    criteria VARCHAR(50) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_tier CHECK (tier IN ('bronze', 'silver', 'gold'))
);

CREATE TABLE IF NOT EXISTS user_badges (
    user_id UUID NOT NULL,
    badge_id TEXT NOT NULL REFERENCES badges(id),
    awarded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT uq_user_badges UNIQUE (user_id, badge_id)
);

CREATE INDEX IF NOT EXISTS idx_user_badges_user ON user_badges(user_id);

CREATE TABLE IF NOT EXISTS achievements (
    id TEXT PRIMARY KEY,
    slug VARCHAR(50) NOT NULL UNIQUE,
    name VARCHAR(100) NOT NULL,
    criteria_type VARCHAR(20) NOT NULL,
    metric VARCHAR(50) NOT NULL DEFAULT '',
    target INTEGER NOT NULL,
    xp_reward INTEGER NOT NULL DEFAULT 0,

    CONSTRAINT valid_criteria_type CHECK (criteria_type IN ('count', 'threshold', 'streak', 'special')),
    CONSTRAINT valid_target CHECK (target > 0),
    CONSTRAINT valid_xp_reward CHECK (xp_reward >= 0)
);

CREATE TABLE IF NOT EXISTS user_achievements (
    user_id UUID NOT NULL,
    achievement_id TEXT NOT NULL REFERENCES achievements(id),
    progress INTEGER NOT NULL DEFAULT 0,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT uq_user_achievements UNIQUE (user_id, achievement_id)
);

CREATE INDEX IF NOT EXISTS idx_user_achievements_user ON user_achievements(user_id);

CREATE TABLE IF NOT EXISTS daily_tasks (
    id TEXT PRIMARY KEY,
    task_type VARCHAR(30) NOT NULL UNIQUE,
    name VARCHAR(100) NOT NULL,
    target INTEGER NOT NULL,
    xp_reward INTEGER NOT NULL DEFAULT 0,

    CONSTRAINT valid_task_target CHECK (target > 0),
    CONSTRAINT valid_task_xp CHECK (xp_reward >= 0)
);

-- One row per (user, task, calendar day); yesterday's rows simply stop
-- being read, no midnight reset job exists.
CREATE TABLE IF NOT EXISTS user_task_progress (
    user_id UUID NOT NULL,
    task_id TEXT NOT NULL REFERENCES daily_tasks(id),
    day DATE NOT NULL,
    progress INTEGER NOT NULL DEFAULT 0,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    completed_at TIMESTAMP WITH TIME ZONE,

    CONSTRAINT uq_user_task_day UNIQUE (user_id, task_id, day)
);

CREATE INDEX IF NOT EXISTS idx_user_task_progress_user_day ON user_task_progress(user_id, day);
`

const migration003Down = `
DROP TABLE IF EXISTS user_task_progress;
DROP TABLE IF EXISTS daily_tasks;
DROP TABLE IF EXISTS user_achievements;
DROP TABLE IF EXISTS achievements;
DROP TABLE IF EXISTS user_badges;
DROP TABLE IF EXISTS badges;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CATALOG SEEDS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Seed the fixed badge, achievement, and daily task catalogs
-- Version: 004

INSERT INTO badges (id, slug, name, tier, criteria) VALUES
    ('badge-first-question',    'first-question',    'First Question',    'bronze', 'first_question'),
    ('badge-first-answer',      'first-answer',      'First Answer',      'bronze', 'first_answer'),
    ('badge-commentator',       'commentator',       'Commentator',       'bronze', 'commentator'),
    ('badge-established',       'established',       'Established',       'bronze', 'established'),
    ('badge-curious-asker',     'curious-asker',     'Curious Asker',     'silver', 'curious_asker'),
    ('badge-accepted-answers',  'accepted-answers',  'Problem Solver',    'silver', 'accepted_answers'),
    ('badge-notable-question',  'notable-question',  'Notable Question',  'silver', 'notable_question'),
    ('badge-civic-duty',        'civic-duty',        'Civic Duty',        'gold',   'civic_duty'),
    ('badge-reputable',         'reputable',         'Reputable',         'gold',   'reputable')
ON CONFLICT (id) DO NOTHING;

INSERT INTO achievements (id, slug, name, criteria_type, metric, target, xp_reward) VALUES
    ('ach-first-steps',      'first-steps',      'First Steps',      'count',     'questions_authored', 1,    50),
    ('ach-inquisitive',      'inquisitive',      'Inquisitive',      'count',     'questions_authored', 25,   200),
    ('ach-helper',           'helper',           'Helper',           'count',     'answers_authored',   10,   150),
    ('ach-expert',           'expert',           'Expert',           'count',     'answers_accepted',   25,   500),
    ('ach-conversationalist','conversationalist','Conversationalist','count',     'comments_authored',  50,   100),
    ('ach-ballot-regular',   'ballot-regular',   'Ballot Regular',   'count',     'votes_cast',         250,  250),
    ('ach-grinder',          'grinder',          'Grinder',          'threshold', 'xp_total',           5000, 300),
    ('ach-week-streak',      'week-streak',      'Week Streak',      'streak',    '',                   7,    100),
    ('ach-month-streak',     'month-streak',     'Month Streak',     'streak',    '',                   30,   500)
ON CONFLICT (id) DO NOTHING;

INSERT INTO daily_tasks (id, task_type, name, target, xp_reward) VALUES
    ('task-cast-votes',     'cast_votes',     'Cast 3 votes',      3, 20),
    ('task-post-answers',   'post_answers',   'Post 2 answers',    2, 30),
    ('task-ask-question',   'ask_question',   'Ask a question',    1, 15),
    ('task-write-comments', 'write_comments', 'Write 3 comments',  3, 10),
    ('task-daily-login',    'daily_login',    'Log in today',      1, 5)
ON CONFLICT (id) DO NOTHING;
`

const migration004Down = `
DELETE FROM daily_tasks;
DELETE FROM achievements;
DELETE FROM badges;
`
