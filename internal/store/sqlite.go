package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hanatore/api/internal/domain"
	"github.com/hanatore/api/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // serializes session write transactions to prevent SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		display_name TEXT NOT NULL,
		preferred_modes_json TEXT,
		level INTEGER NOT NULL,
		total_xp INTEGER NOT NULL,
		current_xp INTEGER NOT NULL,
		xp_to_next_level INTEGER NOT NULL,
		current_streak INTEGER NOT NULL,
		longest_streak INTEGER NOT NULL,
		last_training_date INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		training_type TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		completed_at INTEGER,
		total_xp_earned INTEGER NOT NULL DEFAULT 0,
		questions_count INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_user_completed
		ON sessions(user_id, completed_at) WHERE completed_at IS NOT NULL;

	CREATE TABLE IF NOT EXISTS answers (
		answer_id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(session_id),
		question_id TEXT NOT NULL,
		content TEXT NOT NULL,
		score INTEGER NOT NULL,
		specificity INTEGER NOT NULL,
		structure INTEGER NOT NULL,
		persuasiveness INTEGER NOT NULL,
		feedback TEXT NOT NULL,
		improvements_json TEXT,
		xp_earned INTEGER NOT NULL,
		time_spent_seconds INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_answers_session ON answers(session_id, created_at);

	CREATE TABLE IF NOT EXISTS league_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		league_id TEXT NOT NULL,
		tier TEXT NOT NULL,
		final_rank INTEGER NOT NULL,
		weekly_xp INTEGER NOT NULL,
		total_participants INTEGER NOT NULL,
		promoted INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_league_results_user ON league_results(user_id, created_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// GetUser retrieves a user by id.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT user_id, email, display_name, preferred_modes_json,
		       level, total_xp, current_xp, xp_to_next_level,
		       current_streak, longest_streak, last_training_date,
		       created_at, updated_at
		FROM users WHERE user_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID)

	var user domain.User
	var modesJSON sql.NullString
	var lastTraining sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(
		&user.UserID, &user.Email, &user.DisplayName, &modesJSON,
		&user.Progress.Level, &user.Progress.TotalXp, &user.Progress.CurrentXp,
		&user.Progress.XpToNextLevel, &user.Progress.CurrentStreak,
		&user.Progress.LongestStreak, &lastTraining,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan user row: %w", err)
	}

	if modesJSON.Valid && modesJSON.String != "" {
		if err := json.Unmarshal([]byte(modesJSON.String), &user.PreferredModes); err != nil {
			return nil, fmt.Errorf("decode preferred modes: %w", err)
		}
	}
	if lastTraining.Valid {
		t := time.Unix(lastTraining.Int64, 0)
		user.Progress.LastTrainingDate = &t
	}
	user.CreatedAt = time.Unix(createdAt, 0)
	user.UpdatedAt = time.Unix(updatedAt, 0)

	return &user, nil
}

// UpsertUser creates or updates a user record.
func (s *SQLiteStore) UpsertUser(ctx context.Context, user *domain.User) error {
	var modesJSON interface{}
	if len(user.PreferredModes) > 0 {
		data, err := json.Marshal(user.PreferredModes)
		if err != nil {
			return fmt.Errorf("encode preferred modes: %w", err)
		}
		modesJSON = string(data)
	}

	var lastTraining interface{}
	if user.Progress.LastTrainingDate != nil {
		lastTraining = user.Progress.LastTrainingDate.Unix()
	}

	query := `
	INSERT INTO users (user_id, email, display_name, preferred_modes_json,
		level, total_xp, current_xp, xp_to_next_level,
		current_streak, longest_streak, last_training_date,
		created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		email = excluded.email,
		display_name = excluded.display_name,
		preferred_modes_json = excluded.preferred_modes_json,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		user.UserID, user.Email, user.DisplayName, modesJSON,
		user.Progress.Level, user.Progress.TotalXp, user.Progress.CurrentXp,
		user.Progress.XpToNextLevel, user.Progress.CurrentStreak,
		user.Progress.LongestStreak, lastTraining,
		user.CreatedAt.Unix(), user.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// UpdateProgress overwrites the progress columns for a user.
func (s *SQLiteStore) UpdateProgress(ctx context.Context, userID string, p domain.UserProgress) error {
	var lastTraining interface{}
	if p.LastTrainingDate != nil {
		lastTraining = p.LastTrainingDate.Unix()
	}

	query := `
	UPDATE users SET
		level = ?, total_xp = ?, current_xp = ?, xp_to_next_level = ?,
		current_streak = ?, longest_streak = ?, last_training_date = ?,
		updated_at = ?
	WHERE user_id = ?`

	result, err := s.db.ExecContext(ctx, query,
		p.Level, p.TotalXp, p.CurrentXp, p.XpToNextLevel,
		p.CurrentStreak, p.LongestStreak, lastTraining,
		time.Now().Unix(), userID,
	)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update progress: user %s not found", userID)
	}
	return nil
}

// CreateSession persists a newly started session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	query := `
	INSERT INTO sessions (session_id, user_id, mode, training_type, started_at,
		completed_at, total_xp_earned, questions_count)
	VALUES (?, ?, ?, ?, ?, NULL, 0, 0)`

	_, err := s.db.ExecContext(ctx, query,
		session.ID, session.UserID, string(session.Mode), string(session.TrainingType),
		session.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session with its answers.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT session_id, user_id, mode, training_type, started_at,
		       completed_at, total_xp_earned, questions_count
		FROM sessions WHERE session_id = ?`

	row := s.db.QueryRowContext(ctx, query, sessionID)

	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	answers, err := s.loadAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Answers = answers

	return session, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var mode, trainingType string
	var startedAt int64
	var completedAt sql.NullInt64

	err := row.Scan(
		&session.ID, &session.UserID, &mode, &trainingType, &startedAt,
		&completedAt, &session.TotalXpEarned, &session.QuestionsCount,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	session.Mode = domain.TrainingMode(mode)
	session.TrainingType = domain.TrainingType(trainingType)
	session.StartedAt = time.Unix(startedAt, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		session.CompletedAt = &t
	}
	return &session, nil
}

func (s *SQLiteStore) loadAnswers(ctx context.Context, sessionID string) ([]domain.Answer, error) {
	query := `
		SELECT answer_id, question_id, content, score,
		       specificity, structure, persuasiveness,
		       feedback, improvements_json, xp_earned,
		       time_spent_seconds, created_at
		FROM answers WHERE session_id = ? ORDER BY created_at, answer_id`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		var improvementsJSON sql.NullString
		var timeSpent sql.NullInt64
		var createdAt int64

		err := rows.Scan(
			&a.ID, &a.QuestionID, &a.Content, &a.Score,
			&a.ScoreDetail.Specificity, &a.ScoreDetail.Structure,
			&a.ScoreDetail.Persuasiveness,
			&a.Feedback, &improvementsJSON, &a.XpEarned,
			&timeSpent, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan answer row: %w", err)
		}

		if improvementsJSON.Valid && improvementsJSON.String != "" {
			if err := json.Unmarshal([]byte(improvementsJSON.String), &a.Improvements); err != nil {
				return nil, fmt.Errorf("decode improvements: %w", err)
			}
		}
		if timeSpent.Valid {
			n := int(timeSpent.Int64)
			a.TimeSpentSeconds = &n
		}
		a.CreatedAt = time.Unix(createdAt, 0)
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate answers: %w", err)
	}
	return answers, nil
}

// InsertAnswer appends an answer and updates the session totals in one
// transaction. Retries once on SQLite concurrency errors.
func (s *SQLiteStore) InsertAnswer(ctx context.Context, sessionID string, answer *domain.Answer) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	err := s.insertAnswerTx(ctx, sessionID, answer)
	if shared.IsSQLiteConflictError(err) {
		err = s.insertAnswerTx(ctx, sessionID, answer)
	}
	return err
}

func (s *SQLiteStore) insertAnswerTx(ctx context.Context, sessionID string, answer *domain.Answer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	var improvementsJSON interface{}
	if len(answer.Improvements) > 0 {
		data, err := json.Marshal(answer.Improvements)
		if err != nil {
			return fmt.Errorf("encode improvements: %w", err)
		}
		improvementsJSON = string(data)
	}

	var timeSpent interface{}
	if answer.TimeSpentSeconds != nil {
		timeSpent = *answer.TimeSpentSeconds
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO answers (answer_id, session_id, question_id, content, score,
			specificity, structure, persuasiveness, feedback, improvements_json,
			xp_earned, time_spent_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		answer.ID, sessionID, answer.QuestionID, answer.Content, answer.Score,
		answer.ScoreDetail.Specificity, answer.ScoreDetail.Structure,
		answer.ScoreDetail.Persuasiveness, answer.Feedback, improvementsJSON,
		answer.XpEarned, timeSpent, answer.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE sessions SET
			total_xp_earned = total_xp_earned + ?,
			questions_count = questions_count + 1
		WHERE session_id = ? AND completed_at IS NULL`,
		answer.XpEarned, sessionID,
	)
	if err != nil {
		return fmt.Errorf("update session totals: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update session totals: session %s not open", sessionID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit answer: %w", err)
	}
	return nil
}

// CompleteSession stamps the completion time on an open session.
func (s *SQLiteStore) CompleteSession(ctx context.Context, sessionID string, completedAt time.Time) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	result, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET completed_at = ?
		WHERE session_id = ? AND completed_at IS NULL`,
		completedAt.Unix(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("complete session: session %s not open", sessionID)
	}
	return nil
}

// ListCompletedSessions returns a page of completed sessions, most
// recent first, with answers loaded.
func (s *SQLiteStore) ListCompletedSessions(ctx context.Context, userID string, limit, offset int) ([]*domain.Session, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sessions
		WHERE user_id = ? AND completed_at IS NOT NULL`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count completed sessions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, user_id, mode, training_type, started_at,
		       completed_at, total_xp_earned, questions_count
		FROM sessions
		WHERE user_id = ? AND completed_at IS NOT NULL
		ORDER BY completed_at DESC, session_id
		LIMIT ? OFFSET ?`, userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query completed sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate sessions: %w", err)
	}

	for _, session := range sessions {
		answers, err := s.loadAnswers(ctx, session.ID)
		if err != nil {
			return nil, 0, err
		}
		session.Answers = answers
	}

	return sessions, total, nil
}

// SumWeeklyXp totals the XP earned from sessions completed in [from, to].
func (s *SQLiteStore) SumWeeklyXp(ctx context.Context, userID string, from, to time.Time) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_xp_earned), 0) FROM sessions
		WHERE user_id = ? AND completed_at BETWEEN ? AND ?`,
		userID, from.Unix(), to.Unix(),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum weekly xp: %w", err)
	}
	return total, nil
}

// InsertLeagueResult records a finished week's league outcome.
func (s *SQLiteStore) InsertLeagueResult(ctx context.Context, userID string, result *domain.LeagueResult) error {
	promoted := 0
	if result.Promoted {
		promoted = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO league_results (user_id, league_id, tier, final_rank,
			weekly_xp, total_participants, promoted, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, result.LeagueID, string(result.Tier), result.FinalRank,
		result.WeeklyXp, result.TotalParticipants, promoted, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert league result: %w", err)
	}
	return nil
}

// ListLeagueResults returns past league outcomes, most recent first.
func (s *SQLiteStore) ListLeagueResults(ctx context.Context, userID string) ([]*domain.LeagueResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT league_id, tier, final_rank, weekly_xp, total_participants, promoted
		FROM league_results
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query league results: %w", err)
	}
	defer rows.Close()

	var results []*domain.LeagueResult
	for rows.Next() {
		var r domain.LeagueResult
		var tier string
		var promoted int
		if err := rows.Scan(&r.LeagueID, &tier, &r.FinalRank, &r.WeeklyXp, &r.TotalParticipants, &promoted); err != nil {
			return nil, fmt.Errorf("scan league result row: %w", err)
		}
		r.Tier = domain.LeagueTier(tier)
		r.Promoted = promoted == 1
		results = append(results, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate league results: %w", err)
	}
	return results, nil
}
