package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shreyas/tweetsched/scheduler/post"
)

const createScheduledPostsTable = `CREATE TABLE IF NOT EXISTS scheduled_posts (
	account        TEXT    NOT NULL,
	scheduled_time BIGINT  NOT NULL,
	modified_time  BIGINT  NOT NULL,
	text           TEXT    NOT NULL,
	is_posted      BOOLEAN NOT NULL DEFAULT FALSE,
	remote_post_id TEXT,
	PRIMARY KEY (account, scheduled_time)
)`

const scheduledPostColumns = `account, scheduled_time, modified_time, text, is_posted, remote_post_id`

// PostgresStore keeps scheduled posts in the scheduled_posts table
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the table if needed and returns the store
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	s := &PostgresStore{pool: pool}
	if _, err := pool.Exec(ctx, createScheduledPostsTable); err != nil {
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}
	return s, nil
}

func scanPost(row pgx.Row) (*post.ScheduledPost, error) {
	var p post.ScheduledPost
	var remotePostID *string
	if err := row.Scan(&p.Account, &p.ScheduledTime, &p.ModifiedTime, &p.Text, &p.IsPosted, &remotePostID); err != nil {
		return nil, err
	}
	if remotePostID != nil {
		p.RemotePostID = *remotePostID
	}
	return &p, nil
}

// Put reads the current row under lock and upserts p in one transaction
func (s *PostgresStore) Put(ctx context.Context, p post.ScheduledPost) (*post.ScheduledPost, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	previous, err := scanPost(tx.QueryRow(ctx,
		`SELECT `+scheduledPostColumns+` FROM scheduled_posts WHERE account = $1 AND scheduled_time = $2 FOR UPDATE`,
		p.Account, p.ScheduledTime))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to read current post: %w", err)
		}
		previous = nil
	}

	var remotePostID *string
	if p.IsPosted && p.RemotePostID != "" {
		remotePostID = &p.RemotePostID
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO scheduled_posts (`+scheduledPostColumns+`) VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (account, scheduled_time) DO UPDATE SET
		 modified_time = EXCLUDED.modified_time,
		 text = EXCLUDED.text,
		 is_posted = EXCLUDED.is_posted,
		 remote_post_id = EXCLUDED.remote_post_id`,
		p.Account, p.ScheduledTime, p.ModifiedTime, p.Text, p.IsPosted, remotePostID)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert scheduled post: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit scheduled post: %w", err)
	}
	return previous, nil
}

// Get retrieves a single post
func (s *PostgresStore) Get(ctx context.Context, account string, scheduledTime int64) (*post.ScheduledPost, error) {
	p, err := scanPost(s.pool.QueryRow(ctx,
		`SELECT `+scheduledPostColumns+` FROM scheduled_posts WHERE account = $1 AND scheduled_time = $2`,
		account, scheduledTime))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%d", post.ErrNotFound, account, scheduledTime)
		}
		return nil, fmt.Errorf("failed to get scheduled post: %w", err)
	}
	return p, nil
}

// postgresRangeQuery builds the SELECT for the unposted rows of account inside r
func postgresRangeQuery(account string, r post.QueryRange) (string, []interface{}) {
	conditions := []string{"account = $1", "is_posted = FALSE"}
	args := []interface{}{account}
	if r.From != nil {
		args = append(args, *r.From)
		conditions = append(conditions, fmt.Sprintf("scheduled_time >= $%d", len(args)))
	}
	if r.To != nil {
		args = append(args, *r.To)
		conditions = append(conditions, fmt.Sprintf("scheduled_time <= $%d", len(args)))
	}

	return `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE ` + strings.Join(conditions, " AND ") + ` ORDER BY scheduled_time`, args
}

// Query selects the unposted rows of account inside r
func (s *PostgresStore) Query(ctx context.Context, account string, r post.QueryRange) ([]post.ScheduledPost, error) {
	sql, args := postgresRangeQuery(account, r)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled posts: %w", err)
	}
	defer rows.Close()

	posts := []post.ScheduledPost{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scheduled post: %w", err)
		}
		posts = append(posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scheduled posts: %w", err)
	}
	return posts, nil
}

// SetPosted flags an existing row as posted
func (s *PostgresStore) SetPosted(ctx context.Context, account string, scheduledTime int64, remotePostID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scheduled_posts SET is_posted = TRUE, remote_post_id = $3 WHERE account = $1 AND scheduled_time = $2`,
		account, scheduledTime, remotePostID)
	if err != nil {
		return fmt.Errorf("failed to mark post as posted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%d", post.ErrNotFound, account, scheduledTime)
	}
	return nil
}

// Delete removes an existing row
func (s *PostgresStore) Delete(ctx context.Context, account string, scheduledTime int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM scheduled_posts WHERE account = $1 AND scheduled_time = $2`,
		account, scheduledTime)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%d", post.ErrNotFound, account, scheduledTime)
	}
	return nil
}

// Ping checks if the database answers
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
