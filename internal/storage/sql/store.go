package sql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bcnelson/yatube/internal/domain"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// isUniqueViolation checks if an error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// SQLite
	if strings.Contains(errStr, "UNIQUE constraint failed") {
		return true
	}
	// PostgreSQL
	if strings.Contains(errStr, "duplicate key value violates unique constraint") {
		return true
	}
	return false
}

// isForeignKeyViolation checks if an error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "violates foreign key constraint")
}

// wrapWriteError converts constraint violations to domain errors.
func wrapWriteError(err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrAlreadyExists
	case isForeignKeyViolation(err):
		return domain.ErrInvalidInput
	}
	return err
}

// gooseDialect maps a database/sql driver name to its goose dialect.
func gooseDialect(driver string) string {
	if driver == "pgx" {
		return "postgres"
	}
	return driver
}

// sqliteDSN turns on foreign key enforcement, which SQLite leaves off per connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// Store implements the storage.Storage interface using SQL.
type Store struct {
	db     *sqlx.DB
	driver string
}

// New creates a new SQL store and applies pending migrations.
// Supported drivers are sqlite3, postgres (lib/pq) and pgx.
func New(driver, dsn string) (*Store, error) {
	if driver == "sqlite3" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// Run migrations
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(gooseDialect(driver)); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the latest applied migration version.
func (s *Store) SchemaVersion() (int64, error) {
	return goose.GetDBVersion(s.db.DB)
}

// Reset rolls back every migration, dropping all tables.
func (s *Store) Reset() error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(gooseDialect(s.driver)); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return goose.Reset(s.db.DB, "migrations")
}

// ============================================
// Users
// ============================================

const userColumns = `id, username, full_name, email, password_hash, created_at, oidc_issuer, oidc_subject`

func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, full_name, email, password_hash, created_at, oidc_issuer, oidc_subject)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		user.ID, user.Username, user.FullName, user.Email, user.PasswordHash, user.CreatedAt,
		user.OIDCIssuer, user.OIDCSubject)
	return wrapWriteError(err)
}

func (s *Store) getUserWhere(ctx context.Context, where string, args ...any) (*domain.User, error) {
	var user domain.User
	err := s.db.GetContext(ctx, &user,
		`SELECT `+userColumns+` FROM users WHERE `+where, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getUserWhere(ctx, `id = $1`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUserWhere(ctx, `username = $1`, username)
}

func (s *Store) GetUserByExternalID(ctx context.Context, issuer, subject string) (*domain.User, error) {
	if issuer == "" || subject == "" {
		return nil, domain.ErrNotFound
	}
	return s.getUserWhere(ctx, `oidc_issuer = $1 AND oidc_subject = $2`, issuer, subject)
}

// ============================================
// Groups
// ============================================

const groupColumns = `id, title, slug, description, created_at`

func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO post_groups (id, title, slug, description, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		group.ID, group.Title, group.Slug, group.Description, group.CreatedAt)
	return wrapWriteError(err)
}

func (s *Store) getGroupWhere(ctx context.Context, where string, arg any) (*domain.Group, error) {
	var group domain.Group
	err := s.db.GetContext(ctx, &group,
		`SELECT `+groupColumns+` FROM post_groups WHERE `+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (s *Store) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	return s.getGroupWhere(ctx, `id = $1`, id)
}

func (s *Store) GetGroupBySlug(ctx context.Context, slug string) (*domain.Group, error) {
	return s.getGroupWhere(ctx, `slug = $1`, slug)
}

func (s *Store) ListGroups(ctx context.Context) ([]*domain.Group, error) {
	groups := []*domain.Group{}
	err := s.db.SelectContext(ctx, &groups,
		`SELECT `+groupColumns+` FROM post_groups ORDER BY title`)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// DeleteGroup clears the group from its posts and removes it in one
// transaction, so posts survive without relying on the driver's
// foreign key settings.
func (s *Store) DeleteGroup(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE posts SET group_id = NULL WHERE group_id = $1`, id); err != nil {
		return fmt.Errorf("clearing group from posts: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM post_groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting deleted groups: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return tx.Commit()
}

// ============================================
// Posts
// ============================================

const postSelect = `SELECT p.id, p.text, p.pub_date, p.author_id, p.group_id,
	u.username AS author_username, u.full_name AS author_full_name,
	g.slug AS group_slug, g.title AS group_title
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN post_groups g ON g.id = p.group_id`

// postWhere builds the WHERE clause for a filter. Placeholders start at $1.
func postWhere(filter domain.PostFilter) (string, []any) {
	var conds []string
	var args []any
	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		conds = append(conds, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if filter.GroupID != "" {
		args = append(args, filter.GroupID)
		conds = append(conds, fmt.Sprintf("p.group_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posts (id, text, pub_date, author_id, group_id)
		 VALUES ($1, $2, $3, $4, $5)`,
		post.ID, post.Text, post.PubDate, post.AuthorID, post.GroupID)
	return wrapWriteError(err)
}

func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := s.db.GetContext(ctx, &post, postSelect+` WHERE p.id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE posts SET text = $1, group_id = $2 WHERE id = $3`,
		post.Text, post.GroupID, post.ID)
	if err != nil {
		return wrapWriteError(err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting updated posts: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) ListPosts(ctx context.Context, filter domain.PostFilter, offset, limit int) ([]*domain.Post, error) {
	where, args := postWhere(filter)
	query := postSelect + where + ` ORDER BY p.pub_date DESC, p.id DESC`
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	posts := []*domain.Post{}
	if err := s.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) CountPosts(ctx context.Context, filter domain.PostFilter) (int, error) {
	where, args := postWhere(filter)
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts p`+where, args...)
	return count, err
}
