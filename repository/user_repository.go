package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"submerge/model"
)

// UserRepository defines the interface for user account and profile data.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error)
	CreateProfile(ctx context.Context, user *model.User) error
	SaveFollowing(ctx context.Context, userID int64, following []int64) error
	SaveFollowers(ctx context.Context, musicianID int64, followers []int64) error
	IncrementPostsCount(ctx context.Context, musicianID int64) error
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, email, password_hash, display_name, user_type, about, followers, followers_count, posts_count, following_musicians, favorite_genres, created_at, updated_at"

// CreateUser inserts the credential row together with its role-shaped
// profile columns. Returns ErrDuplicateUser when the email is taken.
func (r *mysqlUserRepository) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	query := `INSERT INTO users
		(email, password_hash, display_name, user_type, about, followers, followers_count, posts_count, following_musicians, favorite_genres)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx,
		user.Email, user.PasswordHash, user.DisplayName, string(user.UserType),
		nullString(user.About),
		jsonColumn(user.Followers), user.FollowersCount, user.PostsCount,
		jsonColumn(user.FollowingMusicians), jsonColumn(user.FavoriteGenres))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// CreateProfile fills in the profile columns of an existing credential row.
// Used by the reconciliation path when sign-up wrote the credential but the
// profile write failed.
func (r *mysqlUserRepository) CreateProfile(ctx context.Context, user *model.User) error {
	query := `UPDATE users SET
		display_name = ?, user_type = ?, about = ?,
		followers = ?, followers_count = ?, posts_count = ?,
		following_musicians = ?, favorite_genres = ?, updated_at = NOW()
		WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		user.DisplayName, string(user.UserType), nullString(user.About),
		jsonColumn(user.Followers), user.FollowersCount, user.PostsCount,
		jsonColumn(user.FollowingMusicians), jsonColumn(user.FavoriteGenres),
		user.ID)
	if err != nil {
		return fmt.Errorf("failed to create profile for user %d: %w", user.ID, err)
	}
	return nil
}

// GetUserByID retrieves a user by ID. Returns nil, nil when not found.
func (r *mysqlUserRepository) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user row for ID %d: %w", id, err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email. Returns nil, nil when not found.
func (r *mysqlUserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email)
	user, err := scanUser(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user row for email %s: %w", email, err)
	}
	return user, nil
}

// GetUsersByIDs resolves a batch of user IDs in one query. IDs that match no
// row are simply absent from the result map.
func (r *mysqlUserRepository) GetUsersByIDs(ctx context.Context, ids []int64) (map[int64]*model.User, error) {
	users := make(map[int64]*model.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users batch: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row in batch: %w", err)
		}
		users[user.ID] = user
	}
	return users, rows.Err()
}

// SaveFollowing overwrites a user's followed-musician set.
func (r *mysqlUserRepository) SaveFollowing(ctx context.Context, userID int64, following []int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET following_musicians = ?, updated_at = NOW() WHERE id = ?",
		jsonColumn(following), userID)
	if err != nil {
		return fmt.Errorf("failed to save following set for user %d: %w", userID, err)
	}
	return nil
}

// SaveFollowers overwrites a musician's followers set and keeps the counter
// in step with it.
func (r *mysqlUserRepository) SaveFollowers(ctx context.Context, musicianID int64, followers []int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET followers = ?, followers_count = ?, updated_at = NOW() WHERE id = ?",
		jsonColumn(followers), len(followers), musicianID)
	if err != nil {
		return fmt.Errorf("failed to save followers set for musician %d: %w", musicianID, err)
	}
	return nil
}

// IncrementPostsCount bumps a musician's post counter.
func (r *mysqlUserRepository) IncrementPostsCount(ctx context.Context, musicianID int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET posts_count = posts_count + 1, updated_at = NOW() WHERE id = ?",
		musicianID)
	if err != nil {
		return fmt.Errorf("failed to increment posts count for musician %d: %w", musicianID, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	var (
		userType  string
		about     sql.NullString
		followers sql.NullString
		following sql.NullString
		genres    sql.NullString
	)
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.DisplayName,
		&userType, &about, &followers, &user.FollowersCount, &user.PostsCount,
		&following, &genres, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	user.UserType = model.UserType(userType)
	if about.Valid {
		user.About = about.String
	}
	user.Followers = decodeIDs(followers)
	user.FollowingMusicians = decodeIDs(following)
	if genres.Valid && genres.String != "" {
		_ = json.Unmarshal([]byte(genres.String), &user.FavoriteGenres)
	}
	return user, nil
}

func decodeIDs(col sql.NullString) []int64 {
	if !col.Valid || col.String == "" {
		return nil
	}
	var ids []int64
	_ = json.Unmarshal([]byte(col.String), &ids)
	return ids
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonColumn serializes a slice for a JSON column, NULL when the field does
// not apply to the account's role.
func jsonColumn(v interface{}) sql.NullString {
	switch val := v.(type) {
	case []int64:
		if val == nil {
			return sql.NullString{}
		}
	case []string:
		if val == nil {
			return sql.NullString{}
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(b), Valid: true}
}
