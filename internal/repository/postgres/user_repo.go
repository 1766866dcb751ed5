package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opensourcefinder/server/internal/domain"
	"github.com/opensourcefinder/server/internal/repository"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const selectUsers = `
	SELECT u.id, u.email, u.handle, u.display_name, u.avatar_url, u.password_hash,
	       u.bio, u.location, u.website, u.twitter, u.github_handle,
	       u.created_at, u.updated_at,
	       COALESCE(array_agg(b.project_id ORDER BY b.bookmarked_at) FILTER (WHERE b.project_id IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_bookmarks b ON b.user_id = u.id`

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, email, handle, display_name, avatar_url, password_hash,
		                   bio, location, website, twitter, github_handle, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Handle, user.DisplayName, user.AvatarURL, nullableHash(user.PasswordHash),
		user.Bio, user.Location, user.Website, user.Twitter, user.GitHubHandle,
		user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(ctx, selectUsers+` WHERE u.id = $1 GROUP BY u.id`, id)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(ctx, selectUsers+` WHERE u.email = $1 GROUP BY u.id`, email)
}

func (r *UserRepo) GetByHandle(ctx context.Context, handle string) (*domain.User, error) {
	return r.scanUser(ctx, selectUsers+` WHERE u.handle = $1 GROUP BY u.id`, handle)
}

func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET handle = $1, display_name = $2, avatar_url = $3, bio = $4, location = $5,
		    website = $6, twitter = $7, github_handle = $8, updated_at = $9
		WHERE id = $10`

	tag, err := r.pool.Exec(ctx, query,
		user.Handle, user.DisplayName, user.AvatarURL, user.Bio, user.Location,
		user.Website, user.Twitter, user.GitHubHandle, user.UpdatedAt, user.ID,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ToggleBookmark flips set membership in one statement. There is no counter
// to keep in step here, but the conditional insert-or-delete shape matches
// the like toggle so racing requests cannot double-apply.
func (r *UserRepo) ToggleBookmark(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	query := `
		WITH ins AS (
			INSERT INTO user_bookmarks (user_id, project_id)
			VALUES ($1, $2)
			ON CONFLICT (user_id, project_id) DO NOTHING
			RETURNING 1
		), del AS (
			DELETE FROM user_bookmarks
			WHERE user_id = $1 AND project_id = $2
			  AND NOT EXISTS (SELECT 1 FROM ins)
			RETURNING 1
		)
		SELECT EXISTS (SELECT 1 FROM ins)`

	var bookmarked bool
	err := r.pool.QueryRow(ctx, query, userID, projectID).Scan(&bookmarked)
	if isForeignKeyViolation(err) {
		return false, repository.ErrNotFound
	}
	if err != nil {
		return false, err
	}
	return bookmarked, nil
}

func (r *UserRepo) scanUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	var hash *string
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.Handle, &u.DisplayName, &u.AvatarURL, &hash,
		&u.Bio, &u.Location, &u.Website, &u.Twitter, &u.GitHubHandle,
		&u.CreatedAt, &u.UpdatedAt, &u.Bookmarks,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if hash != nil {
		u.PasswordHash = *hash
	}
	return &u, nil
}

func nullableHash(hash string) *string {
	if hash == "" {
		return nil
	}
	return &hash
}
