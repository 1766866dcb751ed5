package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opensourcefinder/server/internal/domain"
	"github.com/opensourcefinder/server/internal/repository"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

// selectProjects aggregates the like set next to the row so a single read
// returns the full record, liker IDs included.
const selectProjects = `
	SELECT p.id, p.canonical_url, p.title, p.display_title, p.owner_handle,
	       p.submitted_by, p.description, p.language, p.star_count, p.fork_count,
	       p.last_synced_at, p.tags, p.like_count, p.created_at,
	       COALESCE(array_agg(pl.user_id ORDER BY pl.liked_at) FILTER (WHERE pl.user_id IS NOT NULL), '{}')
	FROM projects p
	LEFT JOIN project_likes pl ON pl.project_id = p.id`

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `
		INSERT INTO projects (id, canonical_url, title, display_title, owner_handle,
		                      submitted_by, description, language, star_count, fork_count,
		                      last_synced_at, tags, like_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.CanonicalURL, p.Title, p.DisplayTitle, p.OwnerHandle,
		p.SubmittedBy, p.Description, p.Language, p.StarCount, p.ForkCount,
		p.LastSyncedAt, p.Tags, p.LikeCount, p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return r.scanProject(ctx, selectProjects+` WHERE p.id = $1 GROUP BY p.id`, id)
}

func (r *ProjectRepo) GetByCanonicalURL(ctx context.Context, url string) (*domain.Project, error) {
	return r.scanProject(ctx, selectProjects+` WHERE p.canonical_url = $1 GROUP BY p.id`, url)
}

func (r *ProjectRepo) List(ctx context.Context) ([]domain.Project, error) {
	return r.listProjects(ctx, selectProjects+` GROUP BY p.id ORDER BY p.created_at DESC`)
}

func (r *ProjectRepo) ListBySubmitter(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	return r.listProjects(ctx, selectProjects+` WHERE p.submitted_by = $1 GROUP BY p.id ORDER BY p.created_at DESC`, userID)
}

func (r *ProjectRepo) ListBookmarkedBy(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	query := selectProjects + `
		JOIN user_bookmarks ub ON ub.project_id = p.id AND ub.user_id = $1
		GROUP BY p.id, ub.bookmarked_at
		ORDER BY ub.bookmarked_at DESC`
	return r.listProjects(ctx, query, userID)
}

func (r *ProjectRepo) Refresh(ctx context.Context, p *domain.Project) error {
	query := `
		UPDATE projects
		SET description = $1, language = $2, star_count = $3, fork_count = $4, last_synced_at = $5
		WHERE id = $6`

	tag, err := r.pool.Exec(ctx, query,
		p.Description, p.Language, p.StarCount, p.ForkCount, p.LastSyncedAt, p.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) Reregister(ctx context.Context, p *domain.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE projects
		SET canonical_url = $1, title = $2, display_title = $3, owner_handle = $4,
		    description = $5, language = $6, star_count = $7, fork_count = $8,
		    last_synced_at = $9, like_count = 0
		WHERE id = $10`

	tag, err := tx.Exec(ctx, query,
		p.CanonicalURL, p.Title, p.DisplayTitle, p.OwnerHandle,
		p.Description, p.Language, p.StarCount, p.ForkCount,
		p.LastSyncedAt, p.ID,
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

	if _, err := tx.Exec(ctx, `DELETE FROM project_likes WHERE project_id = $1`, p.ID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProjectRepo) DeleteBySubmitter(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE submitted_by = $1`, userID)
	return err
}

// ToggleLike runs the membership flip and the counter delta as one statement,
// so no concurrent reader can observe the set and the counter disagreeing.
// Two racing toggles for the same pair serialize on the primary key: one
// inserts and increments, the other deletes and decrements.
func (r *ProjectRepo) ToggleLike(ctx context.Context, projectID, userID uuid.UUID) (bool, int, error) {
	query := `
		WITH ins AS (
			INSERT INTO project_likes (project_id, user_id)
			VALUES ($1, $2)
			ON CONFLICT (project_id, user_id) DO NOTHING
			RETURNING 1
		), del AS (
			DELETE FROM project_likes
			WHERE project_id = $1 AND user_id = $2
			  AND NOT EXISTS (SELECT 1 FROM ins)
			RETURNING 1
		)
		UPDATE projects
		SET like_count = like_count + (SELECT count(*) FROM ins) - (SELECT count(*) FROM del)
		WHERE id = $1
		RETURNING like_count, EXISTS (SELECT 1 FROM ins)`

	var likeCount int
	var liked bool
	err := r.pool.QueryRow(ctx, query, projectID, userID).Scan(&likeCount, &liked)
	if errors.Is(err, pgx.ErrNoRows) || isForeignKeyViolation(err) {
		return false, 0, repository.ErrNotFound
	}
	if err != nil {
		return false, 0, err
	}
	return liked, likeCount, nil
}

func (r *ProjectRepo) RemoveLikesByUser(ctx context.Context, userID uuid.UUID) error {
	query := `
		WITH removed AS (
			DELETE FROM project_likes
			WHERE user_id = $1
			RETURNING project_id
		)
		UPDATE projects p
		SET like_count = like_count - r.cnt
		FROM (SELECT project_id, count(*) AS cnt FROM removed GROUP BY project_id) r
		WHERE p.id = r.project_id`

	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func (r *ProjectRepo) StatsBySubmitter(ctx context.Context, userID uuid.UUID) (*domain.UserStats, error) {
	query := `
		SELECT count(*), COALESCE(sum(star_count), 0), COALESCE(sum(fork_count), 0)
		FROM projects
		WHERE submitted_by = $1`

	var stats domain.UserStats
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&stats.TotalProjects, &stats.TotalStars, &stats.TotalForks,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *ProjectRepo) scanProject(ctx context.Context, query string, arg any) (*domain.Project, error) {
	var p domain.Project
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&p.ID, &p.CanonicalURL, &p.Title, &p.DisplayTitle, &p.OwnerHandle,
		&p.SubmittedBy, &p.Description, &p.Language, &p.StarCount, &p.ForkCount,
		&p.LastSyncedAt, &p.Tags, &p.LikeCount, &p.CreatedAt, &p.LikerIDs,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) listProjects(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ID, &p.CanonicalURL, &p.Title, &p.DisplayTitle, &p.OwnerHandle,
			&p.SubmittedBy, &p.Description, &p.Language, &p.StarCount, &p.ForkCount,
			&p.LastSyncedAt, &p.Tags, &p.LikeCount, &p.CreatedAt, &p.LikerIDs,
		); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
