package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/opensourcefinder/server/internal/domain"
)

type InquiryRepo struct {
	pool *pgxpool.Pool
}

func NewInquiryRepo(pool *pgxpool.Pool) *InquiryRepo {
	return &InquiryRepo{pool: pool}
}

func (r *InquiryRepo) Create(ctx context.Context, inq *domain.Inquiry) error {
	query := `
		INSERT INTO inquiries (id, user_id, name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		inq.ID, inq.UserID, inq.Name, inq.Email, inq.Subject, inq.Message, inq.CreatedAt,
	)
	return err
}
