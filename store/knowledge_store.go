package store

import (
	"context"
	"database/sql"
	"errors"

	"chatdesk/api/apperrors"
	"chatdesk/api/models"
)

const knowledgeColumns = `id, business_id, question, answer, category, created_at, updated_at`

type KnowledgeStore struct {
	db *sql.DB
}

func NewKnowledgeStore(db *sql.DB) *KnowledgeStore {
	return &KnowledgeStore{db: db}
}

func scanKnowledgeItem(row rowScanner) (*models.KnowledgeItem, error) {
	k := &models.KnowledgeItem{}
	err := row.Scan(&k.ID, &k.BusinessID, &k.Question, &k.Answer, &k.Category, &k.CreatedAt, &k.UpdatedAt)
	return k, err
}

func knowledgeNotFound() error {
	return apperrors.NotFound("Knowledge item not found")
}

// ListKnowledge returns a business's knowledge items in insertion order.
// Rows inserted in one transaction share created_at, so order is by seq.
func (s *KnowledgeStore) ListKnowledge(ctx context.Context, businessID string) ([]models.KnowledgeItem, error) {
	query := `SELECT ` + knowledgeColumns + ` FROM knowledge_base WHERE business_id = $1 ORDER BY seq ASC`
	rows, err := s.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to load knowledge base")
	}
	defer rows.Close()

	items := []models.KnowledgeItem{}
	for rows.Next() {
		k, err := scanKnowledgeItem(rows)
		if err != nil {
			return nil, apperrors.Persistence(err, "Failed to load knowledge base")
		}
		items = append(items, *k)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence(err, "Failed to load knowledge base")
	}
	return items, nil
}

func (s *KnowledgeStore) CreateKnowledge(ctx context.Context, businessID string, req models.KnowledgeItemRequest) (*models.KnowledgeItem, error) {
	query := `
		INSERT INTO knowledge_base (business_id, question, answer, category)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + knowledgeColumns
	k, err := scanKnowledgeItem(s.db.QueryRowContext(ctx, query, businessID, req.Question, req.Answer, req.Category))
	if err != nil {
		return nil, apperrors.Persistence(err, "Failed to add FAQ")
	}
	return k, nil
}

func (s *KnowledgeStore) UpdateKnowledge(ctx context.Context, id, businessID string, req models.KnowledgeItemRequest) (*models.KnowledgeItem, error) {
	if !validID(id) {
		return nil, knowledgeNotFound()
	}
	query := `
		UPDATE knowledge_base
		SET question = $3, answer = $4, category = $5, updated_at = now()
		WHERE id = $1 AND business_id = $2
		RETURNING ` + knowledgeColumns
	k, err := scanKnowledgeItem(s.db.QueryRowContext(ctx, query, id, businessID, req.Question, req.Answer, req.Category))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, knowledgeNotFound()
		}
		return nil, apperrors.Persistence(err, "Failed to update FAQ")
	}
	return k, nil
}

func (s *KnowledgeStore) DeleteKnowledge(ctx context.Context, id, businessID string) error {
	if !validID(id) {
		return knowledgeNotFound()
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_base WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return apperrors.Persistence(err, "Failed to delete FAQ")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Persistence(err, "Failed to delete FAQ")
	}
	if n == 0 {
		return knowledgeNotFound()
	}
	return nil
}

// ImportKnowledge inserts all items in a single transaction; either every row
// lands or none do.
func (s *KnowledgeStore) ImportKnowledge(ctx context.Context, businessID string, items []models.KnowledgeItemRequest) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.Persistence(err, "Failed to import FAQs")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO knowledge_base (business_id, question, answer, category) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return 0, apperrors.Persistence(err, "Failed to import FAQs")
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, businessID, item.Question, item.Answer, item.Category); err != nil {
			return 0, apperrors.Persistence(err, "Failed to import FAQs")
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.Persistence(err, "Failed to import FAQs")
	}
	return len(items), nil
}
