package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/exp/slog"

	"helpdesk/internal/domain/document"
	"helpdesk/internal/infrastructure/storage"
)

type DocumentRepository struct {
	db  *Storage
	log *slog.Logger
}

func NewDocumentRepository(db *Storage, log *slog.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:  db,
		log: log.With("component", "document_repository"),
	}
}

func (r *DocumentRepository) Upsert(ctx context.Context, collection, id string, body map[string]any) error {
	const query = `
		INSERT INTO documents (collection, id, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, id)
		DO UPDATE SET body = EXCLUDED.body, updated_at = now()`

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: %v", document.ErrInvalidDocument, err)
	}
	if _, err := r.db.Pool().Exec(ctx, query, collection, id, data); err != nil {
		r.log.Error("failed to upsert document", "collection", collection, "id", id, "error", err)
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) Get(ctx context.Context, collection, id string) (*document.Document, error) {
	const query = `
		SELECT body, created_at, updated_at
		FROM documents
		WHERE collection = $1 AND id = $2`

	doc := document.Document{Collection: collection, ID: id}
	var raw []byte
	err := r.db.Pool().QueryRow(ctx, query, collection, id).Scan(&raw, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, document.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if err := json.Unmarshal(raw, &doc.Body); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// Modify locks the row for the duration of fn so concurrent patches and
// appends to the same document serialise.
func (r *DocumentRepository) Modify(ctx context.Context, collection, id string, fn document.ModifyFunc) (err error) {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.log.Error("rollback failed", "collection", collection, "id", id, "error", rbErr)
			}
		}
	}()

	var raw []byte
	err = tx.QueryRow(ctx,
		`SELECT body FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`,
		collection, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.ErrNotFound
		}
		return fmt.Errorf("lock document: %w", err)
	}

	var body map[string]any
	if err = json.Unmarshal(raw, &body); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if body == nil {
		body = map[string]any{}
	}

	next, err := fn(body)
	if err != nil {
		return err
	}

	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("%w: %v", document.ErrInvalidDocument, err)
	}
	if _, err = tx.Exec(ctx,
		`UPDATE documents SET body = $3, updated_at = now() WHERE collection = $1 AND id = $2`,
		collection, id, data); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Documents is a Storage together with its document repository.
type Documents struct {
	*Storage
	*DocumentRepository
}

var _ storage.Storage = (*Documents)(nil)

func NewDocuments(s *Storage, log *slog.Logger) *Documents {
	return &Documents{Storage: s, DocumentRepository: NewDocumentRepository(s, log)}
}
