package document

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/exp/slog"
)

var (
	namePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]{0,63}$`)
	idPattern   = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,128}$`)
)

type Servicer interface {
	Put(ctx context.Context, collection, id string, body map[string]any) error
	Get(ctx context.Context, collection, id string) (*Document, error)
	Patch(ctx context.Context, collection, id string, fields map[string]any) error
	AppendToArray(ctx context.Context, collection, id, field string, element map[string]any) error
}

type Service struct {
	repo      Repository
	validator *Validator
	log       *slog.Logger
}

func NewService(repo Repository, validator *Validator, log *slog.Logger) Servicer {
	return &Service{
		repo:      repo,
		validator: validator,
		log:       log.With("component", "document_service"),
	}
}

func (s *Service) Put(ctx context.Context, collection, id string, body map[string]any) error {
	if err := checkPath(collection, id); err != nil {
		return err
	}
	if body == nil {
		body = map[string]any{}
	}
	if err := s.validator.Validate(collection, body); err != nil {
		return err
	}

	if err := s.repo.Upsert(ctx, collection, id, body); err != nil {
		s.log.Error("failed to upsert document", "collection", collection, "id", id, "error", err)
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *Service) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := checkPath(collection, id); err != nil {
		return nil, err
	}
	doc, err := s.repo.Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		s.log.Error("failed to get document", "collection", collection, "id", id, "error", err)
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Patch merges top-level fields into an existing document.
func (s *Service) Patch(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := checkPath(collection, id); err != nil {
		return err
	}

	err := s.repo.Modify(ctx, collection, id, func(body map[string]any) (map[string]any, error) {
		for k, v := range fields {
			body[k] = v
		}
		if err := s.validator.Validate(collection, body); err != nil {
			return nil, err
		}
		return body, nil
	})
	return s.wrap("patch", collection, id, err)
}

// AppendToArray adds element to the array field unless an element with the
// same "id" is already there. A missing field is created.
func (s *Service) AppendToArray(ctx context.Context, collection, id, field string, element map[string]any) error {
	if err := checkPath(collection, id); err != nil {
		return err
	}
	if !namePattern.MatchString(field) {
		return fmt.Errorf("%w: field %q", ErrInvalidPath, field)
	}
	if element == nil {
		return fmt.Errorf("%w: element is required", ErrInvalidDocument)
	}

	err := s.repo.Modify(ctx, collection, id, func(body map[string]any) (map[string]any, error) {
		var arr []any
		switch v := body[field].(type) {
		case nil:
		case []any:
			arr = v
		default:
			return nil, fmt.Errorf("%w: field %q is not an array", ErrInvalidDocument, field)
		}

		if containsID(arr, element["id"]) {
			return body, nil
		}
		body[field] = append(arr, element)

		if err := s.validator.Validate(collection, body); err != nil {
			return nil, err
		}
		return body, nil
	})
	return s.wrap("append", collection, id, err)
}

func (s *Service) wrap(op, collection, id string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidDocument):
		return err
	}
	s.log.Error("failed to modify document", "op", op, "collection", collection, "id", id, "error", err)
	return fmt.Errorf("%s document: %w", op, err)
}

func containsID(arr []any, id any) bool {
	key, ok := id.(string)
	if !ok || key == "" {
		return false
	}
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok && m["id"] == key {
			return true
		}
	}
	return false
}

func checkPath(collection, id string) error {
	if !namePattern.MatchString(collection) {
		return fmt.Errorf("%w: collection %q", ErrInvalidPath, collection)
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: id %q", ErrInvalidPath, id)
	}
	return nil
}
