package document

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"helpdesk/internal/domain/document"
)

type Handler struct {
	service    document.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service document.Servicer, log *slog.Logger, mws huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log.With("component", "document_handler"),
		middleware: mws,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.putOp(), h.put)
	huma.Register(api, h.getOp(), h.get)
	huma.Register(api, h.patchOp(), h.patch)
	huma.Register(api, h.appendOp(), h.append)
}

func (h *Handler) put(ctx context.Context, input *putInput) (*WriteOutput, error) {
	if err := h.service.Put(ctx, input.Collection, input.ID, input.Body); err != nil {
		return nil, h.httpError(err)
	}
	return ok(input.Collection, input.ID), nil
}

func (h *Handler) get(ctx context.Context, input *pathInput) (*getOutput, error) {
	doc, err := h.service.Get(ctx, input.Collection, input.ID)
	if err != nil {
		return nil, h.httpError(err)
	}
	return &getOutput{Body: doc.Body}, nil
}

func (h *Handler) patch(ctx context.Context, input *patchInput) (*WriteOutput, error) {
	if err := h.service.Patch(ctx, input.Collection, input.ID, input.Body); err != nil {
		return nil, h.httpError(err)
	}
	return ok(input.Collection, input.ID), nil
}

func (h *Handler) append(ctx context.Context, input *appendInput) (*WriteOutput, error) {
	err := h.service.AppendToArray(ctx, input.Collection, input.ID, input.Field, input.Body.Element)
	if err != nil {
		return nil, h.httpError(err)
	}
	return ok(input.Collection, input.ID), nil
}

func ok(collection, id string) *WriteOutput {
	return &WriteOutput{Body: WriteResponse{Collection: collection, ID: id, Status: "Ok"}}
}

func (h *Handler) httpError(err error) error {
	switch {
	case errors.Is(err, document.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, document.ErrInvalidDocument):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, document.ErrInvalidPath):
		return huma.Error400BadRequest(err.Error())
	}
	h.log.Error("request failed", "error", err)
	return huma.Error500InternalServerError("internal error")
}
