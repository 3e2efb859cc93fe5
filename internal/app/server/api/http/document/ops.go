package document

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

const documentPath = "/api/v1/documents/{collection}/{id}"

func (h *Handler) putOp() huma.Operation {
	return huma.Operation{
		OperationID: "documents-put",
		Method:      http.MethodPut,
		Path:        documentPath,
		Summary:     "Create or replace a document",
		Description: "Writing the same document twice leaves one document.",
		Tags:        []string{"documents"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) getOp() huma.Operation {
	return huma.Operation{
		OperationID: "documents-get",
		Method:      http.MethodGet,
		Path:        documentPath,
		Summary:     "Get a document",
		Tags:        []string{"documents"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) patchOp() huma.Operation {
	return huma.Operation{
		OperationID: "documents-patch",
		Method:      http.MethodPatch,
		Path:        documentPath,
		Summary:     "Merge fields into a document",
		Tags:        []string{"documents"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}

func (h *Handler) appendOp() huma.Operation {
	return huma.Operation{
		OperationID: "documents-append",
		Method:      http.MethodPost,
		Path:        documentPath + "/arrays/{field}",
		Summary:     "Append an element to an array field",
		Tags:        []string{"documents"},
		Security:    []map[string][]string{{"bearer": {}}},
		Middlewares: h.middleware,
	}
}
