package document

type pathInput struct {
	Collection string `path:"collection" example:"tickets" doc:"Collection name"`
	ID         string `path:"id" example:"0190f1c2-7d2a-7c4e-9b1a-3f6d2f0e8a11" doc:"Document ID"`
}

type putInput struct {
	Collection string `path:"collection" example:"tickets" doc:"Collection name"`
	ID         string `path:"id" example:"0190f1c2-7d2a-7c4e-9b1a-3f6d2f0e8a11" doc:"Document ID"`
	Body       map[string]any
}

type patchInput struct {
	Collection string `path:"collection" example:"tickets" doc:"Collection name"`
	ID         string `path:"id" example:"0190f1c2-7d2a-7c4e-9b1a-3f6d2f0e8a11" doc:"Document ID"`
	Body       map[string]any
}

type appendInput struct {
	Collection string `path:"collection" example:"tickets" doc:"Collection name"`
	ID         string `path:"id" example:"0190f1c2-7d2a-7c4e-9b1a-3f6d2f0e8a11" doc:"Document ID"`
	Field      string `path:"field" example:"conversation" doc:"Array field to append to"`
	Body       appendRequest
}

type appendRequest struct {
	Element map[string]any `json:"element" doc:"Element to append. Elements whose id is already present are skipped."`
}

type getOutput struct {
	Body map[string]any
}

// WriteOutput answers every write operation.
type WriteOutput struct {
	Body WriteResponse
}

// WriteResponse names the document a write was applied to.
type WriteResponse struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Status     string `json:"status" example:"Ok"`
}
