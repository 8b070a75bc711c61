package dto

type EmbedDocumentPayload struct {
	DocumentID uint   `json:"document_id" validate:"required"`
	Text       string `json:"text" validate:"required"`
	Model      string `json:"model,omitempty"`
}
