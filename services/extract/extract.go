package extract

import (
	"context"

	"ticket-resale/models"
)

// TextRecognizer is the OCR collaborator: raw text for an uploaded
// ticket image.
type TextRecognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// FieldExtractor is the LLM collaborator: structured ticket fields from
// OCR text, with event names constrained to a closed vocabulary.
type FieldExtractor interface {
	ExtractTicket(ctx context.Context, ocrText string, knownMovies []string) (*models.Extraction, error)
}
