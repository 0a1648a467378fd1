package services

import (
	"context"
	"fmt"
	"log/slog"

	"ticket-resale/internal/status"
	"ticket-resale/models"
	"ticket-resale/monitoring"
	"ticket-resale/services/extract"

	"github.com/shopspring/decimal"
)

// TicketCreator is the slice of the ticket store intake needs.
type TicketCreator interface {
	Create(ctx context.Context, draft models.TicketDraft, ownerID string) (string, error)
	HardDelete(ctx context.Context, id string) error
}

// PosterCatalog resolves artwork for recognized event names.
type PosterCatalog interface {
	MovieNames(ctx context.Context) ([]string, error)
	PosterURL(ctx context.Context, name string) (*string, error)
}

// SellerDirectory resolves the seller's contact handle.
type SellerDirectory interface {
	Get(ctx context.Context, id string) (*models.User, error)
}

// IntakeService turns an uploaded ticket image into a committed listing.
// OCR and structured extraction are external collaborators; the point of
// no return is the ticket store write, which happens only after all
// extracted data is fully resolved.
type IntakeService struct {
	tickets TicketCreator
	sellers SellerDirectory
	catalog PosterCatalog
	index   FilterIndex
	ocr     extract.TextRecognizer
	llm     extract.FieldExtractor
}

func NewIntakeService(tickets TicketCreator, sellers SellerDirectory, catalog PosterCatalog, index FilterIndex, ocr extract.TextRecognizer, llm extract.FieldExtractor) *IntakeService {
	return &IntakeService{
		tickets: tickets,
		sellers: sellers,
		catalog: catalog,
		index:   index,
		ocr:     ocr,
		llm:     llm,
	}
}

// ExtractDraft runs OCR and structured extraction against the image.
func (s *IntakeService) ExtractDraft(ctx context.Context, imagePath string) (*models.Extraction, error) {
	text, err := s.ocr.Recognize(ctx, imagePath)
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	names, err := s.catalog.MovieNames(ctx)
	if err != nil {
		return nil, err
	}

	ext, err := s.llm.ExtractTicket(ctx, text, names)
	if err != nil {
		return nil, fmt.Errorf("structured extraction: %w", err)
	}
	return ext, nil
}

// Validate checks the extraction for the required fields and the seat
// invariant. event_name, datetime and original_price may be null.
func (s *IntakeService) Validate(ext *models.Extraction) error {
	if ext == nil || ext.Venue == "" || ext.City == "" || ext.Count <= 0 || ext.SeatNumbers == nil {
		return status.ErrIncompleteExtraction
	}
	if len(ext.SeatNumbers) != ext.Count {
		return status.ErrSeatMismatch
	}
	return nil
}

// Commit resolves poster artwork and the seller's contact handle, then
// writes the ticket and index entry as one logical operation.
func (s *IntakeService) Commit(ctx context.Context, ext *models.Extraction, sellerID string, askingPrice decimal.Decimal, mediaRef string) (string, error) {
	if err := s.Validate(ext); err != nil {
		return "", err
	}

	seller, err := s.sellers.Get(ctx, sellerID)
	if err != nil {
		return "", err
	}

	var poster *string
	if ext.EventName != nil && *ext.EventName != "" {
		poster, err = s.catalog.PosterURL(ctx, *ext.EventName)
		if err != nil {
			return "", err
		}
	}

	originalPrice := decimal.Zero
	if ext.OriginalPrice != nil {
		originalPrice = decimal.NewFromFloat(*ext.OriginalPrice)
	}

	draft := models.TicketDraft{
		EventName:     ext.EventName,
		Venue:         ext.Venue,
		City:          ext.City,
		ShowTime:      ext.ShowTime,
		OriginalPrice: originalPrice,
		SellingPrice:  askingPrice,
		ContactInfo:   seller.PhoneNumber,
		TicketURL:     mediaRef,
		PosterURL:     poster,
		SeatNumbers:   ext.SeatNumbers,
		Count:         ext.Count,
	}

	return s.List(ctx, draft, sellerID)
}

// List persists a draft and registers it in the active-filter index.
// If the index write fails the orphaned ticket is removed so the two
// never diverge permanently in opposite directions.
func (s *IntakeService) List(ctx context.Context, draft models.TicketDraft, sellerID string) (string, error) {
	id, err := s.tickets.Create(ctx, draft, sellerID)
	if err != nil {
		return "", err
	}

	if err := s.index.OnListed(ctx, draft.EventName, draft.City); err != nil {
		if delErr := s.tickets.HardDelete(ctx, id); delErr != nil {
			slog.Error("orphan ticket cleanup failed", "ticket", id, "error", delErr)
		}
		return "", fmt.Errorf("register listing filters: %w", err)
	}

	monitoring.TrackTicketListed()
	return id, nil
}
