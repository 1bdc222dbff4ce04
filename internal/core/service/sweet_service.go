package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sweetshop/api/internal/core/domain"
	"github.com/sweetshop/api/internal/core/ports"
)

var tracer = otel.Tracer("github.com/sweetshop/api/internal/core/service")

type SweetService struct {
	repo      ports.SweetRepository
	movements ports.MovementRepository
	logger    zerolog.Logger
	now       func() time.Time
}

// NewSweetService wires the inventory use cases. movements may be nil, in
// which case no audit trail is written.
func NewSweetService(repo ports.SweetRepository, movements ports.MovementRepository, logger zerolog.Logger) *SweetService {
	return &SweetService{repo: repo, movements: movements, logger: logger, now: time.Now}
}

func (s *SweetService) List(ctx context.Context) ([]domain.Sweet, error) {
	ctx, span := tracer.Start(ctx, "sweets.List")
	defer span.End()

	sweets, err := s.repo.Find(ctx, domain.SweetFilter{})
	return sweets, record(span, err)
}

// Search filters by case-insensitive substring on name/category and an
// inclusive price range.
func (s *SweetService) Search(ctx context.Context, filter domain.SweetFilter) ([]domain.Sweet, error) {
	ctx, span := tracer.Start(ctx, "sweets.Search")
	defer span.End()

	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, record(span, domain.Invalid("minPrice must not exceed maxPrice"))
	}

	sweets, err := s.repo.Find(ctx, filter)
	return sweets, record(span, err)
}

func (s *SweetService) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	ctx, span := tracer.Start(ctx, "sweets.Get", trace.WithAttributes(attribute.String("sweet.id", id)))
	defer span.End()

	sweet, err := s.repo.FindByID(ctx, id)
	return sweet, record(span, err)
}

func (s *SweetService) Create(ctx context.Context, in ports.CreateSweetInput) (*domain.Sweet, error) {
	ctx, span := tracer.Start(ctx, "sweets.Create")
	defer span.End()

	now := s.now().UTC()
	sweet := &domain.Sweet{
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.Quantity != nil {
		sweet.Quantity = *in.Quantity
	}
	if err := sweet.Validate(); err != nil {
		return nil, record(span, err)
	}

	created, err := s.repo.Create(ctx, sweet)
	if err != nil {
		s.logger.Error().Err(err).Str("name", sweet.Name).Msg("failed to create sweet")
		return nil, record(span, err)
	}

	s.logger.Info().Str("sweet_id", created.ID).Str("name", created.Name).Int("quantity", created.Quantity).Msg("sweet created")
	return created, nil
}

// Update applies the present fields of patch. Quantity is not part of a patch.
func (s *SweetService) Update(ctx context.Context, id string, patch domain.SweetPatch) (*domain.Sweet, error) {
	ctx, span := tracer.Start(ctx, "sweets.Update", trace.WithAttributes(attribute.String("sweet.id", id)))
	defer span.End()

	if err := patch.Validate(); err != nil {
		return nil, record(span, err)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	return updated, record(span, err)
}

func (s *SweetService) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "sweets.Delete", trace.WithAttributes(attribute.String("sweet.id", id)))
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		return record(span, err)
	}
	s.logger.Info().Str("sweet_id", id).Msg("sweet deleted")
	return nil
}

// Purchase removes in.Quantity units (1 when not positive). The check and the
// decrement happen in one conditional write in the store, so concurrent
// purchases can neither oversell nor lose an update.
func (s *SweetService) Purchase(ctx context.Context, in ports.StockChangeInput) (*domain.Sweet, error) {
	qty := domain.PurchaseQuantity(in.Quantity)

	ctx, span := tracer.Start(ctx, "sweets.Purchase", trace.WithAttributes(
		attribute.String("sweet.id", in.SweetID),
		attribute.Int("quantity", qty),
	))
	defer span.End()

	sweet, err := s.repo.DecrementStock(ctx, in.SweetID, qty)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.logger.Info().Str("sweet_id", in.SweetID).Int("requested", qty).Msg("purchase rejected: insufficient stock")
		}
		return nil, record(span, err)
	}

	s.audit(ctx, sweet, domain.MovementPurchase, qty, in.ActorID)
	return sweet, nil
}

// Restock adds in.Quantity units; the quantity must be strictly positive.
func (s *SweetService) Restock(ctx context.Context, in ports.StockChangeInput) (*domain.Sweet, error) {
	ctx, span := tracer.Start(ctx, "sweets.Restock", trace.WithAttributes(
		attribute.String("sweet.id", in.SweetID),
		attribute.Int("quantity", in.Quantity),
	))
	defer span.End()

	if in.Quantity <= 0 {
		return nil, record(span, domain.ErrInvalidQuantity)
	}

	sweet, err := s.repo.IncrementStock(ctx, in.SweetID, in.Quantity)
	if err != nil {
		return nil, record(span, err)
	}

	s.audit(ctx, sweet, domain.MovementRestock, in.Quantity, in.ActorID)
	return sweet, nil
}

// Movements returns the audit trail of an existing sweet.
func (s *SweetService) Movements(ctx context.Context, sweetID string) ([]domain.StockMovement, error) {
	ctx, span := tracer.Start(ctx, "sweets.Movements", trace.WithAttributes(attribute.String("sweet.id", sweetID)))
	defer span.End()

	if _, err := s.repo.FindByID(ctx, sweetID); err != nil {
		return nil, record(span, err)
	}
	if s.movements == nil {
		return []domain.StockMovement{}, nil
	}

	list, err := s.movements.ListBySweet(ctx, sweetID)
	return list, record(span, err)
}

// audit appends to the movement trail. Failure is non-fatal: the stock
// change is already committed.
func (s *SweetService) audit(ctx context.Context, sweet *domain.Sweet, kind domain.MovementKind, qty int, actorID string) {
	s.logger.Info().
		Str("sweet_id", sweet.ID).
		Str("kind", string(kind)).
		Int("quantity", qty).
		Int("remaining", sweet.Quantity).
		Msg("stock changed")

	if s.movements == nil {
		return
	}
	err := s.movements.Insert(ctx, &domain.StockMovement{
		SweetID:           sweet.ID,
		Kind:              kind,
		Quantity:          qty,
		ResultingQuantity: sweet.Quantity,
		ActorID:           actorID,
		At:                s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("sweet_id", sweet.ID).Msg("failed to insert stock movement")
	}
}

// record marks the span as failed for unexpected errors. Domain errors are
// expected outcomes and only annotate the span.
func record(span trace.Span, err error) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	if !isDomainError(err) {
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func isDomainError(err error) bool {
	for _, target := range []error{
		domain.ErrValidation,
		domain.ErrSweetNotFound,
		domain.ErrInsufficientStock,
		domain.ErrInvalidQuantity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
