package goods

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/teleshopapp/teleshop-backend/pkg/db/models"
	"github.com/teleshopapp/teleshop-backend/pkg/enums"
	pkgerrors "github.com/teleshopapp/teleshop-backend/pkg/errors"
	"github.com/teleshopapp/teleshop-backend/pkg/pagination"
)

// Service exposes the catalog read and admin surface.
type Service interface {
	GetGood(ctx context.Context, id uuid.UUID) (*models.Good, error)
	GetVariation(ctx context.Context, id uuid.UUID) (*models.GoodVariation, error)
	FindVariationsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GoodVariation, error)
	List(ctx context.Context, params pagination.Params) (*Page, error)
	CreateGood(ctx context.Context, input CreateGoodInput) (*models.Good, error)
	CreateVariation(ctx context.Context, input CreateVariationInput) (*models.GoodVariation, error)
}

// CreateGoodInput is the admin payload for a new good.
type CreateGoodInput struct {
	Title       string
	Description string
	VATRate     enums.VATRate
}

// CreateVariationInput is the admin payload for a new variation.
type CreateVariationInput struct {
	GoodID      uuid.UUID
	Title       string
	Description string
	WeightKG    float64
	LengthCM    float64
	WidthCM     float64
	HeightCM    float64
}

// Page is one listing page plus the cursor for the next one.
type Page struct {
	Items      []models.Good
	NextCursor string
}

type service struct {
	repo GoodsRepository
}

// NewService builds the catalog service.
func NewService(repo GoodsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("goods repository required")
	}
	return &service{repo: repo}, nil
}

// GetGood loads a good or returns a typed not-found error.
func (s *service) GetGood(ctx context.Context, id uuid.UUID) (*models.Good, error) {
	good, err := s.repo.FindGoodByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("good %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading good")
	}
	return good, nil
}

// GetVariation loads a variation or returns a typed not-found error.
func (s *service) GetVariation(ctx context.Context, id uuid.UUID) (*models.GoodVariation, error) {
	variation, err := s.repo.FindVariationByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("variation %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variation")
	}
	return variation, nil
}

// FindVariationsByIDs batch-loads variations without checking completeness.
func (s *service) FindVariationsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.GoodVariation, error) {
	variations, err := s.repo.FindVariationsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading variations")
	}
	return variations, nil
}

// List returns a cursor-paginated page of goods, newest first.
func (s *service) List(ctx context.Context, params pagination.Params) (*Page, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	goods, err := s.repo.ListGoods(ctx, pagination.LimitWithBuffer(params.Limit), cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing goods")
	}

	page := &Page{}
	if len(goods) > limit {
		last := goods[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		goods = goods[:limit]
	}
	page.Items = goods
	return page, nil
}

// CreateGood validates and persists a new good.
func (s *service) CreateGood(ctx context.Context, input CreateGoodInput) (*models.Good, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "good title is required")
	}
	vatRate := input.VATRate
	if vatRate == "" {
		vatRate = enums.VATRate5
	}
	if !vatRate.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid vat rate %q", vatRate))
	}

	good, err := s.repo.CreateGood(ctx, &models.Good{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		VATRate:     vatRate,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating good")
	}
	return good, nil
}

// CreateVariation validates the parent good and persists a new variation.
// New variations carry no price; order creation rejects them until one is set.
func (s *service) CreateVariation(ctx context.Context, input CreateVariationInput) (*models.GoodVariation, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variation title is required")
	}
	if input.WeightKG < 0 || input.LengthCM < 0 || input.WidthCM < 0 || input.HeightCM < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dimensions must be non-negative")
	}

	if _, err := s.repo.FindGoodByID(ctx, input.GoodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("good %s not found", input.GoodID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading good")
	}

	variation, err := s.repo.CreateVariation(ctx, &models.GoodVariation{
		GoodID:      input.GoodID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		WeightKG:    input.WeightKG,
		LengthCM:    input.LengthCM,
		WidthCM:     input.WidthCM,
		HeightCM:    input.HeightCM,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating variation")
	}
	return variation, nil
}
