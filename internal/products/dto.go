package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	"github.com/shopsphere/shopsphere-backend/pkg/pagination"
)

// ProductDTO is the caller-facing projection of a catalog entry.
type ProductDTO struct {
	ID             uuid.UUID        `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Price          decimal.Decimal  `json:"price"`
	SalePrice      *decimal.Decimal `json:"salePrice,omitempty"`
	ImageURL       string           `json:"imageUrl,omitempty"`
	AdditionalInfo string           `json:"additionalInfo,omitempty"`
	Category       string           `json:"category,omitempty"`
	Tag            string           `json:"tag,omitempty"`
	Brand          string           `json:"brand,omitempty"`
	Reviews        []ReviewDTO      `json:"reviews,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// ReviewDTO is the caller-facing projection of a review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListParams carries the catalog browse inputs.
type ListParams struct {
	Categories []string
	Brands     []string
	MaxPrice   *decimal.Decimal
	Sort       enums.ProductSort
	Page       pagination.Params
}

// ListResult bundles one catalog page with its pagination descriptor.
type ListResult struct {
	Products   []ProductDTO    `json:"products"`
	Pagination pagination.Page `json:"pagination"`
}

// FilterOptionsDTO lists the distinct values the storefront can filter on.
type FilterOptionsDTO struct {
	Categories []string `json:"categories"`
	Brands     []string `json:"brands"`
}

// ReviewInput carries reviewer-supplied content.
type ReviewInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Comment string `json:"comment" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// ProductInput carries the admin create/update payload. The image arrives as
// multipart form data next to these fields.
type ProductInput struct {
	Name           string           `json:"name" validate:"required"`
	Description    string           `json:"description"`
	Price          decimal.Decimal  `json:"price"`
	SalePrice      *decimal.Decimal `json:"salePrice"`
	AdditionalInfo string           `json:"additionalInfo"`
	Category       string           `json:"category"`
	Tag            string           `json:"tag"`
	Brand          string           `json:"brand"`
}

func toProductDTO(product *models.Product, includeReviews bool) ProductDTO {
	dto := ProductDTO{
		ID:             product.ID,
		Name:           product.Name,
		Description:    product.Description,
		Price:          product.Price,
		SalePrice:      product.SalePrice,
		ImageURL:       product.ImageURL,
		AdditionalInfo: product.AdditionalInfo,
		Category:       product.Category,
		Tag:            product.Tag,
		Brand:          product.Brand,
		CreatedAt:      product.CreatedAt,
	}
	if includeReviews {
		dto.Reviews = make([]ReviewDTO, 0, len(product.Reviews))
		for _, review := range product.Reviews {
			dto.Reviews = append(dto.Reviews, toReviewDTO(review))
		}
	}
	return dto
}

func toReviewDTO(review models.Review) ReviewDTO {
	return ReviewDTO{
		ID:        review.ID,
		Name:      review.Name,
		Email:     review.Email,
		Comment:   review.Comment,
		Rating:    review.Rating,
		CreatedAt: review.CreatedAt,
	}
}
