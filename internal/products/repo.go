package products

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
)

// Repository exposes catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a products repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Filter holds the catalog query constraints.
type Filter struct {
	Categories []string
	Brands     []string
	MaxPrice   *decimal.Decimal
}

// ListFiltered returns one page of products plus the total row count for the
// filter. Category and brand match case-insensitively; values within one
// dimension are OR'd and dimensions are AND'd. MaxPrice compares against the
// base price column.
func (r *Repository) ListFiltered(ctx context.Context, filter Filter, sort enums.ProductSort, limit, offset int) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if len(filter.Categories) > 0 {
		query = query.Where("LOWER(category) IN ?", lowerAll(filter.Categories))
	}
	if len(filter.Brands) > 0 {
		query = query.Where("LOWER(brand) IN ?", lowerAll(filter.Brands))
	}
	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", filter.MaxPrice)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch sort {
	case enums.ProductSortPriceAsc:
		query = query.Order("price asc")
	case enums.ProductSortPriceDesc:
		query = query.Order("price desc")
	default:
		query = query.Order("created_at desc")
	}

	var products []models.Product
	if err := query.Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Search matches the query as a case-insensitive substring of name, category,
// or brand.
func (r *Repository) Search(ctx context.Context, query string) ([]models.Product, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ? OR LOWER(brand) LIKE ?", pattern, pattern, pattern).
		Order("created_at desc").
		Find(&products).Error
	return products, err
}

// ListAll returns the entire catalog without paging, newest first. Only the
// admin screens use this; the storefront goes through ListFiltered.
func (r *Repository) ListAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&products).Error
	return products, err
}

// FindByID loads one product with its reviews.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviews.created_at desc")
		}).
		First(&product, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads the products whose ids are present; missing ids are simply
// absent from the result.
func (r *Repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

// Exists reports whether a product row exists.
func (r *Repository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// DistinctCategories returns the non-empty category values.
func (r *Repository) DistinctCategories(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct("category").
		Order("category asc").
		Pluck("category", &values).Error
	return values, err
}

// DistinctBrands returns the non-empty brand values.
func (r *Repository) DistinctBrands(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("brand IS NOT NULL AND brand <> ''").
		Distinct("brand").
		Order("brand asc").
		Pluck("brand", &values).Error
	return values, err
}

// Create inserts a product.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update overwrites the product's mutable columns.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"name":            product.Name,
			"description":     product.Description,
			"price":           product.Price,
			"sale_price":      product.SalePrice,
			"image_url":       product.ImageURL,
			"additional_info": product.AdditionalInfo,
			"category":        product.Category,
			"tag":             product.Tag,
			"brand":           product.Brand,
		}).Error
}

// Delete removes a product. Returns affected rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	return res.RowsAffected, res.Error
}

// CreateReview inserts a review for a product.
func (r *Repository) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

// FindReview loads one review scoped to its product.
func (r *Repository) FindReview(ctx context.Context, productID, reviewID uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", reviewID, productID).
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// UpdateReview overwrites the review content.
func (r *Repository) UpdateReview(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).
		Model(&models.Review{}).
		Where("id = ? AND product_id = ?", review.ID, review.ProductID).
		Updates(map[string]any{
			"name":    review.Name,
			"email":   review.Email,
			"comment": review.Comment,
			"rating":  review.Rating,
		}).Error
}

// DeleteReview removes one review scoped to its product. Returns affected rows.
func (r *Repository) DeleteReview(ctx context.Context, productID, reviewID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", reviewID, productID).
		Delete(&models.Review{})
	return res.RowsAffected, res.Error
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(value)))
	}
	return out
}
