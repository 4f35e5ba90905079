package products

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
	"github.com/shopsphere/shopsphere-backend/pkg/pagination"
)

// CatalogRepository is the persistence surface the catalog service needs.
type CatalogRepository interface {
	ListFiltered(ctx context.Context, filter Filter, sort enums.ProductSort, limit, offset int) ([]models.Product, int64, error)
	ListAll(ctx context.Context) ([]models.Product, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	DistinctBrands(ctx context.Context) ([]string, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	CreateReview(ctx context.Context, review *models.Review) (*models.Review, error)
	FindReview(ctx context.Context, productID, reviewID uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, productID, reviewID uuid.UUID) (int64, error)
}

// ImageUploader stores a product image and returns its public URL.
type ImageUploader interface {
	UploadObject(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

// ImageUpload carries one multipart image from the admin form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// Service exposes catalog browse, review, and admin operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListAll(ctx context.Context) ([]ProductDTO, error)
	GetByID(ctx context.Context, rawID string) (*ProductDTO, error)
	Search(ctx context.Context, query string) ([]ProductDTO, error)
	Options(ctx context.Context) (*FilterOptionsDTO, error)
	ResolveWishlist(ctx context.Context, rawIDs []string) ([]ProductDTO, error)
	AddReview(ctx context.Context, rawProductID string, input ReviewInput) (*ReviewDTO, error)
	UpdateReview(ctx context.Context, rawProductID, rawReviewID string, input ReviewInput) (*ReviewDTO, error)
	DeleteReview(ctx context.Context, rawProductID, rawReviewID string) error
	CreateProduct(ctx context.Context, input ProductInput, image *ImageUpload) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, rawID string, input ProductInput, image *ImageUpload) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, rawID string) error
}

type service struct {
	repo     CatalogRepository
	uploader ImageUploader
}

// NewService builds the catalog service. The uploader may be nil when blob
// storage is not configured; image uploads are then rejected.
func NewService(repo CatalogRepository, uploader ImageUploader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, uploader: uploader}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.MaxPrice != nil && params.MaxPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "maxPrice must be non-negative")
	}
	sort := params.Sort
	if sort == "" {
		sort = enums.ProductSortNewest
	}
	if !sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort")
	}

	page := params.Page.Normalize()
	filter := Filter{
		Categories: params.Categories,
		Brands:     params.Brands,
		MaxPrice:   params.MaxPrice,
	}

	rows, total, err := s.repo.ListFiltered(ctx, filter, sort, page.Limit, page.Offset())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := &ListResult{
		Products:   make([]ProductDTO, 0, len(rows)),
		Pagination: pagination.Build(page, total),
	}
	for i := range rows {
		result.Products = append(result.Products, toProductDTO(&rows[i], false))
	}
	return result, nil
}

// ListAll returns the whole catalog unpaged, for the admin product table.
func (s *service) ListAll(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toProductDTO(&rows[i], false))
	}
	return dtos, nil
}

func (s *service) GetByID(ctx context.Context, rawID string) (*ProductDTO, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	dto := toProductDTO(product, true)
	return &dto, nil
}

func (s *service) Search(ctx context.Context, query string) ([]ProductDTO, error) {
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}

	rows, err := s.repo.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search products")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toProductDTO(&rows[i], false))
	}
	return dtos, nil
}

func (s *service) Options(ctx context.Context) (*FilterOptionsDTO, error) {
	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load categories")
	}
	brands, err := s.repo.DistinctBrands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load brands")
	}
	return &FilterOptionsDTO{Categories: categories, Brands: brands}, nil
}

// ResolveWishlist loads the products for a client-held id list. Malformed and
// unknown ids are skipped silently; the wishlist itself lives on the client.
func (s *service) ResolveWishlist(ctx context.Context, rawIDs []string) ([]ProductDTO, error) {
	ids := make([]uuid.UUID, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wishlist products")
	}

	dtos := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toProductDTO(&rows[i], false))
	}
	return dtos, nil
}

func (s *service) AddReview(ctx context.Context, rawProductID string, input ReviewInput) (*ReviewDTO, error) {
	productID, err := uuid.Parse(rawProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	if _, err := s.repo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	review := &models.Review{
		ProductID: productID,
		Name:      input.Name,
		Email:     input.Email,
		Comment:   input.Comment,
		Rating:    input.Rating,
	}
	created, err := s.repo.CreateReview(ctx, review)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}

	dto := toReviewDTO(*created)
	return &dto, nil
}

func (s *service) UpdateReview(ctx context.Context, rawProductID, rawReviewID string, input ReviewInput) (*ReviewDTO, error) {
	productID, err := uuid.Parse(rawProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	reviewID, err := uuid.Parse(rawReviewID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	review, err := s.repo.FindReview(ctx, productID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}

	review.Name = input.Name
	review.Email = input.Email
	review.Comment = input.Comment
	review.Rating = input.Rating

	if err := s.repo.UpdateReview(ctx, review); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update review")
	}

	dto := toReviewDTO(*review)
	return &dto, nil
}

func (s *service) DeleteReview(ctx context.Context, rawProductID, rawReviewID string) error {
	productID, err := uuid.Parse(rawProductID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	reviewID, err := uuid.Parse(rawReviewID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}

	affected, err := s.repo.DeleteReview(ctx, productID, reviewID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
	}
	return nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput, image *ImageUpload) (*ProductDTO, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:             uuid.New(),
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		SalePrice:      input.SalePrice,
		AdditionalInfo: input.AdditionalInfo,
		Category:       input.Category,
		Tag:            input.Tag,
		Brand:          input.Brand,
	}

	if image != nil {
		url, err := s.uploadImage(ctx, product.ID, image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	dto := toProductDTO(created, false)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, rawID string, input ProductInput, image *ImageUpload) (*ProductDTO, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.SalePrice = input.SalePrice
	product.AdditionalInfo = input.AdditionalInfo
	product.Category = input.Category
	product.Tag = input.Tag
	product.Brand = input.Brand

	if image != nil {
		url, err := s.uploadImage(ctx, product.ID, image)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	dto := toProductDTO(product, false)
	return &dto, nil
}

func (s *service) DeleteProduct(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

func (s *service) uploadImage(ctx context.Context, productID uuid.UUID, image *ImageUpload) (string, error) {
	if s.uploader == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "image storage not configured")
	}
	objectName := fmt.Sprintf("products/%s%s", productID, strings.ToLower(path.Ext(image.Filename)))
	url, err := s.uploader.UploadObject(ctx, objectName, image.ContentType, image.Body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload product image")
	}
	return url, nil
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative")
	}
	if input.SalePrice != nil && input.SalePrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "salePrice must be non-negative")
	}
	if input.SalePrice != nil && input.SalePrice.GreaterThan(input.Price) {
		return pkgerrors.New(pkgerrors.CodeValidation, "salePrice cannot exceed price")
	}
	return nil
}

