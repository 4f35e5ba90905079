package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
)

type stubCatalogRepo struct {
	products   map[uuid.UUID]*models.Product
	reviews    map[uuid.UUID]*models.Review
	deletedRev int64
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{
		products: map[uuid.UUID]*models.Product{},
		reviews:  map[uuid.UUID]*models.Review{},
	}
}

func (s *stubCatalogRepo) ListFiltered(ctx context.Context, filter Filter, sort enums.ProductSort, limit, offset int) ([]models.Product, int64, error) {
	var rows []models.Product
	for _, p := range s.products {
		rows = append(rows, *p)
	}
	return rows, int64(len(rows)), nil
}

func (s *stubCatalogRepo) ListAll(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	for _, p := range s.products {
		rows = append(rows, *p)
	}
	return rows, nil
}

func (s *stubCatalogRepo) Search(ctx context.Context, query string) ([]models.Product, error) {
	return nil, nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (s *stubCatalogRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			rows = append(rows, *p)
		}
	}
	return rows, nil
}

func (s *stubCatalogRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.products[id]
	return ok, nil
}

func (s *stubCatalogRepo) DistinctCategories(ctx context.Context) ([]string, error) { return nil, nil }
func (s *stubCatalogRepo) DistinctBrands(ctx context.Context) ([]string, error)     { return nil, nil }

func (s *stubCatalogRepo) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, product *models.Product) error {
	s.products[product.ID] = product
	return nil
}

func (s *stubCatalogRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := s.products[id]; !ok {
		return 0, nil
	}
	delete(s.products, id)
	return 1, nil
}

func (s *stubCatalogRepo) CreateReview(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	s.reviews[review.ID] = review
	return review, nil
}

func (s *stubCatalogRepo) FindReview(ctx context.Context, productID, reviewID uuid.UUID) (*models.Review, error) {
	r, ok := s.reviews[reviewID]
	if !ok || r.ProductID != productID {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (s *stubCatalogRepo) UpdateReview(ctx context.Context, review *models.Review) error {
	s.reviews[review.ID] = review
	return nil
}

func (s *stubCatalogRepo) DeleteReview(ctx context.Context, productID, reviewID uuid.UUID) (int64, error) {
	return s.deletedRev, nil
}

func newCatalogTestService(t *testing.T, repo CatalogRepository) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedStubProduct(repo *stubCatalogRepo) *models.Product {
	product := &models.Product{ID: uuid.New(), Name: "TV", Price: decimal.NewFromInt(100)}
	repo.products[product.ID] = product
	return product
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestListAllProjectsEveryProduct(t *testing.T) {
	t.Parallel()
	repo := newStubCatalogRepo()
	seedStubProduct(repo)
	seedStubProduct(repo)
	svc := newCatalogTestService(t, repo)

	dtos, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 products, got %d", len(dtos))
	}
}

func TestGetByIDMalformedIDNotFound(t *testing.T) {
	t.Parallel()
	svc := newCatalogTestService(t, newStubCatalogRepo())

	_, err := svc.GetByID(context.Background(), "not-a-uuid")
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestSearchEmptyQueryValidation(t *testing.T) {
	t.Parallel()
	svc := newCatalogTestService(t, newStubCatalogRepo())

	_, err := svc.Search(context.Background(), "   ")
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestListNegativeMaxPriceValidation(t *testing.T) {
	t.Parallel()
	svc := newCatalogTestService(t, newStubCatalogRepo())

	maxPrice := decimal.NewFromInt(-5)
	_, err := svc.List(context.Background(), ListParams{MaxPrice: &maxPrice})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestResolveWishlistSkipsInvalidIDs(t *testing.T) {
	t.Parallel()
	repo := newStubCatalogRepo()
	product := seedStubProduct(repo)
	svc := newCatalogTestService(t, repo)

	resolved, err := svc.ResolveWishlist(context.Background(), []string{
		"garbage", product.ID.String(), uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(resolved) != 1 || resolved[0].ID != product.ID {
		t.Fatalf("expected only the known product, got %+v", resolved)
	}
}

func TestAddReviewRatingBounds(t *testing.T) {
	t.Parallel()
	repo := newStubCatalogRepo()
	product := seedStubProduct(repo)
	svc := newCatalogTestService(t, repo)

	for _, rating := range []int{0, 6} {
		_, err := svc.AddReview(context.Background(), product.ID.String(), ReviewInput{
			Name: "Asha", Email: "asha@example.com", Comment: "x", Rating: rating,
		})
		expectCode(t, err, pkgerrors.CodeValidation)
	}

	review, err := svc.AddReview(context.Background(), product.ID.String(), ReviewInput{
		Name: "Asha", Email: "asha@example.com", Comment: "Solid", Rating: 5,
	})
	if err != nil {
		t.Fatalf("add review: %v", err)
	}
	if review.Rating != 5 {
		t.Fatalf("expected rating 5, got %d", review.Rating)
	}
}

func TestAddReviewUnknownProductNotFound(t *testing.T) {
	t.Parallel()
	svc := newCatalogTestService(t, newStubCatalogRepo())

	_, err := svc.AddReview(context.Background(), uuid.NewString(), ReviewInput{
		Name: "Asha", Email: "asha@example.com", Comment: "x", Rating: 3,
	})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteReviewMissingNotFound(t *testing.T) {
	t.Parallel()
	repo := newStubCatalogRepo()
	product := seedStubProduct(repo)
	svc := newCatalogTestService(t, repo)

	err := svc.DeleteReview(context.Background(), product.ID.String(), uuid.NewString())
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateProductValidatesPrices(t *testing.T) {
	t.Parallel()
	svc := newCatalogTestService(t, newStubCatalogRepo())

	negative := decimal.NewFromInt(-10)
	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "TV", Price: negative}, nil)
	expectCode(t, err, pkgerrors.CodeValidation)

	price := decimal.NewFromInt(100)
	sale := decimal.NewFromInt(200)
	_, err = svc.CreateProduct(context.Background(), ProductInput{Name: "TV", Price: price, SalePrice: &sale}, nil)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateProductWithImageNeedsUploader(t *testing.T) {
	t.Parallel()
	svc := newCatalogTestService(t, newStubCatalogRepo())

	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: "TV", Price: decimal.NewFromInt(10)}, &ImageUpload{Filename: "tv.png"})
	expectCode(t, err, pkgerrors.CodeDependency)
}
