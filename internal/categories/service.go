package categories

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/shopsphere/shopsphere-backend/pkg/db"
	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
)

// CategoryDTO is the caller-facing projection of a navigation category.
type CategoryDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	ImageURL      string    `json:"imageUrl,omitempty"`
	Subcategories []string  `json:"subcategories"`
}

// CategoryInput carries the admin create payload.
type CategoryInput struct {
	Name          string   `json:"name" validate:"required"`
	Subcategories []string `json:"subcategories"`
}

// ImageUploader stores a category image and returns its public URL.
type ImageUploader interface {
	UploadObject(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

// ImageUpload carries one multipart image from the admin form.
type ImageUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// CategoryRepository is the persistence surface the service needs.
type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) (*models.Category, error)
	ListAll(ctx context.Context) ([]models.Category, error)
}

// Service exposes the navigation taxonomy operations.
type Service interface {
	Add(ctx context.Context, input CategoryInput, image *ImageUpload) (*CategoryDTO, error)
	ListAll(ctx context.Context) ([]CategoryDTO, error)
}

type service struct {
	repo     CategoryRepository
	uploader ImageUploader
}

// NewService builds the category service. The uploader may be nil when blob
// storage is not configured.
func NewService(repo CategoryRepository, uploader ImageUploader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category repository required")
	}
	return &service{repo: repo, uploader: uploader}, nil
}

func (s *service) Add(ctx context.Context, input CategoryInput, image *ImageUpload) (*CategoryDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	category := &models.Category{
		ID:            uuid.New(),
		Name:          name,
		Subcategories: pq.StringArray(input.Subcategories),
	}

	if image != nil {
		if s.uploader == nil {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "image storage not configured")
		}
		objectName := fmt.Sprintf("categories/%s%s", category.ID, strings.ToLower(path.Ext(image.Filename)))
		url, err := s.uploader.UploadObject(ctx, objectName, image.ContentType, image.Body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload category image")
		}
		category.ImageURL = url
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		if db.IsUniqueViolation(err, "categories_name_key") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}

	dto := toCategoryDTO(created)
	return &dto, nil
}

func (s *service) ListAll(ctx context.Context) ([]CategoryDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	dtos := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toCategoryDTO(&rows[i]))
	}
	return dtos, nil
}

func toCategoryDTO(category *models.Category) CategoryDTO {
	subcategories := make([]string, 0, len(category.Subcategories))
	subcategories = append(subcategories, category.Subcategories...)
	return CategoryDTO{
		ID:            category.ID,
		Name:          category.Name,
		ImageURL:      category.ImageURL,
		Subcategories: subcategories,
	}
}
