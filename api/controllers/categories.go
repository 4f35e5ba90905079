package controllers

import (
	"net/http"
	"strings"

	"github.com/shopsphere/shopsphere-backend/api/responses"
	categorysvc "github.com/shopsphere/shopsphere-backend/internal/categories"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

// CategoryAdd creates a navigation category from a multipart form with an
// optional image and comma-separated subcategories.
func CategoryAdd(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxProductFormSize); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		input := categorysvc.CategoryInput{
			Name:          strings.TrimSpace(r.FormValue("name")),
			Subcategories: splitMulti(r.Form["subcategories"]),
		}

		image, cleanup, err := formImage(r, "image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		var categoryImage *categorysvc.ImageUpload
		if image != nil {
			categoryImage = &categorysvc.ImageUpload{
				Filename:    image.Filename,
				ContentType: image.ContentType,
				Body:        image.Body,
			}
		}

		category, err := svc.Add(r.Context(), input, categoryImage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

// CategoryListAll serves every category for storefront navigation.
func CategoryListAll(svc categorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}
