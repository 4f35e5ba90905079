package controllers

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/shopsphere-backend/api/responses"
	productsvc "github.com/shopsphere/shopsphere-backend/internal/products"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

// maxProductFormSize bounds the multipart form, image included.
const maxProductFormSize = 16 << 20

// AdminProductList serves the full unpaged catalog for the admin table.
func AdminProductList(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// AdminProductCreate adds a catalog product from a multipart form.
func AdminProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, image, cleanup, err := parseProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		product, err := svc.CreateProduct(r.Context(), input, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminProductUpdate overwrites a catalog product from a multipart form.
func AdminProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, image, cleanup, err := parseProductForm(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cleanup()

		product, err := svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input, image)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// AdminProductDelete removes a catalog product.
func AdminProductDelete(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// parseProductForm reads the multipart admin form into a ProductInput plus an
// optional image upload. The caller must invoke cleanup to close the file.
func parseProductForm(r *http.Request) (productsvc.ProductInput, *productsvc.ImageUpload, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(maxProductFormSize); err != nil {
		return productsvc.ProductInput{}, nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	input := productsvc.ProductInput{
		Name:           strings.TrimSpace(r.FormValue("name")),
		Description:    r.FormValue("description"),
		AdditionalInfo: r.FormValue("additionalInfo"),
		Category:       strings.TrimSpace(r.FormValue("category")),
		Tag:            strings.TrimSpace(r.FormValue("tag")),
		Brand:          strings.TrimSpace(r.FormValue("brand")),
	}

	price, err := parseFormDecimal(r.FormValue("price"))
	if err != nil {
		return productsvc.ProductInput{}, nil, noop, err
	}
	if price != nil {
		input.Price = *price
	}

	salePrice, err := parseFormDecimal(r.FormValue("salePrice"))
	if err != nil {
		return productsvc.ProductInput{}, nil, noop, err
	}
	input.SalePrice = salePrice

	image, cleanup, err := formImage(r, "image")
	if err != nil {
		return productsvc.ProductInput{}, nil, noop, err
	}
	return input, image, cleanup, nil
}

func parseFormDecimal(raw string) (*decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a valid amount", trimmed))
	}
	return &value, nil
}

// formImage extracts an optional file field from a parsed multipart form.
func formImage(r *http.Request, field string) (*productsvc.ImageUpload, func(), error) {
	noop := func() {}

	file, header, err := r.FormFile(field)
	if err != nil {
		if err == http.ErrMissingFile {
			return nil, noop, nil
		}
		return nil, noop, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid image upload")
	}

	upload := &productsvc.ImageUpload{
		Filename:    header.Filename,
		ContentType: imageContentType(header),
		Body:        file,
	}
	return upload, func() { file.Close() }, nil
}

func imageContentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
