package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
)

// ItemDTO is one cart line with its live product details resolved.
type ItemDTO struct {
	ProductID uuid.UUID        `json:"productId"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"salePrice,omitempty"`
	ImageURL  string           `json:"imageUrl,omitempty"`
	Quantity  int              `json:"quantity"`
}

// AddInput carries the add-to-cart payload.
type AddInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
}

// UpdateQuantityInput carries the overwrite-quantity payload. Quantity is
// deliberately unbounded below; values <= 0 are a silent no-op.
type UpdateQuantityInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

func toItemDTO(item *models.CartItem) ItemDTO {
	dto := ItemDTO{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}
	if item.Product != nil {
		dto.Name = item.Product.Name
		dto.Price = item.Product.Price
		dto.SalePrice = item.Product.SalePrice
		dto.ImageURL = item.Product.ImageURL
	}
	return dto
}

func toItemDTOs(items []models.CartItem) []ItemDTO {
	dtos := make([]ItemDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, toItemDTO(&items[i]))
	}
	return dtos
}
