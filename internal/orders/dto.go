package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
)

// ItemInput is one snapshot line from the client's cart at checkout.
type ItemInput struct {
	Name     string          `json:"name" validate:"required"`
	Price    decimal.Decimal `json:"price" validate:"required"`
	Quantity int             `json:"quantity" validate:"required,gte=1"`
}

// ShippingInput carries the checkout contact and address fields.
type ShippingInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country"`
}

// PlaceInput is the order placement payload.
type PlaceInput struct {
	Items         []ItemInput     `json:"items" validate:"required,dive"`
	Total         decimal.Decimal `json:"total" validate:"required"`
	PaymentMethod string          `json:"paymentMethod" validate:"required"`
	Shipping      ShippingInput   `json:"shipping" validate:"required"`
}

// CancelInput carries the optional cancellation reason.
type CancelInput struct {
	Reason string `json:"reason"`
}

// SetStatusInput is the admin status overwrite payload.
type SetStatusInput struct {
	Status string `json:"status" validate:"required"`
}

// ItemDTO is one snapshot line of a placed order.
type ItemDTO struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// CustomerDTO is the order owner's identity, resolved on admin listings.
type CustomerDTO struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// OrderDTO is the caller-facing projection of an order.
type OrderDTO struct {
	ID                 uuid.UUID           `json:"id"`
	UserID             uuid.UUID           `json:"userId"`
	Total              decimal.Decimal     `json:"total"`
	PaymentMethod      enums.PaymentMethod `json:"paymentMethod"`
	Status             enums.OrderStatus   `json:"status"`
	CancellationReason *string             `json:"cancellationReason,omitempty"`
	ShippingName       string              `json:"shippingName"`
	ShippingEmail      string              `json:"shippingEmail"`
	ShippingPhone      string              `json:"shippingPhone,omitempty"`
	ShippingStreet     string              `json:"shippingStreet"`
	ShippingCity       string              `json:"shippingCity"`
	ShippingState      string              `json:"shippingState,omitempty"`
	ShippingZip        string              `json:"shippingZip"`
	ShippingCountry    string              `json:"shippingCountry,omitempty"`
	Items              []ItemDTO           `json:"items"`
	Customer           *CustomerDTO        `json:"customer,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
}

// SummaryDTO is the admin dashboard rollup.
type SummaryDTO struct {
	TotalOrders    int64                       `json:"totalOrders"`
	CountsByStatus map[enums.OrderStatus]int64 `json:"countsByStatus"`
	Revenue        decimal.Decimal             `json:"revenue"`
	RecentOrders   []OrderDTO                  `json:"recentOrders"`
}

func toOrderDTO(order *models.Order) OrderDTO {
	items := make([]ItemDTO, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, ItemDTO{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}

	dto := OrderDTO{
		ID:                 order.ID,
		UserID:             order.UserID,
		Total:              order.Total,
		PaymentMethod:      order.PaymentMethod,
		Status:             order.Status,
		CancellationReason: order.CancellationReason,
		ShippingName:       order.ShippingName,
		ShippingEmail:      order.ShippingEmail,
		ShippingPhone:      order.ShippingPhone,
		ShippingStreet:     order.ShippingStreet,
		ShippingCity:       order.ShippingCity,
		ShippingState:      order.ShippingState,
		ShippingZip:        order.ShippingZip,
		ShippingCountry:    order.ShippingCountry,
		Items:              items,
		CreatedAt:          order.CreatedAt,
	}
	if order.User != nil {
		dto.Customer = &CustomerDTO{
			ID:       order.User.ID,
			Username: order.User.Username,
			Email:    order.User.Email,
		}
	}
	return dto
}

func toOrderDTOs(rows []models.Order) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toOrderDTO(&rows[i]))
	}
	return dtos
}
