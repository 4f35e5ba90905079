package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
)

// ProfileDTO is the caller-facing projection of a user account.
type ProfileDTO struct {
	ID        uuid.UUID    `json:"id"`
	Username  string       `json:"username"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Role      string       `json:"role"`
	Addresses []AddressDTO `json:"addresses"`
	CreatedAt time.Time    `json:"createdAt"`
}

// AddressDTO is the caller-facing projection of an address.
type AddressDTO struct {
	ID      uuid.UUID `json:"id"`
	Street  string    `json:"street"`
	City    string    `json:"city"`
	State   string    `json:"state,omitempty"`
	Zip     string    `json:"zip"`
	Country string    `json:"country,omitempty"`
}

// AddressInput carries the mutable address fields.
type AddressInput struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state"`
	Zip     string `json:"zip" validate:"required"`
	Country string `json:"country"`
}

func toProfileDTO(user *models.User, addresses []models.Address) *ProfileDTO {
	dto := &ProfileDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		Addresses: make([]AddressDTO, 0, len(addresses)),
		CreatedAt: user.CreatedAt,
	}
	if user.Phone != nil {
		dto.Phone = *user.Phone
	}
	for _, address := range addresses {
		dto.Addresses = append(dto.Addresses, toAddressDTO(address))
	}
	return dto
}

func toAddressDTO(address models.Address) AddressDTO {
	return AddressDTO{
		ID:      address.ID,
		Street:  address.Street,
		City:    address.City,
		State:   address.State,
		Zip:     address.Zip,
		Country: address.Country,
	}
}
