package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
	"gorm.io/gorm"
)

// UserRepository is the persistence surface the profile service needs.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error)
	CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error)
	UpdateAddress(ctx context.Context, address *models.Address) error
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) (int64, error)
}

// Service exposes profile and address book operations.
type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*AddressDTO, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*AddressDTO, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error
}

type service struct {
	repo UserRepository
}

// NewService builds the profile service.
func NewService(repo UserRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	addresses, err := s.repo.ListAddresses(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addresses")
	}

	return toProfileDTO(user, addresses), nil
}

func (s *service) AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*AddressDTO, error) {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	address := &models.Address{
		UserID:  userID,
		Street:  input.Street,
		City:    input.City,
		State:   input.State,
		Zip:     input.Zip,
		Country: input.Country,
	}
	created, err := s.repo.CreateAddress(ctx, address)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
	}

	dto := toAddressDTO(*created)
	return &dto, nil
}

func (s *service) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, input AddressInput) (*AddressDTO, error) {
	address, err := s.repo.FindAddress(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}

	address.Street = input.Street
	address.City = input.City
	address.State = input.State
	address.Zip = input.Zip
	address.Country = input.Country

	if err := s.repo.UpdateAddress(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
	}

	dto := toAddressDTO(*address)
	return &dto, nil
}

func (s *service) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	affected, err := s.repo.DeleteAddress(ctx, userID, addressID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}
