package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
)

// CartRepository is the persistence surface the service needs.
type CartRepository interface {
	FindCartByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	CreateCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindItem(ctx context.Context, cartID, productID uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) error
	UpdateItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (int64, error)
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (int64, error)
	DeleteItemsByCart(ctx context.Context, cartID uuid.UUID) error
}

// ProductChecker answers whether a catalog product exists.
type ProductChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service exposes the per-user cart operations. Each call is an independent
// read-modify-write with no cross-request coordination; concurrent writers to
// the same cart race and the last write wins.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error)
	Add(ctx context.Context, userID uuid.UUID, input AddInput) ([]ItemDTO, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) ([]ItemDTO, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) ([]ItemDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo     CartRepository
	products ProductChecker
}

// NewService builds the cart service.
func NewService(repo CartRepository, products ProductChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product checker required")
	}
	return &service{repo: repo, products: products}, nil
}

// Get returns the cart contents. A user without a cart row gets an empty list,
// never an error.
func (s *service) Get(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error) {
	cart, err := s.repo.FindCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []ItemDTO{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return toItemDTOs(cart.Items), nil
}

func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddInput) ([]ItemDTO, error) {
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	exists, err := s.products.Exists(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check product")
	}
	if !exists {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	cart, err := s.repo.FindCartByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		cart, err = s.repo.CreateCart(ctx, userID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
	}

	// One line per distinct product: adding again increments.
	item, err := s.repo.FindItem(ctx, cart.ID, productID)
	switch {
	case err == nil:
		if _, err := s.repo.UpdateItemQuantity(ctx, cart.ID, productID, item.Quantity+input.Quantity); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		newItem := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: input.Quantity}
		if err := s.repo.CreateItem(ctx, newItem); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "add cart item")
		}
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart item")
	}

	return s.Get(ctx, userID)
}

// UpdateQuantity overwrites one line's quantity. A requested quantity of zero
// or less leaves the cart untouched and returns it as-is.
func (s *service) UpdateQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) ([]ItemDTO, error) {
	productID, err := uuid.Parse(input.ProductID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	if input.Quantity <= 0 {
		return s.Get(ctx, userID)
	}

	cart, err := s.repo.FindCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	affected, err := s.repo.UpdateItemQuantity(ctx, cart.ID, productID, input.Quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}

	return s.Get(ctx, userID)
}

// Remove filters the line out. Removing an absent product is not an error.
func (s *service) Remove(ctx context.Context, userID, productID uuid.UUID) ([]ItemDTO, error) {
	cart, err := s.repo.FindCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []ItemDTO{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	if _, err := s.repo.DeleteItem(ctx, cart.ID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart item")
	}

	return s.Get(ctx, userID)
}

// Clear empties the cart. The cart row itself survives; a user without a cart
// is a no-op.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.repo.FindCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	if err := s.repo.DeleteItemsByCart(ctx, cart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
