package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"github.com/shopsphere/shopsphere-backend/pkg/enums"
	pkgerrors "github.com/shopsphere/shopsphere-backend/pkg/errors"
	"github.com/shopsphere/shopsphere-backend/pkg/logger"
)

const recentOrdersLimit = 5

// OrderRepository is the persistence surface the service needs.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	ListRecent(ctx context.Context, n int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus, reason *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context) (map[enums.OrderStatus]int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
}

// AddressBook covers the user-row side effects of order placement.
type AddressBook interface {
	UpdateContact(ctx context.Context, id uuid.UUID, email string, phone *string) error
	FindAddressByFields(ctx context.Context, userID uuid.UUID, street, city, zip string) (*models.Address, error)
	CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error)
}

// Actor identifies who is invoking an order operation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

func (a Actor) isAdmin() bool { return a.Role == enums.RoleAdmin }

// Service exposes the order lifecycle. Placement does not touch the cart; the
// client triggers cart-clear as a separate call after a successful placement.
type Service interface {
	Place(ctx context.Context, userID uuid.UUID, input PlaceInput) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
	ListAll(ctx context.Context) ([]OrderDTO, error)
	Cancel(ctx context.Context, actor Actor, orderID uuid.UUID, input CancelInput) (*OrderDTO, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, input SetStatusInput) (*OrderDTO, error)
	Delete(ctx context.Context, actor Actor, orderID uuid.UUID) error
	Summary(ctx context.Context) (*SummaryDTO, error)
}

// ServiceParams collects the order service dependencies.
type ServiceParams struct {
	Repo  OrderRepository
	Users AddressBook
	Logg  *logger.Logger
}

type service struct {
	repo  OrderRepository
	users AddressBook
	logg  *logger.Logger
}

// NewService builds the order service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("address book required")
	}
	if params.Logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: params.Repo, users: params.Users, logg: params.Logg}, nil
}

// Place snapshots the submitted lines into an immutable Pending order. The
// total is recomputed from the lines server-side and a disagreeing client
// total is rejected.
func (s *service) Place(ctx context.Context, userID uuid.UUID, input PlaceInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	computed := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Items))
	for _, line := range input.Items {
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
		if line.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item price must not be negative")
		}
		computed = computed.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, models.OrderItem{
			Name:     line.Name,
			Price:    line.Price,
			Quantity: line.Quantity,
		})
	}
	if !computed.Equal(input.Total) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total does not match order items")
	}

	order := &models.Order{
		UserID:          userID,
		Total:           computed,
		PaymentMethod:   method,
		Status:          enums.OrderStatusPending,
		ShippingName:    input.Shipping.Name,
		ShippingEmail:   strings.ToLower(strings.TrimSpace(input.Shipping.Email)),
		ShippingPhone:   input.Shipping.Phone,
		ShippingStreet:  input.Shipping.Street,
		ShippingCity:    input.Shipping.City,
		ShippingState:   input.Shipping.State,
		ShippingZip:     input.Shipping.Zip,
		ShippingCountry: input.Shipping.Country,
		Items:           items,
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	s.applyShippingSideEffects(ctx, userID, input.Shipping)

	dto := toOrderDTO(created)
	return &dto, nil
}

// applyShippingSideEffects upserts the user's contact fields and appends the
// shipping address to the address book when street+city+zip is new. Failures
// here are logged and swallowed; the order is already placed.
func (s *service) applyShippingSideEffects(ctx context.Context, userID uuid.UUID, shipping ShippingInput) {
	var phone *string
	if shipping.Phone != "" {
		phone = &shipping.Phone
	}
	email := strings.ToLower(strings.TrimSpace(shipping.Email))
	if err := s.users.UpdateContact(ctx, userID, email, phone); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("update contact after order: %v", err))
	}

	_, err := s.users.FindAddressByFields(ctx, userID, shipping.Street, shipping.City, shipping.Zip)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Warn(ctx, fmt.Sprintf("lookup address after order: %v", err))
		return
	}
	_, err = s.users.CreateAddress(ctx, &models.Address{
		UserID:  userID,
		Street:  shipping.Street,
		City:    shipping.City,
		State:   shipping.State,
		Zip:     shipping.Zip,
		Country: shipping.Country,
	})
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("append address after order: %v", err))
	}
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toOrderDTOs(rows), nil
}

func (s *service) ListAll(ctx context.Context) ([]OrderDTO, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return toOrderDTOs(rows), nil
}

// Cancel moves an order to Cancelled. Owners may cancel only while Pending;
// admins may cancel from any non-terminal state. Cancelled and Delivered
// orders stay put.
func (s *service) Cancel(ctx context.Context, actor Actor, orderID uuid.UUID, input CancelInput) (*OrderDTO, error) {
	order, err := s.loadOwned(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("order is already %s", order.Status))
	}
	if !actor.isAdmin() && order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "only pending orders can be cancelled")
	}

	var reason *string
	if trimmed := strings.TrimSpace(input.Reason); trimmed != "" {
		reason = &trimmed
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled, reason); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
	}

	order.Status = enums.OrderStatusCancelled
	order.CancellationReason = reason
	dto := toOrderDTO(order)
	return &dto, nil
}

// SetStatus is the admin overwrite path. The target must be a known status and
// terminal orders cannot transition out.
func (s *service) SetStatus(ctx context.Context, orderID uuid.UUID, input SetStatusInput) (*OrderDTO, error) {
	status, err := enums.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status.IsTerminal() && status != order.Status {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is already %s", order.Status))
	}

	if err := s.repo.UpdateStatus(ctx, order.ID, status, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	order.Status = status
	dto := toOrderDTO(order)
	return &dto, nil
}

// Delete hard-deletes an order regardless of status, for the owner or an admin.
func (s *service) Delete(ctx context.Context, actor Actor, orderID uuid.UUID) error {
	order, err := s.loadOwned(ctx, actor, orderID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, order.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	return nil
}

// Summary produces the admin dashboard rollup.
func (s *service) Summary(ctx context.Context) (*SummaryDTO, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}

	var total int64
	for _, n := range counts {
		total += n
	}

	revenue, err := s.repo.Revenue(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum revenue")
	}

	recent, err := s.repo.ListRecent(ctx, recentOrdersLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list recent orders")
	}

	return &SummaryDTO{
		TotalOrders:    total,
		CountsByStatus: counts,
		Revenue:        revenue,
		RecentOrders:   toOrderDTOs(recent),
	}, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

// loadOwned loads the order and hides it from non-owning non-admin callers.
func (s *service) loadOwned(ctx context.Context, actor Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.isAdmin() && order.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}
