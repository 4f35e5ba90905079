package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopsphere/shopsphere-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user and address persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateContact overwrites the user's email and phone columns.
func (r *Repository) UpdateContact(ctx context.Context, id uuid.UUID, email string, phone *string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"email": email, "phone": phone}).Error
}

// SetResetOTP stores the password reset code and its expiry.
func (r *Repository) SetResetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"forget_password_otp": otp, "forget_password_expiry": expiry}).Error
}

// ClearResetOTP blanks the reset code fields.
func (r *Repository) ClearResetOTP(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{"forget_password_otp": nil, "forget_password_expiry": nil}).Error
}

// UpdatePasswordHash replaces the stored credential hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// ClearExpiredOTPs blanks reset codes whose expiry is in the past. Returns the
// number of affected rows.
func (r *Repository) ClearExpiredOTPs(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("forget_password_expiry IS NOT NULL AND forget_password_expiry < ?", now).
		Updates(map[string]any{"forget_password_otp": nil, "forget_password_expiry": nil})
	return res.RowsAffected, res.Error
}

// ListAddresses returns the user's addresses in stable position order.
func (r *Repository) ListAddresses(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position asc").
		Find(&addresses).Error
	return addresses, err
}

// FindAddress loads one address owned by the user.
func (r *Repository) FindAddress(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// FindAddressByFields matches on street, city, and zip for the dedupe check at
// order placement.
func (r *Repository) FindAddressByFields(ctx context.Context, userID uuid.UUID, street, city, zip string) (*models.Address, error) {
	var address models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND street = ? AND city = ? AND zip = ?", userID, street, city, zip).
		First(&address).Error
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// CreateAddress appends an address after the user's current last position.
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) (*models.Address, error) {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}

	var maxPosition int
	err := r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("user_id = ?", address.UserID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPosition).Error
	if err != nil {
		return nil, err
	}
	address.Position = maxPosition + 1

	if err := r.db.WithContext(ctx).Create(address).Error; err != nil {
		return nil, err
	}
	return address, nil
}

// UpdateAddress overwrites the mutable address fields.
func (r *Repository) UpdateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ? AND user_id = ?", address.ID, address.UserID).
		Updates(map[string]any{
			"street":  address.Street,
			"city":    address.City,
			"state":   address.State,
			"zip":     address.Zip,
			"country": address.Country,
		}).Error
}

// DeleteAddress removes one address owned by the user. Returns affected rows.
func (r *Repository) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", addressID, userID).
		Delete(&models.Address{})
	return res.RowsAffected, res.Error
}
