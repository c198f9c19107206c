package store

import (
	"context"

	"gorm.io/gorm"
)

// UserRepository reads and writes users.
type UserRepository struct {
	db *gorm.DB
}

// Create inserts u, assigning its ID.
func (r *UserRepository) Create(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// FindByID returns the user with id, or nil.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return first[User](r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByEmail returns the user registered with email, or nil.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return first[User](r.db.WithContext(ctx).Where("email = ?", email))
}

// FindByWhatsApp returns the user owning the WhatsApp number, or nil.
func (r *UserRepository) FindByWhatsApp(ctx context.Context, number string) (*User, error) {
	return first[User](r.db.WithContext(ctx).Where("whatsapp_number = ?", number))
}

// UpdatePassword replaces the stored password hash. It reports false when
// the user does not exist.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) (bool, error) {
	return r.updateColumn(ctx, id, "password", hash)
}

// SetWhatsApp links number to the user. It reports false when the user
// does not exist.
func (r *UserRepository) SetWhatsApp(ctx context.Context, id, number string) (bool, error) {
	return r.updateColumn(ctx, id, "whatsapp_number", number)
}

func (r *UserRepository) updateColumn(ctx context.Context, id, column string, value interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
