package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Store groups the repositories over one gorm connection.
type Store struct {
	db *gorm.DB
}

// New creates a store over db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB { return s.db }

// Tenants returns the tenant repository.
func (s *Store) Tenants() *TenantRepository { return &TenantRepository{db: s.db} }

// Users returns the user repository.
func (s *Store) Users() *UserRepository { return &UserRepository{db: s.db} }

// Contacts returns the contact repository.
func (s *Store) Contacts() *ContactRepository { return &ContactRepository{db: s.db} }

// Messages returns the WhatsApp message repository.
func (s *Store) Messages() *MessageRepository { return &MessageRepository{db: s.db} }

// Transaction runs fn with a store bound to one transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// CreateUserAndTenant stores user and, when tenant is not nil, a new
// tenant in a single transaction. The user joins the new tenant.
func (s *Store) CreateUserAndTenant(ctx context.Context, tenant *Tenant, user *User) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if tenant != nil {
			if err := tx.Tenants().Create(ctx, tenant); err != nil {
				return err
			}
			user.TenantID = tenant.ID
		}
		return tx.Users().Create(ctx, user)
	})
}

// first runs q.First and maps not-found to (nil, nil).
func first[T any](q *gorm.DB) (*T, error) {
	var out T
	if err := q.First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// likePattern builds a case-insensitive "contains" pattern with LIKE
// metacharacters escaped.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
