package store

import (
	"context"

	"gorm.io/gorm"
)

// ContactRepository reads and writes contacts. Every method is scoped to
// one tenant.
type ContactRepository struct {
	db *gorm.DB
}

// ContactFilter selects one page of a tenant's contacts.
type ContactFilter struct {
	TenantID string
	// Search matches full name or document number, case-insensitively.
	Search string
	Page   int
	Limit  int
}

// Create inserts c, assigning its ID.
func (r *ContactRepository) Create(ctx context.Context, c *Contact) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// FindByID returns the tenant's contact with id, or nil.
func (r *ContactRepository) FindByID(ctx context.Context, tenantID, id string) (*Contact, error) {
	return first[Contact](r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID))
}

// FindByDocument returns the tenant's contact with the given document, or nil.
func (r *ContactRepository) FindByDocument(ctx context.Context, tenantID, docType, docNumber string) (*Contact, error) {
	return first[Contact](r.db.WithContext(ctx).
		Where("tenant_id = ? AND doc_type = ? AND doc_number = ?", tenantID, docType, docNumber))
}

// List returns one page of contacts ordered by full name, plus the total
// number of matches.
func (r *ContactRepository) List(ctx context.Context, f ContactFilter) ([]Contact, int64, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&Contact{}).Where("tenant_id = ?", f.TenantID)
		if f.Search != "" {
			p := likePattern(f.Search)
			q = q.Where(`(LOWER(full_name) LIKE ? ESCAPE '\' OR LOWER(doc_number) LIKE ? ESCAPE '\')`, p, p)
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contacts []Contact
	err := scope().Order("full_name ASC").Order("id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&contacts).Error
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// Update writes every mutable column of c. It reports false when no
// contact with c.ID exists in c.TenantID.
func (r *ContactRepository) Update(ctx context.Context, c *Contact) (bool, error) {
	res := r.db.WithContext(ctx).Model(c).
		Where("tenant_id = ?", c.TenantID).
		Select("full_name", "doc_type", "doc_number", "email", "whatsapp_number", "iva_condition", "address", "updated_at").
		Updates(c)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Delete removes the tenant's contact with id. It reports false when
// nothing was deleted.
func (r *ContactRepository) Delete(ctx context.Context, tenantID, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND tenant_id = ?", id, tenantID).Delete(&Contact{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CountByTenant returns how many contacts the tenant has.
func (r *ContactRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Contact{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, err
}
