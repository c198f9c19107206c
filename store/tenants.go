package store

import (
	"context"

	"gorm.io/gorm"
)

// TenantRepository reads and writes tenants.
type TenantRepository struct {
	db *gorm.DB
}

// Create inserts t, assigning its ID.
func (r *TenantRepository) Create(ctx context.Context, t *Tenant) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// FindByID returns the tenant with id, or nil.
func (r *TenantRepository) FindByID(ctx context.Context, id string) (*Tenant, error) {
	return first[Tenant](r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByName returns the tenant whose name matches case-insensitively, or nil.
func (r *TenantRepository) FindByName(ctx context.Context, name string) (*Tenant, error) {
	return first[Tenant](r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name))
}

// TenantUpdate lists the tenant columns that may change. Nil fields are left alone.
type TenantUpdate struct {
	Name             *string
	AfipCuit         *string
	AfipPuntoVenta   *int
	AfipIvaCondition *string
	AfipCertPath     *string
	AfipKeyPath      *string
}

func (u TenantUpdate) columns() map[string]interface{} {
	cols := map[string]interface{}{}
	if u.Name != nil {
		cols["name"] = *u.Name
	}
	if u.AfipCuit != nil {
		cols["afip_cuit"] = *u.AfipCuit
	}
	if u.AfipPuntoVenta != nil {
		cols["afip_punto_venta"] = *u.AfipPuntoVenta
	}
	if u.AfipIvaCondition != nil {
		cols["afip_iva_condition"] = *u.AfipIvaCondition
	}
	if u.AfipCertPath != nil {
		cols["afip_cert_path"] = *u.AfipCertPath
	}
	if u.AfipKeyPath != nil {
		cols["afip_key_path"] = *u.AfipKeyPath
	}
	return cols
}

// Update applies u to the tenant with id and returns the stored result,
// or nil when the tenant does not exist.
func (r *TenantRepository) Update(ctx context.Context, id string, u TenantUpdate) (*Tenant, error) {
	db := r.db.WithContext(ctx)
	if cols := u.columns(); len(cols) > 0 {
		res := db.Model(&Tenant{}).Where("id = ?", id).Updates(cols)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil
		}
	}
	return r.FindByID(ctx, id)
}
