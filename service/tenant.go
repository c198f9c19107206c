package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kbukum/invoxia/database"
	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/store"
	"github.com/kbukum/invoxia/validation"
)

// Accepted file extensions for AFIP credentials.
var (
	certExtensions = []string{".crt", ".pem"}
	keyExtensions  = []string{".key", ".pem"}
)

// TenantConfigInput holds the tenant settings to change. Nil fields are kept.
type TenantConfigInput struct {
	Name             *string
	AfipCuit         *string
	AfipPuntoVenta   *int
	AfipIvaCondition *string
}

// AfipStatus tells whether a tenant can issue invoices.
type AfipStatus struct {
	Configured bool     `json:"configured"`
	Missing    []string `json:"missing"`
}

// Credentials are the stored certificate and key paths.
type Credentials struct {
	CertPath string `json:"certPath"`
	KeyPath  string `json:"keyPath"`
}

// TenantService manages tenant settings.
type TenantService struct {
	store *store.Store
	log   *logger.Logger
}

// NewTenantService creates a TenantService.
func NewTenantService(s *store.Store, log *logger.Logger) *TenantService {
	if log == nil {
		log = logger.Nop()
	}
	return &TenantService{store: s, log: log.WithComponent("tenant-service")}
}

// GetSettings returns the tenant.
func (s *TenantService) GetSettings(ctx context.Context, tenantID string) (*store.Tenant, error) {
	return s.tenant(ctx, tenantID)
}

// UpdateCredentials stores the certificate and key paths after checking
// they are absolute, free of "..", and carry the expected extensions.
func (s *TenantService) UpdateCredentials(ctx context.Context, tenantID, certPath, keyPath string) (*Credentials, error) {
	if _, err := s.tenant(ctx, tenantID); err != nil {
		return nil, err
	}

	err := validation.New().
		SafePath("certPath", certPath, certExtensions...).
		SafePath("keyPath", keyPath, keyExtensions...).
		Validate()
	if err != nil {
		return nil, err
	}

	updated, err := s.store.Tenants().Update(ctx, tenantID, store.TenantUpdate{
		AfipCertPath: &certPath,
		AfipKeyPath:  &keyPath,
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, errors.NotFound("Tenant", tenantID)
	}
	s.log.WithContext(ctx).Info("AFIP credentials updated")
	return &Credentials{CertPath: certPath, KeyPath: keyPath}, nil
}

// UpdateConfig changes the tenant name and AFIP settings. Callers may only
// update their own tenant.
func (s *TenantService) UpdateConfig(ctx context.Context, callerTenantID, tenantID string, in TenantConfigInput) (*store.Tenant, error) {
	if callerTenantID != tenantID {
		return nil, errors.Authorization("You can only update your own tenant")
	}
	current, err := s.tenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	v := validation.New()
	if in.Name != nil {
		v.MinLength("name", strings.TrimSpace(*in.Name), 2)
	}
	if in.AfipCuit != nil {
		v.CUIT("afipCuit", *in.AfipCuit)
	}
	if in.AfipPuntoVenta != nil {
		v.Range("afipPuntoVenta", *in.AfipPuntoVenta, 1, 9999)
	}
	if in.AfipIvaCondition != nil {
		v.OneOf("afipIvaCondition", *in.AfipIvaCondition, store.IvaConditions)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}

	if in.Name != nil && *in.Name != current.Name {
		other, err := s.store.Tenants().FindByName(ctx, *in.Name)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != tenantID {
			return nil, errors.Conflict(fmt.Sprintf("Tenant name %s is already in use", *in.Name))
		}
	}

	updated, err := s.store.Tenants().Update(ctx, tenantID, store.TenantUpdate{
		Name:             in.Name,
		AfipCuit:         in.AfipCuit,
		AfipPuntoVenta:   in.AfipPuntoVenta,
		AfipIvaCondition: in.AfipIvaCondition,
	})
	if err != nil {
		if database.IsDuplicateError(err) {
			return nil, errors.Conflict("Tenant name is already in use").WithCause(err)
		}
		return nil, err
	}
	if updated == nil {
		return nil, errors.NotFound("Tenant", tenantID)
	}
	return updated, nil
}

// AfipStatus reports which AFIP settings are still missing.
func (s *TenantService) AfipStatus(ctx context.Context, tenantID string) (*AfipStatus, error) {
	t, err := s.tenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	missing := t.AfipMissing()
	if missing == nil {
		missing = []string{}
	}
	return &AfipStatus{Configured: len(missing) == 0, Missing: missing}, nil
}

func (s *TenantService) tenant(ctx context.Context, id string) (*store.Tenant, error) {
	t, err := s.store.Tenants().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errors.NotFound("Tenant", id)
	}
	return t, nil
}
