package api

import (
	"time"

	"github.com/kbukum/invoxia/service"
	"github.com/kbukum/invoxia/store"
)

// UserResponse is the public view of a user. The password hash never
// leaves the service.
type UserResponse struct {
	ID             string    `json:"id"`
	Email          *string   `json:"email"`
	WhatsAppNumber *string   `json:"whatsappNumber"`
	Role           string    `json:"role"`
	TenantID       string    `json:"tenantId"`
	CreatedAt      time.Time `json:"createdAt"`
}

// TenantResponse is the public view of a tenant.
type TenantResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	AfipCuit         *string   `json:"afipCuit"`
	AfipPuntoVenta   *int      `json:"afipPuntoVenta"`
	AfipIvaCondition *string   `json:"afipIvaCondition"`
	AfipCertPath     *string   `json:"afipCertPath"`
	AfipKeyPath      *string   `json:"afipKeyPath"`
	AfipConfigured   bool      `json:"afipConfigured"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ContactResponse is the public view of a contact.
type ContactResponse struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	DocType        string    `json:"docType"`
	DocNumber      string    `json:"docNumber"`
	Email          *string   `json:"email,omitempty"`
	WhatsAppNumber *string   `json:"whatsapp,omitempty"`
	IvaCondition   *string   `json:"ivaCondition,omitempty"`
	Address        *string   `json:"address,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// AuthResponse is returned by signup and signin.
type AuthResponse struct {
	User   UserResponse   `json:"user"`
	Tenant TenantResponse `json:"tenant"`
	Token  string         `json:"token"`
}

// ProfileResponse is returned by the profile endpoint.
type ProfileResponse struct {
	User   UserResponse   `json:"user"`
	Tenant TenantResponse `json:"tenant"`
}

func newUserResponse(u *store.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		WhatsAppNumber: u.WhatsAppNumber,
		Role:           string(u.Role),
		TenantID:       u.TenantID,
		CreatedAt:      u.CreatedAt,
	}
}

func newTenantResponse(t *store.Tenant) TenantResponse {
	return TenantResponse{
		ID:               t.ID,
		Name:             t.Name,
		AfipCuit:         t.AfipCuit,
		AfipPuntoVenta:   t.AfipPuntoVenta,
		AfipIvaCondition: t.AfipIvaCondition,
		AfipCertPath:     t.AfipCertPath,
		AfipKeyPath:      t.AfipKeyPath,
		AfipConfigured:   t.AfipConfigured(),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func newContactResponse(c *store.Contact) ContactResponse {
	return ContactResponse{
		ID:             c.ID,
		FullName:       c.FullName,
		DocType:        c.DocType,
		DocNumber:      c.DocNumber,
		Email:          c.Email,
		WhatsAppNumber: c.WhatsAppNumber,
		IvaCondition:   c.IvaCondition,
		Address:        c.Address,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func newAuthResponse(s *service.Session) AuthResponse {
	return AuthResponse{
		User:   newUserResponse(s.User),
		Tenant: newTenantResponse(s.Tenant),
		Token:  s.Token,
	}
}
