package api

import (
	"github.com/kbukum/invoxia/service"
	"github.com/kbukum/invoxia/store"
	"github.com/kbukum/invoxia/validation"
)

// SignupRequest creates an account, and a tenant when NewTenantName is set.
type SignupRequest struct {
	Email              string `json:"email" validate:"omitempty,email,min=5,max=254"`
	Password           string `json:"password" validate:"omitempty,strongpassword"`
	NewTenantName      string `json:"newTenantName" validate:"omitempty,min=2,max=100"`
	ExistingTenantName string `json:"existingTenantName" validate:"omitempty,min=2,max=100"`
	WhatsAppNumber     string `json:"whatsappNumber" validate:"omitempty,phone"`
}

// Refine checks the rules spanning fields.
func (r *SignupRequest) Refine() []validation.FieldError {
	var out []validation.FieldError
	if (r.NewTenantName == "") == (r.ExistingTenantName == "") {
		out = append(out, validation.FieldError{
			Path:   "tenantName",
			Reason: "Either newTenantName or existingTenantName must be provided, but not both",
		})
	}
	if r.Email == "" && r.WhatsAppNumber == "" {
		out = append(out, validation.FieldError{
			Path:   "email",
			Reason: "Either email or whatsappNumber must be provided",
		})
	}
	return out
}

func (r *SignupRequest) input() service.SignupInput {
	return service.SignupInput{
		Email:              r.Email,
		Password:           r.Password,
		NewTenantName:      r.NewTenantName,
		ExistingTenantName: r.ExistingTenantName,
		WhatsAppNumber:     r.WhatsAppNumber,
	}
}

// SigninRequest authenticates with an email or WhatsApp number.
type SigninRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// ChangePasswordRequest replaces the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,strongpassword"`
}

// LinkWhatsAppRequest attaches a WhatsApp number to the caller.
type LinkWhatsAppRequest struct {
	WhatsAppNumber string `json:"whatsappNumber" validate:"required,phone"`
}

// IDParams is the :id path parameter.
type IDParams struct {
	ID string `uri:"id" validate:"required,uuid"`
}

// TenantCredentialsRequest stores the AFIP certificate and key paths.
type TenantCredentialsRequest struct {
	CertPath string `json:"certPath" validate:"required"`
	KeyPath  string `json:"keyPath" validate:"required"`
}

// UpdateTenantRequest changes tenant settings. Absent fields are kept.
type UpdateTenantRequest struct {
	Name             *string `json:"name" validate:"omitempty,min=2,max=100"`
	AfipCuit         *string `json:"afipCuit" validate:"omitempty,cuit"`
	AfipPuntoVenta   *int    `json:"afipPuntoVenta" validate:"omitempty,min=1,max=9999"`
	AfipIvaCondition *string `json:"afipIvaCondition" validate:"omitempty,oneof=RESPONSABLE_INSCRIPTO MONOTRIBUTO EXENTO CONSUMIDOR_FINAL"`
}

func (r *UpdateTenantRequest) input() service.TenantConfigInput {
	return service.TenantConfigInput{
		Name:             r.Name,
		AfipCuit:         r.AfipCuit,
		AfipPuntoVenta:   r.AfipPuntoVenta,
		AfipIvaCondition: r.AfipIvaCondition,
	}
}

// CreateContactRequest creates a contact in the caller's tenant.
type CreateContactRequest struct {
	FullName       string  `json:"fullName" validate:"required,min=2,max=200"`
	DocType        string  `json:"docType" validate:"required,oneof=DNI CUIT CUIL PASAPORTE"`
	DocNumber      string  `json:"docNumber" validate:"required,max=32"`
	Email          *string `json:"email" validate:"omitempty,email,min=5,max=254"`
	WhatsAppNumber *string `json:"whatsapp" validate:"omitempty,phone"`
	IvaCondition   *string `json:"ivaCondition" validate:"omitempty,oneof=RESPONSABLE_INSCRIPTO MONOTRIBUTO EXENTO CONSUMIDOR_FINAL"`
	Address        *string `json:"address" validate:"omitempty,max=255"`
}

func (r *CreateContactRequest) input() service.ContactInput {
	return service.ContactInput{
		FullName:       r.FullName,
		DocType:        r.DocType,
		DocNumber:      r.DocNumber,
		Email:          r.Email,
		WhatsAppNumber: r.WhatsAppNumber,
		IvaCondition:   r.IvaCondition,
		Address:        r.Address,
	}
}

// UpdateContactRequest changes a contact. Absent fields are kept; an empty
// string clears an optional field.
type UpdateContactRequest struct {
	FullName       *string `json:"fullName" validate:"omitempty,min=2,max=200"`
	DocType        *string `json:"docType" validate:"omitempty,oneof=DNI CUIT CUIL PASAPORTE"`
	DocNumber      *string `json:"docNumber" validate:"omitempty,min=1,max=32"`
	Email          *string `json:"email" validate:"omitempty,max=254"`
	WhatsAppNumber *string `json:"whatsapp" validate:"omitempty,max=15"`
	IvaCondition   *string `json:"ivaCondition" validate:"omitempty,max=32"`
	Address        *string `json:"address" validate:"omitempty,max=255"`
}

// Refine checks optional fields that carry a value.
func (r *UpdateContactRequest) Refine() []validation.FieldError {
	v := validation.New()
	if r.Email != nil && *r.Email != "" {
		v.Email("email", *r.Email)
	}
	if r.WhatsAppNumber != nil && *r.WhatsAppNumber != "" {
		v.Phone("whatsapp", *r.WhatsAppNumber)
	}
	if r.IvaCondition != nil && *r.IvaCondition != "" {
		v.OneOf("ivaCondition", *r.IvaCondition, store.IvaConditions)
	}
	return v.Errors()
}

func (r *UpdateContactRequest) patch() service.ContactPatch {
	return service.ContactPatch{
		FullName:       r.FullName,
		DocType:        r.DocType,
		DocNumber:      r.DocNumber,
		Email:          r.Email,
		WhatsAppNumber: r.WhatsAppNumber,
		IvaCondition:   r.IvaCondition,
		Address:        r.Address,
	}
}

// ListContactsQuery pages through contacts. Absent page and limit take
// their defaults; explicit values must be in range.
type ListContactsQuery struct {
	Q     string `form:"q" validate:"omitempty,min=1,max=100"`
	Page  int    `form:"page,default=1" validate:"min=1"`
	Limit int    `form:"limit,default=20" validate:"min=1,max=20"`
}

// WebhookVerifyQuery is the subscription handshake.
type WebhookVerifyQuery struct {
	Mode      string `form:"hub.mode" validate:"required"`
	Token     string `form:"hub.verify_token" validate:"required"`
	Challenge string `form:"hub.challenge" validate:"required"`
}
