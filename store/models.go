package store

import "github.com/kbukum/invoxia/database"

// Role is the role a user holds inside its tenant.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Document types accepted for contacts.
const (
	DocTypeDNI       = "DNI"
	DocTypeCUIT      = "CUIT"
	DocTypeCUIL      = "CUIL"
	DocTypePasaporte = "PASAPORTE"
)

// DocTypes lists the accepted document types.
var DocTypes = []string{DocTypeDNI, DocTypeCUIT, DocTypeCUIL, DocTypePasaporte}

// IVA conditions accepted for tenants and contacts.
const (
	IvaResponsableInscripto = "RESPONSABLE_INSCRIPTO"
	IvaMonotributo          = "MONOTRIBUTO"
	IvaExento               = "EXENTO"
	IvaConsumidorFinal      = "CONSUMIDOR_FINAL"
)

// IvaConditions lists the accepted IVA conditions.
var IvaConditions = []string{IvaResponsableInscripto, IvaMonotributo, IvaExento, IvaConsumidorFinal}

// Tenant is an organization; every user and contact belongs to one.
type Tenant struct {
	database.BaseModel
	Name             string  `gorm:"size:100;not null;uniqueIndex:idx_tenants_name"`
	AfipCuit         *string `gorm:"size:13"`
	AfipPuntoVenta   *int
	AfipIvaCondition *string `gorm:"size:32"`
	AfipCertPath     *string
	AfipKeyPath      *string
}

// AfipMissing returns the names of the AFIP settings not yet configured.
func (t *Tenant) AfipMissing() []string {
	var missing []string
	if t.AfipCuit == nil || *t.AfipCuit == "" {
		missing = append(missing, "afipCuit")
	}
	if t.AfipPuntoVenta == nil || *t.AfipPuntoVenta == 0 {
		missing = append(missing, "afipPuntoVenta")
	}
	if t.AfipIvaCondition == nil || *t.AfipIvaCondition == "" {
		missing = append(missing, "afipIvaCondition")
	}
	if t.AfipCertPath == nil || *t.AfipCertPath == "" {
		missing = append(missing, "afipCertPath")
	}
	if t.AfipKeyPath == nil || *t.AfipKeyPath == "" {
		missing = append(missing, "afipKeyPath")
	}
	return missing
}

// AfipConfigured reports whether every AFIP setting is present.
func (t *Tenant) AfipConfigured() bool { return len(t.AfipMissing()) == 0 }

// User is an account inside a tenant. Either Email or WhatsAppNumber is set.
type User struct {
	database.BaseModel
	Email          *string `gorm:"size:254;uniqueIndex:idx_users_email"`
	Password       *string
	WhatsAppNumber *string `gorm:"column:whatsapp_number;size:15;uniqueIndex:idx_users_whatsapp"`
	Role           Role    `gorm:"size:16;not null"`
	TenantID       string  `gorm:"type:uuid;not null;index:idx_users_tenant"`
}

// Contact is a customer record owned by a tenant. (TenantID, DocType,
// DocNumber) is unique.
type Contact struct {
	database.BaseModel
	TenantID       string  `gorm:"type:uuid;not null;uniqueIndex:idx_contacts_tenant_doc,priority:1"`
	FullName       string  `gorm:"size:200;not null"`
	DocType        string  `gorm:"size:16;not null;uniqueIndex:idx_contacts_tenant_doc,priority:2"`
	DocNumber      string  `gorm:"size:32;not null;uniqueIndex:idx_contacts_tenant_doc,priority:3"`
	Email          *string `gorm:"size:254"`
	WhatsAppNumber *string `gorm:"column:whatsapp_number;size:15"`
	IvaCondition   *string `gorm:"size:32"`
	Address        *string `gorm:"size:255"`
}

// WhatsAppMessage is an inbound message received through the webhook.
// MessageID is the provider id and makes storage idempotent.
type WhatsAppMessage struct {
	database.BaseModel
	MessageID string  `gorm:"size:128;not null;uniqueIndex:idx_whatsapp_messages_message_id"`
	From      string  `gorm:"column:sender;size:32;not null"`
	UserID    *string `gorm:"type:uuid"`
	TenantID  *string `gorm:"type:uuid;index:idx_whatsapp_messages_tenant"`
	Type      string  `gorm:"size:16;not null"`
	Body      string  `gorm:"type:text"`
	Payload   string  `gorm:"type:text"`
}

// TableName keeps the table name readable.
func (WhatsAppMessage) TableName() string { return "whatsapp_messages" }

// Models returns every persisted model, in dependency order, for auto-migration.
func Models() []interface{} {
	return []interface{}{&Tenant{}, &User{}, &Contact{}, &WhatsAppMessage{}}
}
