package service

import (
	"context"
	"fmt"

	"github.com/kbukum/invoxia/database"
	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/logger"
	"github.com/kbukum/invoxia/store"
	"github.com/kbukum/invoxia/util"
	"github.com/kbukum/invoxia/validation"
)

// Paging limits for contact lists.
const (
	DefaultContactLimit = 20
	MaxContactLimit     = 20
)

// ContactInput is a validated create request.
type ContactInput struct {
	FullName       string
	DocType        string
	DocNumber      string
	Email          *string
	WhatsAppNumber *string
	IvaCondition   *string
	Address        *string
}

// ContactPatch is a validated update request. Nil fields are kept.
type ContactPatch struct {
	FullName       *string
	DocType        *string
	DocNumber      *string
	Email          *string
	WhatsAppNumber *string
	IvaCondition   *string
	Address        *string
}

// ContactQuery selects one page of contacts.
type ContactQuery struct {
	Q     string
	Page  int
	Limit int
}

// ContactList is one page of contacts plus the total number of matches.
type ContactList struct {
	Contacts []store.Contact
	Total    int64
	Page     int
	Limit    int
}

// ContactService manages a tenant's contacts.
type ContactService struct {
	store *store.Store
	log   *logger.Logger
}

// NewContactService creates a ContactService.
func NewContactService(s *store.Store, log *logger.Logger) *ContactService {
	if log == nil {
		log = logger.Nop()
	}
	return &ContactService{store: s, log: log.WithComponent("contact-service")}
}

// Create stores a new contact for the tenant.
func (s *ContactService) Create(ctx context.Context, tenantID string, in ContactInput) (*store.Contact, error) {
	c := &store.Contact{
		TenantID:       tenantID,
		FullName:       in.FullName,
		DocType:        in.DocType,
		DocNumber:      in.DocNumber,
		Email:          in.Email,
		WhatsAppNumber: in.WhatsAppNumber,
		IvaCondition:   in.IvaCondition,
		Address:        in.Address,
	}

	existing, err := s.store.Contacts().FindByDocument(ctx, tenantID, c.DocType, c.DocNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, duplicateContact(c.DocType, c.DocNumber)
	}
	if err := checkContact(c); err != nil {
		return nil, err
	}

	if err := s.store.Contacts().Create(ctx, c); err != nil {
		if database.IsDuplicateError(err) {
			return nil, duplicateContact(c.DocType, c.DocNumber).WithCause(err)
		}
		return nil, err
	}
	return c, nil
}

// Get returns the tenant's contact.
func (s *ContactService) Get(ctx context.Context, tenantID, id string) (*store.Contact, error) {
	c, err := s.store.Contacts().FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.NotFound("Contact", id)
	}
	return c, nil
}

// List returns one page of the tenant's contacts.
func (s *ContactService) List(ctx context.Context, tenantID string, q ContactQuery) (*ContactList, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultContactLimit
	}
	if q.Limit > MaxContactLimit {
		q.Limit = MaxContactLimit
	}

	contacts, total, err := s.store.Contacts().List(ctx, store.ContactFilter{
		TenantID: tenantID,
		Search:   q.Q,
		Page:     q.Page,
		Limit:    q.Limit,
	})
	if err != nil {
		return nil, err
	}
	if contacts == nil {
		contacts = []store.Contact{}
	}
	return &ContactList{Contacts: contacts, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Update applies patch to the tenant's contact.
func (s *ContactService) Update(ctx context.Context, tenantID, id string, patch ContactPatch) (*store.Contact, error) {
	current, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	next := *current
	apply(&next.FullName, patch.FullName)
	apply(&next.DocType, patch.DocType)
	apply(&next.DocNumber, patch.DocNumber)
	applyOptional(&next.Email, patch.Email)
	applyOptional(&next.WhatsAppNumber, patch.WhatsAppNumber)
	applyOptional(&next.IvaCondition, patch.IvaCondition)
	applyOptional(&next.Address, patch.Address)

	if next.DocType != current.DocType || next.DocNumber != current.DocNumber {
		other, err := s.store.Contacts().FindByDocument(ctx, tenantID, next.DocType, next.DocNumber)
		if err != nil {
			return nil, err
		}
		if other != nil && other.ID != id {
			return nil, duplicateContact(next.DocType, next.DocNumber)
		}
	}
	if err := checkContact(&next); err != nil {
		return nil, err
	}

	ok, err := s.store.Contacts().Update(ctx, &next)
	if err != nil {
		if database.IsDuplicateError(err) {
			return nil, duplicateContact(next.DocType, next.DocNumber).WithCause(err)
		}
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound("Contact", id)
	}
	return &next, nil
}

// Delete removes the tenant's contact.
func (s *ContactService) Delete(ctx context.Context, tenantID, id string) error {
	ok, err := s.store.Contacts().Delete(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NotFound("Contact", id)
	}
	return nil
}

// checkContact enforces the rules that span fields.
func checkContact(c *store.Contact) error {
	v := validation.New().
		Custom(nonEmpty(c.Email) || nonEmpty(c.WhatsAppNumber), "contact", "At least one contact method (email or WhatsApp) is required")
	if c.DocType == store.DocTypeCUIT {
		v.CUIT("docNumber", c.DocNumber).
			Custom(len([]rune(c.FullName)) >= 3, "fullName", "Company name must be at least 3 characters for CUIT")
	}
	return v.Validate()
}

func duplicateContact(docType, docNumber string) *errors.AppError {
	return errors.Conflict(fmt.Sprintf("Contact with %s %s already exists", docType, docNumber))
}

func nonEmpty(s *string) bool { return s != nil && *s != "" }

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func applyOptional(dst **string, v *string) {
	if v != nil {
		*dst = util.NilIfEmpty(*v)
	}
}
