package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/server"
	"github.com/kbukum/invoxia/server/middleware"
	"github.com/kbukum/invoxia/service"
)

// fail hands err to the error handler and stops the chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// claims returns the caller's identity. Routes using it run behind the
// authenticate decorator, so a miss means the route was wired wrong.
func claims(c *gin.Context) (*jwt.Claims, bool) {
	cl, ok := middleware.ClaimsFrom(c)
	if !ok {
		fail(c, errors.Unauthorized(jwt.InvalidTokenMessage))
	}
	return cl, ok
}

type authHandler struct {
	svc *service.AuthService
}

func (h *authHandler) signup(c *gin.Context) {
	req := middleware.Body[SignupRequest](c)
	sess, err := h.svc.Signup(c.Request.Context(), req.input())
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondCreated(c, "User created successfully", newAuthResponse(sess))
}

func (h *authHandler) signin(c *gin.Context) {
	req := middleware.Body[SigninRequest](c)
	sess, err := h.svc.Signin(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Signed in successfully", newAuthResponse(sess))
}

func (h *authHandler) profile(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	p, err := h.svc.GetProfile(c.Request.Context(), cl.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Profile retrieved successfully", ProfileResponse{
		User:   newUserResponse(p.User),
		Tenant: newTenantResponse(p.Tenant),
	})
}

func (h *authHandler) changePassword(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	req := middleware.Body[ChangePasswordRequest](c)
	if err := h.svc.ChangePassword(c.Request.Context(), cl.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Password changed successfully", nil)
}

func (h *authHandler) linkWhatsApp(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	req := middleware.Body[LinkWhatsAppRequest](c)
	u, err := h.svc.LinkWhatsApp(c.Request.Context(), cl.UserID, req.WhatsAppNumber)
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "WhatsApp number linked successfully", newUserResponse(u))
}

type tenantHandler struct {
	svc *service.TenantService
}

func (h *tenantHandler) settings(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	t, err := h.svc.GetSettings(c.Request.Context(), cl.TenantID)
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Tenant settings retrieved successfully", newTenantResponse(t))
}

func (h *tenantHandler) afipStatus(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	st, err := h.svc.AfipStatus(c.Request.Context(), cl.TenantID)
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "AFIP status retrieved successfully", st)
}

func (h *tenantHandler) credentials(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	req := middleware.Body[TenantCredentialsRequest](c)
	creds, err := h.svc.UpdateCredentials(c.Request.Context(), cl.TenantID, req.CertPath, req.KeyPath)
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Credentials updated successfully", creds)
}

func (h *tenantHandler) update(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	params := middleware.Params[IDParams](c)
	req := middleware.Body[UpdateTenantRequest](c)
	t, err := h.svc.UpdateConfig(c.Request.Context(), cl.TenantID, params.ID, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Tenant updated successfully", newTenantResponse(t))
}

type contactHandler struct {
	svc *service.ContactService
}

func (h *contactHandler) create(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	req := middleware.Body[CreateContactRequest](c)
	contact, err := h.svc.Create(c.Request.Context(), cl.TenantID, req.input())
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondCreated(c, "Contact created successfully", newContactResponse(contact))
}

func (h *contactHandler) list(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	q := middleware.Query[ListContactsQuery](c)
	list, err := h.svc.List(c.Request.Context(), cl.TenantID, service.ContactQuery{Q: q.Q, Page: q.Page, Limit: q.Limit})
	if err != nil {
		fail(c, err)
		return
	}
	page := server.Page[ContactResponse]{
		Items: make([]ContactResponse, 0, len(list.Contacts)),
		Total: list.Total,
		Page:  list.Page,
		Limit: list.Limit,
	}
	for i := range list.Contacts {
		page.Items = append(page.Items, newContactResponse(&list.Contacts[i]))
	}
	server.RespondOK(c, "Contacts retrieved successfully", page)
}

func (h *contactHandler) get(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	params := middleware.Params[IDParams](c)
	contact, err := h.svc.Get(c.Request.Context(), cl.TenantID, params.ID)
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Contact retrieved successfully", newContactResponse(contact))
}

func (h *contactHandler) update(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	params := middleware.Params[IDParams](c)
	req := middleware.Body[UpdateContactRequest](c)
	contact, err := h.svc.Update(c.Request.Context(), cl.TenantID, params.ID, req.patch())
	if err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Contact updated successfully", newContactResponse(contact))
}

func (h *contactHandler) remove(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	params := middleware.Params[IDParams](c)
	if err := h.svc.Delete(c.Request.Context(), cl.TenantID, params.ID); err != nil {
		fail(c, err)
		return
	}
	server.RespondOK(c, "Contact deleted successfully", nil)
}

type webhookHandler struct {
	svc *service.WebhookService
}

func (h *webhookHandler) verify(c *gin.Context) {
	q := middleware.Query[WebhookVerifyQuery](c)
	challenge, err := h.svc.Verify(q.Mode, q.Token, q.Challenge)
	if err != nil {
		fail(c, err)
		return
	}
	c.String(http.StatusOK, challenge)
}

func (h *webhookHandler) receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		fail(c, errors.Validation("Could not read webhook body").WithCause(err))
		return
	}
	if err := h.svc.CheckSignature(body, c.GetHeader(service.SignatureHeader)); err != nil {
		fail(c, err)
		return
	}
	if _, err := h.svc.Receive(c.Request.Context(), body); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": service.EventReceived})
}
