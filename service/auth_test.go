package service_test

import (
	"context"
	"testing"

	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/service"
	"github.com/kbukum/invoxia/store"
	"github.com/kbukum/invoxia/store/storetest"
)

func TestSignup(t *testing.T) {
	f := newAuthFixture(t)

	owner := f.signup(t, service.SignupInput{Email: "owner@acme.test", Password: "Secret123", NewTenantName: "Acme"})
	if owner.User.Role != store.RoleAdmin {
		t.Errorf("creator role = %q, want ADMIN", owner.User.Role)
	}
	if owner.Token != "token-"+owner.User.ID {
		t.Errorf("Token = %q", owner.Token)
	}
	if owner.User.Password == nil || *owner.User.Password == "Secret123" {
		t.Error("password should be stored hashed")
	}
	if sub := f.tokens.issued[0]; sub.TenantID != owner.Tenant.ID || sub.Email != "owner@acme.test" || sub.Role != "ADMIN" {
		t.Errorf("issued subject = %+v", sub)
	}

	member := f.signup(t, service.SignupInput{WhatsAppNumber: "+5491122334455", ExistingTenantName: "acme"})
	if member.User.Role != store.RoleUser {
		t.Errorf("member role = %q, want USER", member.User.Role)
	}
	if member.Tenant.ID != owner.Tenant.ID || member.User.TenantID != owner.Tenant.ID {
		t.Error("member should join the existing tenant")
	}
	if member.User.Password != nil {
		t.Error("signup without password should store none")
	}
}

func TestSignupConflicts(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, service.SignupInput{Email: "owner@acme.test", WhatsAppNumber: "+5491122334455", Password: "Secret123", NewTenantName: "Acme"})

	tests := []struct {
		name string
		in   service.SignupInput
		msg  string
	}{
		{"tenant exists", service.SignupInput{Email: "x@acme.test", NewTenantName: "ACME"}, "Tenant Acme already exists"},
		{"tenant missing", service.SignupInput{Email: "x@acme.test", ExistingTenantName: "Nope"}, "Tenant Nope does not exist"},
		{"email taken", service.SignupInput{Email: "owner@acme.test", NewTenantName: "Other"}, "Email already registered"},
		{"whatsapp taken", service.SignupInput{WhatsAppNumber: "+5491122334455", ExistingTenantName: "Acme"}, "WhatsApp number is already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Signup(context.Background(), tt.in)
			wantKind(t, err, errors.KindConflict, tt.msg)
		})
	}

	if tenant, _ := f.store.Tenants().FindByName(context.Background(), "Other"); tenant != nil {
		t.Error("no tenant should be created by a rejected signup")
	}
}

func TestSignin(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, service.SignupInput{Email: "owner@acme.test", WhatsAppNumber: "+5491122334455", Password: "Secret123", NewTenantName: "Acme"})
	f.signup(t, service.SignupInput{Email: "nopass@acme.test", ExistingTenantName: "Acme"})

	for _, id := range []string{"owner@acme.test", "+5491122334455"} {
		sess, err := f.svc.Signin(context.Background(), id, "Secret123")
		if err != nil {
			t.Fatalf("Signin(%q) = %v", id, err)
		}
		if sess.Tenant.Name != "Acme" || sess.Token == "" {
			t.Errorf("Signin(%q) = %+v", id, sess)
		}
	}

	failures := []struct {
		name, identifier, password string
	}{
		{"wrong password", "owner@acme.test", "Wrong1234"},
		{"unknown user", "ghost@acme.test", "Secret123"},
		{"no password set", "nopass@acme.test", "Secret123"},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Signin(context.Background(), tt.identifier, tt.password)
			wantKind(t, err, errors.KindAuthentication, service.InvalidCredentialsMessage)
		})
	}
}

type countingHasher struct {
	service.PasswordHasher
	verifies int
}

func (h *countingHasher) Verify(ctx context.Context, digest, plaintext string) (bool, error) {
	h.verifies++
	return h.PasswordHasher.Verify(ctx, digest, plaintext)
}

func TestSigninFailuresAlwaysVerify(t *testing.T) {
	s := storetest.New(t)
	hasher := &countingHasher{PasswordHasher: newHasher()}
	svc := service.NewAuthService(s, hasher, &fakeTokens{}, nil)
	ctx := context.Background()
	if _, err := svc.Signup(ctx, service.SignupInput{Email: "owner@acme.test", Password: "Secret123", NewTenantName: "Acme"}); err != nil {
		t.Fatalf("Signup = %v", err)
	}
	if _, err := svc.Signup(ctx, service.SignupInput{Email: "nopass@acme.test", ExistingTenantName: "Acme"}); err != nil {
		t.Fatalf("Signup = %v", err)
	}

	for _, id := range []string{"owner@acme.test", "ghost@acme.test", "nopass@acme.test", "ghost@acme.test"} {
		before := hasher.verifies
		_, err := svc.Signin(ctx, id, "Wrong1234")
		wantKind(t, err, errors.KindAuthentication, service.InvalidCredentialsMessage)
		if got := hasher.verifies - before; got != 1 {
			t.Errorf("Signin(%q) ran %d verifications, want 1", id, got)
		}
	}
}

func TestChangePassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	sess := f.signup(t, service.SignupInput{Email: "owner@acme.test", Password: "Secret123", NewTenantName: "Acme"})

	err := f.svc.ChangePassword(ctx, sess.User.ID, "Wrong1234", "Newpass123")
	wantKind(t, err, errors.KindAuthentication, "Current password is incorrect")

	if err := f.svc.ChangePassword(ctx, sess.User.ID, "Secret123", "Newpass123"); err != nil {
		t.Fatalf("ChangePassword() = %v", err)
	}
	if _, err := f.svc.Signin(ctx, "owner@acme.test", "Secret123"); err == nil {
		t.Error("old password should no longer work")
	}
	if _, err := f.svc.Signin(ctx, "owner@acme.test", "Newpass123"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	err = f.svc.ChangePassword(ctx, "00000000-0000-0000-0000-000000000000", "Secret123", "Newpass123")
	wantKind(t, err, errors.KindNotFound, "User with identifier '00000000-0000-0000-0000-000000000000' not found")
}

func TestProfileAndLinkWhatsApp(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	a := f.signup(t, service.SignupInput{Email: "a@acme.test", Password: "Secret123", NewTenantName: "Acme"})
	b := f.signup(t, service.SignupInput{Email: "b@acme.test", WhatsAppNumber: "+5491100000002", ExistingTenantName: "Acme"})

	profile, err := f.svc.GetProfile(ctx, a.User.ID)
	if err != nil || profile.Tenant.ID != a.Tenant.ID {
		t.Fatalf("GetProfile() = %+v, %v", profile, err)
	}

	_, err = f.svc.LinkWhatsApp(ctx, a.User.ID, "+5491100000002")
	wantKind(t, err, errors.KindConflict, "WhatsApp number already in use")

	u, err := f.svc.LinkWhatsApp(ctx, a.User.ID, "+5491100000001")
	if err != nil || u.WhatsAppNumber == nil || *u.WhatsAppNumber != "+5491100000001" {
		t.Fatalf("LinkWhatsApp() = %+v, %v", u, err)
	}

	if _, err := f.svc.LinkWhatsApp(ctx, b.User.ID, "+5491100000002"); err != nil {
		t.Errorf("relinking own number = %v", err)
	}

	_, err = f.svc.GetProfile(ctx, "00000000-0000-0000-0000-000000000000")
	wantKind(t, err, errors.KindNotFound, "")
}
