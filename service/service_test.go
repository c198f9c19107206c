package service_test

import (
	"context"
	"testing"

	"github.com/kbukum/invoxia/auth/jwt"
	"github.com/kbukum/invoxia/auth/password"
	"github.com/kbukum/invoxia/errors"
	"github.com/kbukum/invoxia/service"
	"github.com/kbukum/invoxia/store"
	"github.com/kbukum/invoxia/store/storetest"
)

type fakeTokens struct {
	issued []jwt.Subject
}

func (f *fakeTokens) Issue(sub jwt.Subject) (string, error) {
	f.issued = append(f.issued, sub)
	return "token-" + sub.UserID, nil
}

func newHasher() *password.Hasher {
	return password.NewArgon2Hasher(
		password.WithArgon2Time(1),
		password.WithArgon2Memory(1024),
		password.WithArgon2Threads(1),
	)
}

// wantKind fails the test unless err is an AppError of kind, optionally
// with message msg.
func wantKind(t *testing.T, err error, kind errors.Kind, msg string) {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("error = %v, want %s AppError", err, kind)
	}
	if appErr.Kind != kind {
		t.Fatalf("kind = %s (%s), want %s", appErr.Kind, appErr.Message, kind)
	}
	if msg != "" && appErr.Message != msg {
		t.Fatalf("message = %q, want %q", appErr.Message, msg)
	}
}

type authFixture struct {
	store  *store.Store
	tokens *fakeTokens
	svc    *service.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	s := storetest.New(t)
	tokens := &fakeTokens{}
	return &authFixture{store: s, tokens: tokens, svc: service.NewAuthService(s, newHasher(), tokens, nil)}
}

func (f *authFixture) signup(t *testing.T, in service.SignupInput) *service.Session {
	t.Helper()
	sess, err := f.svc.Signup(context.Background(), in)
	if err != nil {
		t.Fatalf("Signup(%+v) = %v", in, err)
	}
	return sess
}
