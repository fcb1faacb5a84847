package service

import (
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskmanager/taskmanager-go/internal/crypto"
	"github.com/taskmanager/taskmanager-go/internal/testutil"
)

const testTTL = 60 * time.Minute

func newTestAuthService(t *testing.T) (*AuthService, *crypto.TokenManager, *testutil.UserStore) {
	t.Helper()

	hasher, err := crypto.NewPasswordHasher(crypto.SchemeBcrypt, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewPasswordHasher() unexpected error: %v", err)
	}
	tokens, err := crypto.NewTokenManager("service-test-secret", "HS256")
	if err != nil {
		t.Fatalf("NewTokenManager() unexpected error: %v", err)
	}

	users := testutil.NewUserStore()
	return NewAuthService(users, hasher, tokens, testTTL), tokens, users
}
