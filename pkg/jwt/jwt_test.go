package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("secret", time.Hour)
	id := uuid.New()

	token, err := m.GenerateToken(id, "amina", "Amina B.", "CASHIER", []string{"sale:create"}, "v1")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != id || claims.Username != "amina" || claims.TokenVersion != "v1" {
		t.Fatalf("claims %+v", claims)
	}
	if len(claims.Privileges) != 1 || claims.Privileges[0] != "sale:create" {
		t.Fatalf("privileges %v", claims.Privileges)
	}
}

func TestValidateRejects(t *testing.T) {
	m := NewManager("secret", time.Hour)
	token, _ := m.GenerateToken(uuid.New(), "u", "n", "ADMIN", nil, "v1")

	if _, err := NewManager("other", time.Hour).ValidateToken(token); err != ErrInvalidToken {
		t.Fatalf("wrong secret: %v", err)
	}
	if _, err := m.ValidateToken(""); err != ErrMissingToken {
		t.Fatalf("empty token: %v", err)
	}

	expired := NewManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.GenerateToken(uuid.New(), "u", "n", "ADMIN", nil, "v1")
	if _, err := m.ValidateToken(old); err != ErrInvalidToken {
		t.Fatalf("expired token: %v", err)
	}
}
