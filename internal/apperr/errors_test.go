package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestWrapClassifies(t *testing.T) {
	if Wrap("op", nil) != nil {
		t.Fatal("nil should stay nil")
	}
	if k := KindOf(Wrap("op", gorm.ErrRecordNotFound)); k != NotFound {
		t.Fatalf("record not found -> %s", k)
	}
	if k := KindOf(Wrap("op", errors.New("disk full"))); k != PersistenceFailure {
		t.Fatalf("plain error -> %s", k)
	}

	inner := E(InsufficientStock, "not enough")
	wrapped := Wrap("sales.create", inner)
	if KindOf(wrapped) != InsufficientStock || inner.Op != "sales.create" {
		t.Fatalf("typed error lost: %v", wrapped)
	}
	if !errors.Is(fmt.Errorf("ctx: %w", wrapped), E(InsufficientStock, "")) {
		t.Fatal("errors.Is should match by kind")
	}
	if MessageOf(wrapped) != "not enough" {
		t.Fatalf("message %q", MessageOf(wrapped))
	}
}

func TestResultStatus(t *testing.T) {
	ok := From(42, nil)
	if !ok.OK || ok.Value != 42 || ok.Status(http.StatusCreated) != http.StatusCreated {
		t.Fatalf("ok result %+v", ok)
	}

	cases := map[Kind]int{
		NotFound:           http.StatusNotFound,
		AlreadyVoided:      http.StatusConflict,
		UnbalancedEntry:    http.StatusUnprocessableEntity,
		Validation:         http.StatusBadRequest,
		Expired:            http.StatusForbidden,
		PersistenceFailure: http.StatusInternalServerError,
	}
	for kind, status := range cases {
		res := From(0, E(kind, "boom"))
		if res.OK || res.Error.Kind != kind || res.Status(http.StatusOK) != status {
			t.Errorf("%s: %+v status %d", kind, res, res.Status(http.StatusOK))
		}
	}
}
