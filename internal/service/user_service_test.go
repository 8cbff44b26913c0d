package service

import (
	"testing"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"
	"go-pos-ledger/pkg/database"
	"go-pos-ledger/pkg/logger"
)

func newUsers(t *testing.T, f *fixture) (UserService, repository.UserRepository, *model.Role) {
	t.Helper()
	if err := database.SeedOperators(f.db, logger.Nop()); err != nil {
		t.Fatal(err)
	}
	users := repository.NewUserRepo(f.db)
	roles := repository.NewRoleRepo(f.db)
	cashier, err := roles.FindByCode(model.RoleCashier)
	if err != nil {
		t.Fatal(err)
	}
	svc := NewUserService(users, repository.NewPrivilegeRepo(f.db), roles, repository.NewAuditRepo(f.db), f.deps.Clock, logger.Nop())
	return svc, users, cashier
}

func TestCreateOperatorTakesRolePrivileges(t *testing.T) {
	f := newFixture(t)
	svc, _, cashier := newUsers(t, f)

	view, err := svc.CreateOperator(&CreateOperatorRequest{Username: "nadia", Password: "secret1", FullName: "Nadia B.", RoleID: cashier.ID}, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if view.RoleName != cashier.Name || len(view.Privileges) != len(model.CashierPrivileges) {
		t.Fatalf("view = %+v", view)
	}

	_, err = svc.CreateOperator(&CreateOperatorRequest{Username: "nadia", Password: "secret1", FullName: "Other", RoleID: cashier.ID}, f.actor)
	if !apperr.Is(err, apperr.Validation) {
		t.Fatalf("duplicate username: %v", err)
	}
	_, err = svc.CreateOperator(&CreateOperatorRequest{Username: "karim", Password: "secret1", FullName: "Karim", RoleID: 999}, f.actor)
	if !apperr.Is(err, apperr.Validation) {
		t.Fatalf("unknown role: %v", err)
	}
	_, err = svc.CreateOperator(&CreateOperatorRequest{Username: "ka", Password: "1", RoleID: cashier.ID}, f.actor)
	if !apperr.Is(err, apperr.Validation) {
		t.Fatalf("short fields: %v", err)
	}

	var audits int64
	f.db.Model(&model.AuditLog{}).Where("action = ?", "operator_created").Count(&audits)
	if audits != 1 {
		t.Fatalf("audits = %d", audits)
	}
}

func TestSetPrivilegesEndsSessions(t *testing.T) {
	f := newFixture(t)
	svc, users, cashier := newUsers(t, f)
	view, err := svc.CreateOperator(&CreateOperatorRequest{Username: "nadia", Password: "secret1", FullName: "Nadia", RoleID: cashier.ID}, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	before, _ := users.FindByID(view.ID)

	if _, err := svc.SetPrivileges(view.ID, []string{model.PrivSaleView, "sale:refund"}, f.actor); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("unknown code: %v", err)
	}

	got, err := svc.SetPrivileges(view.ID, []string{model.PrivSaleView, model.PrivSaleVoid}, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Privileges) != 2 {
		t.Fatalf("privileges = %v", got.Privileges)
	}
	after, _ := users.FindByID(view.ID)
	if after.TokenVersion == before.TokenVersion {
		t.Fatal("token version unchanged")
	}
}

func TestUpdateAndDeleteOperator(t *testing.T) {
	f := newFixture(t)
	svc, users, cashier := newUsers(t, f)
	view, err := svc.CreateOperator(&CreateOperatorRequest{Username: "nadia", Password: "secret1", FullName: "Nadia", RoleID: cashier.ID}, f.actor)
	if err != nil {
		t.Fatal(err)
	}

	self := Actor{ID: view.ID.String(), Name: "Nadia"}
	off := false
	if _, err := svc.UpdateOperator(view.ID, &UpdateOperatorRequest{IsActive: &off}, self); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("self deactivation: %v", err)
	}

	name := "Nadia Benali"
	got, err := svc.UpdateOperator(view.ID, &UpdateOperatorRequest{FullName: &name, IsActive: &off}, f.actor)
	if err != nil {
		t.Fatal(err)
	}
	if got.FullName != name || got.IsActive {
		t.Fatalf("view = %+v", got)
	}
	stored, _ := users.FindByID(view.ID)
	if stored.TokenVersion == "" {
		t.Fatal("deactivation kept the session")
	}

	if err := svc.DeleteOperator(view.ID, self); !apperr.Is(err, apperr.Validation) {
		t.Fatalf("self delete: %v", err)
	}
	if err := svc.DeleteOperator(view.ID, f.actor); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetOperator(view.ID); !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("after delete: %v", err)
	}
}
