package database

import (
	"errors"

	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// SeedOperators creates the privileges, the ADMIN and CASHIER roles and the
// default admin operator when they don't exist yet.
func SeedOperators(db *gorm.DB, log zerolog.Logger) error {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		return err
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		return err
	}

	// 3. Assign privileges to roles
	allPrivileges, err := privilegeRepo.FindAll()
	if err != nil {
		return err
	}

	// ADMIN gets ALL privileges
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		return err
	}
	if len(adminRole.Privileges) == 0 {
		if err := roleRepo.ReplacePrivileges(adminRole, allPrivileges); err != nil {
			return err
		}
		adminRole.Privileges = allPrivileges
		log.Info().Int("privileges", len(allPrivileges)).Msg("ADMIN role assigned all privileges")
	}

	cashierRole, err := roleRepo.FindByCode(model.RoleCashier)
	if err != nil {
		return err
	}
	if len(cashierRole.Privileges) == 0 {
		cashierPrivileges, err := privilegeRepo.FindByCodes(model.CashierPrivileges)
		if err != nil {
			return err
		}
		if err := roleRepo.ReplacePrivileges(cashierRole, cashierPrivileges); err != nil {
			return err
		}
		log.Info().Int("privileges", len(cashierPrivileges)).Msg("CASHIER role assigned selling privileges")
	}

	// 4. Create default admin operator
	_, err = userRepo.FindByUsername(DefaultAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := &model.User{
		Username:   DefaultAdminUsername,
		FullName:   "Administrateur",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(DefaultAdminPassword); err != nil {
		return err
	}
	if err := userRepo.Create(admin); err != nil {
		return err
	}
	log.Warn().Str("username", DefaultAdminUsername).Msg("default admin operator created, change its password")
	return nil
}
