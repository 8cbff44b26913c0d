package repository

import (
	"go-pos-ledger/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoleRepository stores the ADMIN and CASHIER roles and their default grants.
type RoleRepository interface {
	FindAll() ([]model.Role, error)
	FindByID(id uint) (*model.Role, error)
	FindByCode(code string) (*model.Role, error)
	ReplacePrivileges(role *model.Role, privileges []model.Privilege) error
	SeedDefaults() error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func withGrants(db *gorm.DB) *gorm.DB {
	return db.Preload("Privileges", func(db *gorm.DB) *gorm.DB { return db.Order("code ASC") })
}

func (r *roleRepo) FindAll() ([]model.Role, error) {
	var roles []model.Role
	err := r.db.Scopes(withGrants).Order("id ASC").Find(&roles).Error
	return roles, err
}

func (r *roleRepo) first(query string, arg interface{}) (*model.Role, error) {
	var role model.Role
	if err := r.db.Scopes(withGrants).Where(query, arg).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepo) FindByID(id uint) (*model.Role, error) {
	return r.first("id = ?", id)
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	return r.first("code = ?", code)
}

// ReplacePrivileges sets the role's default grant. Operators already created
// keep their own privilege list.
func (r *roleRepo) ReplacePrivileges(role *model.Role, privileges []model.Privilege) error {
	return r.db.Model(role).Association("Privileges").Replace(privileges)
}

// SeedDefaults inserts missing roles; existing rows keep their edited names.
func (r *roleRepo) SeedDefaults() error {
	roles := make([]model.Role, len(model.DefaultRoles))
	copy(roles, model.DefaultRoles)
	return r.db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "code"}}, DoNothing: true}).
		Omit("Privileges").
		Create(&roles).Error
}
