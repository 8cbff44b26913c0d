package repository

import (
	"time"

	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository stores operators together with their role and privileges.
type UserRepository interface {
	FindByUsername(username string) (*model.User, error)
	FindByID(id uuid.UUID) (*model.User, error)
	FindAll() ([]model.User, error)
	Create(user *model.User) error
	Update(user *model.User) error
	Delete(id uuid.UUID) error
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error
	UpdateTokenVersion(userID uuid.UUID, version string) error
	UpdateLastSeen(userID uuid.UUID, at time.Time) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db}
}

// withAccess loads what session tokens and privilege checks need.
func withAccess(db *gorm.DB) *gorm.DB {
	return db.Preload("Role").Preload("Privileges")
}

func (r *userRepo) first(query string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.Scopes(withAccess).Where(query, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByUsername(username string) (*model.User, error) {
	return r.first("username = ?", username)
}

func (r *userRepo) FindByID(id uuid.UUID) (*model.User, error) {
	return r.first("id = ?", id)
}

func (r *userRepo) FindAll() ([]model.User, error) {
	var users []model.User
	err := r.db.Scopes(withAccess).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *userRepo) Create(user *model.User) error {
	return r.db.Create(user).Error
}

func (r *userRepo) Update(user *model.User) error {
	return r.db.Save(user).Error
}

// Delete soft deletes the operator; sales and journal lines keep its id.
func (r *userRepo) Delete(id uuid.UUID) error {
	return r.db.Delete(&model.User{}, "id = ?", id).Error
}

func (r *userRepo) set(id uuid.UUID, column string, value interface{}) error {
	res := r.db.Model(&model.User{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	return r.set(userID, "password", hashedPassword)
}

func (r *userRepo) UpdateTokenVersion(userID uuid.UUID, version string) error {
	return r.set(userID, "token_version", version)
}

func (r *userRepo) UpdateLastSeen(userID uuid.UUID, at time.Time) error {
	return r.set(userID, "last_seen_at", at)
}

func (r *userRepo) UpdatePrivileges(userID uuid.UUID, privileges []model.Privilege) error {
	user := model.User{BaseModel: model.BaseModel{ID: userID}}
	return r.db.Model(&user).Association("Privileges").Replace(privileges)
}
