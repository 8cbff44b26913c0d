package repository

import (
	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll(activeOnly bool) ([]model.ProductCategory, error)
	FindByID(id uuid.UUID) (*model.ProductCategory, error)
	Create(category *model.ProductCategory) error
	Update(category *model.ProductCategory) error
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db}
}

func (r *categoryRepo) FindAll(activeOnly bool) ([]model.ProductCategory, error) {
	var categories []model.ProductCategory
	q := r.db.Order("sort_order ASC, name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&categories).Error
	return categories, err
}

func (r *categoryRepo) FindByID(id uuid.UUID) (*model.ProductCategory, error) {
	var category model.ProductCategory
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepo) Create(category *model.ProductCategory) error {
	return r.db.Create(category).Error
}

func (r *categoryRepo) Update(category *model.ProductCategory) error {
	return r.db.Model(category).
		Select("name", "name_ar", "parent_id", "sort_order", "is_active", "updated_by", "updated_at").
		Updates(category).Error
}
