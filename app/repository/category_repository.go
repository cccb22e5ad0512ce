package repository

import (
	"github.com/dirboard/DirBoard/app/models"
	"gorm.io/gorm"
)

// categoryRepository implements read access to the taxonomy
type categoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a category repository backed by GORM.
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) GetSubcategoryByID(id uint) (*models.Subcategory, error) {
	var subcategory models.Subcategory
	if err := r.db.Preload("Category").First(&subcategory, id).Error; err != nil {
		return nil, err
	}
	return &subcategory, nil
}
