package repository

import (
	"github.com/dirboard/DirBoard/app/models"
	"gorm.io/gorm"
)

// directoryEntryRepository implements read access to directory listings
type directoryEntryRepository struct {
	db *gorm.DB
}

// NewDirectoryEntryRepository creates a directory entry repository backed by GORM.
func NewDirectoryEntryRepository(db *gorm.DB) DirectoryEntryRepository {
	return &directoryEntryRepository{db: db}
}

func (r *directoryEntryRepository) GetByID(id uint) (*models.DirectoryEntry, error) {
	var entry models.DirectoryEntry
	err := r.db.Preload("Subcategory").Preload("Subcategory.Category").First(&entry, id).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *directoryEntryRepository) GetByIDs(ids []uint) (map[uint]models.DirectoryEntry, error) {
	result := make(map[uint]models.DirectoryEntry, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var entries []models.DirectoryEntry
	err := r.db.Preload("Subcategory").Where("id IN ?", ids).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		result[e.ID] = e
	}
	return result, nil
}

var sellableStatuses = []models.DirectoryStatus{
	models.DirectoryStatusAdmitted,
	models.DirectoryStatusVerified,
}

func (r *directoryEntryRepository) CountActiveByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.DirectoryEntry{}).
		Joins("JOIN subcategories ON subcategories.id = directory_entries.subcategory_id").
		Where("subcategories.category_id = ? AND directory_entries.directory_status IN ?", categoryID, sellableStatuses).
		Count(&count).Error
	return count, err
}

func (r *directoryEntryRepository) CountActiveBySubcategory(subcategoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.DirectoryEntry{}).
		Where("subcategory_id = ? AND directory_status IN ?", subcategoryID, sellableStatuses).
		Count(&count).Error
	return count, err
}
