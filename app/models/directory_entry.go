package models

import "time"

// DirectoryStatus is the moderation status of a directory entry. Only
// admitted and verified listings may buy sponsorships.
type DirectoryStatus string

const (
	DirectoryStatusUnknown      DirectoryStatus = "unknown"
	DirectoryStatusAdmitted     DirectoryStatus = "admitted"
	DirectoryStatusVerified     DirectoryStatus = "verified"
	DirectoryStatusQuestionable DirectoryStatus = "questionable"
	DirectoryStatusScam         DirectoryStatus = "scam"
	DirectoryStatusRemoved      DirectoryStatus = "removed"
)

// DirectoryEntry is a read model of a listing owned by the surrounding
// directory system. The engine only references it for scope resolution,
// eligibility checks and display.
type DirectoryEntry struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name"`
	Link            string          `gorm:"type:varchar(500);not null;default:''" json:"link"`
	DirectoryStatus DirectoryStatus `gorm:"type:varchar(32);not null;default:'unknown';index" json:"directory_status"`
	SubcategoryID   uint            `gorm:"not null;index" json:"subcategory_id"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Subcategory *Subcategory `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
}

// Category groups subcategories.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Subcategory belongs to one category; directory entries hang off it.
type Subcategory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
