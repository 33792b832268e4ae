package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is a listed security in the company directory.
type Company struct {
	ID           string     `gorm:"type:uuid;primaryKey" json:"id"`
	TickerSymbol string     `gorm:"uniqueIndex;not null" json:"ticker_symbol"`
	Name         string     `gorm:"not null" json:"name"`
	SectorName   *string    `json:"sector_name,omitempty"`
	Industry     *string    `json:"industry,omitempty"`
	WebsiteURL   *string    `json:"website_url,omitempty"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	ScrapedAt    *time.Time `json:"scraped_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the Company model.
func (Company) TableName() string {
	return "companies"
}

// BeforeCreate assigns a UUID when the caller did not.
func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
