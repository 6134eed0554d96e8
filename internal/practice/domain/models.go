// Package domain contains the practice (client) entity whose identity is
// snapshotted into client invoices at generation time.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Practice struct {
	ID                  snowflake.ID `gorm:"primaryKey"`
	Name                string       `gorm:"type:text;not null"`
	Address             string       `gorm:"type:text"`
	Postcode            string       `gorm:"type:text"`
	LocationType        string       `gorm:"type:text"` // care_home, gp_practice
	BillingContactName  string       `gorm:"type:text"`
	BillingContactEmail string       `gorm:"type:text"`
	VATRegistered       bool         `gorm:"not null;default:false"`
	VATNumber           string       `gorm:"type:text"`
	PaymentTermsDays    int          `gorm:"not null;default:30"`
	CreatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Practice) TableName() string { return "practices" }
