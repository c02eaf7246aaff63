package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is one entry of the user registry. Each profile owns an isolated
// catalog and ledger.
type Profile struct {
	BaseModel
	Username     string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	FullName     string          `gorm:"type:varchar(255)" json:"full_name"`
	Location     string          `gorm:"type:varchar(255)" json:"location"`
	BusinessName string          `gorm:"type:varchar(255)" json:"business_name"`
	CurrencyRate decimal.Decimal `gorm:"type:decimal(14,4);not null" json:"currency_rate"`
	CreatedDate  time.Time       `json:"created_date"`
	LastLogin    *time.Time      `json:"last_login,omitempty"`
}

func (Profile) TableName() string {
	return "users"
}

// DisplayName renders "username (full name) - location | business" like the profile picker
func (p *Profile) DisplayName() string {
	name := p.Username
	if p.FullName != "" {
		name += " (" + p.FullName + ")"
	}
	if p.Location != "" {
		name += " - " + p.Location
	}
	if p.BusinessName != "" {
		name += " | " + p.BusinessName
	}
	return name
}
