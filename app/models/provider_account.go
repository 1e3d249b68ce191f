package models

import "time"

// ProviderAccount links an OAuth identity to a local user. One user may have
// several providers attached.
type ProviderAccount struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index;not null" json:"user_id"`
	Provider       string     `gorm:"type:varchar(50);not null;uniqueIndex:idx_provider_user" json:"provider"`
	ProviderUserID string     `gorm:"type:varchar(191);not null;uniqueIndex:idx_provider_user" json:"provider_user_id"`
	AccessToken    string     `gorm:"type:text" json:"-"`
	RefreshToken   string     `gorm:"type:text" json:"-"`
	ExpiresAt      *time.Time `gorm:"default:null" json:"-"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
