package entities

import (
	"time"
)

// TraktUser is the remote catalog profile of the signed-in user. A single row
// with Me=true holds the current account.
type TraktUser struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:100" json:"username"`
	Name      string    `gorm:"size:256" json:"name,omitempty"`
	Location  string    `gorm:"size:256" json:"location,omitempty"`
	AvatarURL string    `gorm:"size:2048" json:"avatar_url,omitempty"`
	VIP       bool      `json:"vip"`
	Me        bool      `gorm:"index" json:"me"`
	JoinedAt  time.Time `json:"joined_at,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TraktUser) TableName() string { return "users" }
