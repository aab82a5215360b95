package domain

import (
	"time"
)

// Role type to distinguish between staff roles
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
)

// User is a staff account that can sign in to the Record Store.
type User struct {
	ID           string    `bson:"_id" json:"id" gorm:"primaryKey;size:64"`
	Username     string    `bson:"username" json:"username" gorm:"size:64;uniqueIndex"` // Should be unique
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role      `bson:"role" json:"role" gorm:"size:16"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt" gorm:"autoUpdateTime:false"`
}

func (u User) Key() string { return u.ID }

func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}
