package model

import (
	"time"
)

type UserRole string

const (
	Learner UserRole = "learner"
	Admin   UserRole = "admin"
)

// User represents an internal account. Learner accounts are derived from LTI
// launches: the username is the compressed external learner id and the
// password is generated deterministically from that id and a secret nonce,
// so the same external learner always maps to the same account.
//
// swagger:model User
type User struct {
	BaseModel
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"Username"`
	Email     string    `gorm:"size:100;not null" json:"Email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;default:'learner'" json:"Role"`
	LastLogin time.Time `json:"LastLogin"`
	LastSeen  time.Time `json:"LastSeen"`
}

func (User) TableName() string {
	return "users"
}
