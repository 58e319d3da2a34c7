package models

import "time"

type User struct {
	BaseModel
	Name         string   `gorm:"not null" json:"name"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	Photo        string   `gorm:"default:'default.jpg'" json:"photo"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	PasswordHash string   `gorm:"not null" json:"-"`

	PasswordChangedAt *time.Time `json:"-"`
	// Только SHA-256 от выданного токена, сам токен не хранится
	PasswordResetToken   *string    `gorm:"index" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	// false после deleteMe; неактивные не находятся по email
	Active bool `gorm:"not null;default:true" json:"-"`
}

// ChangedPasswordAfter сообщает, что пароль сменили после выдачи токена.
// Сравнение в миллисекундах, как в claim iat_ms.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return issuedAt.UnixMilli() < u.PasswordChangedAt.UnixMilli()
}
