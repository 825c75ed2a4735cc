// Package model defines the Go structs mapped to database tables.
package model

import "time"

// User roles. ADMIN manages users and masters; Inspector accounts are also
// auto-created by the bulk import.
const (
	RolAdmin     = "ADMIN"
	RolInspector = "Inspector"
	RolOperador  = "Operador"
)

// User maps the 'users' table.
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	Nombre    string    `gorm:"type:varchar(255);not null" json:"nombre"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Rol       string    `gorm:"type:varchar(50);not null;default:'Operador'" json:"rol"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table mapped by this model.
func (User) TableName() string {
	return "users"
}
