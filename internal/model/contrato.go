package model

import "time"

// Contrato maps the 'contratos' table: one funding tranche of an obra,
// linked to a single uploaded document.
type Contrato struct {
	ID               uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	ObraID           uint    `gorm:"not null;index" json:"obraId"`
	Numero           int     `gorm:"not null" json:"numero"`
	Monto            float64 `gorm:"not null;default:0" json:"monto"`
	Avance           float64 `gorm:"not null;default:0" json:"avance"` // certified progress, 0..100
	Nombre           string  `gorm:"type:varchar(255)" json:"nombre"`
	NombreAlmacenado string  `gorm:"type:varchar(255)" json:"nombreAlmacenado"`
	Ruta             string  `gorm:"type:varchar(512)" json:"ruta"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table mapped by this model.
func (Contrato) TableName() string {
	return "contratos"
}
