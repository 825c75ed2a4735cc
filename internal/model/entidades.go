package model

import "time"

// Localidad maps the 'localidades' table. Rows are created on demand by the
// bulk import, keyed by their unique name.
type Localidad struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"nombre"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Localidad) TableName() string {
	return "localidades"
}

// Empresa maps the 'empresas' table: the contractor executing an obra.
type Empresa struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"nombre"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Empresa) TableName() string {
	return "empresas"
}

// RepresentanteLegal maps the 'representantes_legales' table.
type RepresentanteLegal struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre    string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"nombre"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (RepresentanteLegal) TableName() string {
	return "representantes_legales"
}
