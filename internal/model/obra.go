package model

import "time"

// Obra states. The bulk import derives them from cell shading and defaults
// to EstadoEnEjecucion.
const (
	EstadoEnLicitacion = "En licitación"
	EstadoEnEjecucion  = "En ejecución"
	EstadoFinalizada   = "Finalizada"
	EstadoAnulada      = "Anulada"
)

// Obra maps the 'obras' table: one tracked public-works project.
type Obra struct {
	ID                uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre            string   `gorm:"type:varchar(255);not null" json:"nombre"`
	Expediente        string   `gorm:"type:varchar(100)" json:"expediente"`
	Detalle           *string  `gorm:"type:text" json:"detalle"`
	Estado            string   `gorm:"type:varchar(50);not null;default:'En ejecución'" json:"estado"`
	Categoria         string   `gorm:"type:varchar(100)" json:"categoria"`
	Monto             float64  `gorm:"not null;default:0" json:"monto"`
	Plazo             *int     `json:"plazo"` // term in days
	CantidadContratos int      `gorm:"not null;default:1" json:"cantidadContratos"`
	Avance            float64  `gorm:"not null;default:0" json:"avance"` // global progress, 0..100
	FechaInicio       *time.Time `json:"fechaInicio"`
	FechaFinEstimada  *time.Time `json:"fechaFinEstimada"`

	LocalidadID    *uint `json:"localidadId"`
	EmpresaID      *uint `json:"empresaId"`
	RepresentanteID *uint `json:"representanteId"`
	InspectorID    *uint `json:"inspectorId"`

	Localidad     *Localidad          `gorm:"foreignKey:LocalidadID" json:"localidad,omitempty"`
	Empresa       *Empresa            `gorm:"foreignKey:EmpresaID" json:"empresa,omitempty"`
	Representante *RepresentanteLegal `gorm:"foreignKey:RepresentanteID" json:"representante,omitempty"`
	Inspector     *User               `gorm:"foreignKey:InspectorID" json:"inspector,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table mapped by this model.
func (Obra) TableName() string {
	return "obras"
}
