package model

import "time"

// Node kinds of the file tree. The kind is fixed at creation and never
// changes afterwards.
const (
	TipoCarpeta = "carpeta"
	TipoArchivo = "archivo"
)

// Archivo maps the 'archivos' table: one node of the per-obra file tree.
// Folder nodes never carry NombreAlmacenado/Ruta/TipoMime/Tamano. A nil
// PadreID means root level. The self-referential FK cascades on delete, so
// removing a folder row removes its whole subtree in the datastore.
type Archivo struct {
	ID               uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Nombre           string  `gorm:"type:varchar(255);not null" json:"nombre"`
	NombreAlmacenado string  `gorm:"type:varchar(255)" json:"nombreAlmacenado"`
	Ruta             string  `gorm:"type:varchar(512)" json:"ruta"`
	TipoMime         string  `gorm:"type:varchar(127)" json:"tipoMime"`
	Tamano           int64   `json:"tamano"`
	Tipo             string  `gorm:"type:varchar(20);not null" json:"tipo"`
	ObraID           uint    `gorm:"not null;index" json:"obraId"`
	PadreID          *uint   `gorm:"index" json:"padreId"`
	Padre            *Archivo `gorm:"foreignKey:PadreID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName returns the table mapped by this model.
func (Archivo) TableName() string {
	return "archivos"
}

// EsCarpeta reports whether the node is a folder.
func (a *Archivo) EsCarpeta() bool {
	return a.Tipo == TipoCarpeta
}

// NodoArchivo is one node of the materialized tree returned to clients.
type NodoArchivo struct {
	Archivo
	Hijos []*NodoArchivo `json:"hijos"`
}
