package repository

import (
	"context"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
)

// ObraFiltro narrows the obra listing. Zero values mean "no filter".
type ObraFiltro struct {
	Estado      string
	Categoria   string
	LocalidadID uint
}

// ObraRepository defines the persistence operations for obras.
type ObraRepository interface {
	Create(ctx context.Context, tx *gorm.DB, obra *model.Obra) error
	FindByID(ctx context.Context, id uint) (*model.Obra, error)
	FindAll(ctx context.Context, filtro ObraFiltro) ([]model.Obra, error)
	Update(ctx context.Context, obra *model.Obra) error
	UpdateAvance(ctx context.Context, id uint, avance float64) error
	UpdateEstado(ctx context.Context, id uint, estado string) error
	Delete(ctx context.Context, id uint) error
}

type obraRepository struct {
	db *gorm.DB
}

// NewObraRepository creates a new ObraRepository.
func NewObraRepository(db *gorm.DB) ObraRepository {
	return &obraRepository{db: db}
}

// Create inserts a new obra row, optionally inside a transaction.
func (r *obraRepository) Create(ctx context.Context, tx *gorm.DB, obra *model.Obra) error {
	return conn(ctx, r.db, tx).Create(obra).Error
}

// FindByID retrieves an obra with its associated entities preloaded.
func (r *obraRepository) FindByID(ctx context.Context, id uint) (*model.Obra, error) {
	var obra model.Obra
	err := r.db.WithContext(ctx).
		Preload("Localidad").
		Preload("Empresa").
		Preload("Representante").
		Preload("Inspector").
		First(&obra, id).Error
	if err != nil {
		return nil, err
	}
	return &obra, nil
}

// FindAll retrieves obras matching the filter, newest first.
func (r *obraRepository) FindAll(ctx context.Context, filtro ObraFiltro) ([]model.Obra, error) {
	q := r.db.WithContext(ctx).Preload("Localidad").Preload("Empresa")
	if filtro.Estado != "" {
		q = q.Where("estado = ?", filtro.Estado)
	}
	if filtro.Categoria != "" {
		q = q.Where("categoria = ?", filtro.Categoria)
	}
	if filtro.LocalidadID != 0 {
		q = q.Where("localidad_id = ?", filtro.LocalidadID)
	}
	var obras []model.Obra
	err := q.Order("created_at DESC").Find(&obras).Error
	return obras, err
}

// Update persists changes to an existing obra.
func (r *obraRepository) Update(ctx context.Context, obra *model.Obra) error {
	return r.db.WithContext(ctx).Save(obra).Error
}

// UpdateAvance writes only the global progress column.
func (r *obraRepository) UpdateAvance(ctx context.Context, id uint, avance float64) error {
	return r.db.WithContext(ctx).Model(&model.Obra{}).Where("id = ?", id).
		Update("avance", avance).Error
}

// UpdateEstado writes only the state column.
func (r *obraRepository) UpdateEstado(ctx context.Context, id uint, estado string) error {
	return r.db.WithContext(ctx).Model(&model.Obra{}).Where("id = ?", id).
		Update("estado", estado).Error
}

// Delete removes an obra row.
func (r *obraRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Obra{}, id).Error
}
