package repository

import (
	"context"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
)

// ArchivoRepository defines the persistence operations for file-tree nodes.
type ArchivoRepository interface {
	Create(ctx context.Context, archivo *model.Archivo) error
	CreateBatch(ctx context.Context, archivos []*model.Archivo) error
	FindByID(ctx context.Context, id uint) (*model.Archivo, error)
	// FindByObra returns every node of an obra, folders before files and
	// alphabetical within each kind.
	FindByObra(ctx context.Context, obraID uint) ([]model.Archivo, error)
	// FindChildren returns the direct children of the given parent ids.
	FindChildren(ctx context.Context, padreIDs []uint) ([]model.Archivo, error)
	UpdateNombre(ctx context.Context, id uint, nombre string) error
	// Delete removes a single row; the self-referential FK cascades the
	// removal to every descendant.
	Delete(ctx context.Context, id uint) error
}

type archivoRepository struct {
	db *gorm.DB
}

// NewArchivoRepository creates a new ArchivoRepository.
func NewArchivoRepository(db *gorm.DB) ArchivoRepository {
	return &archivoRepository{db: db}
}

// Create inserts a single node.
func (r *archivoRepository) Create(ctx context.Context, archivo *model.Archivo) error {
	return r.db.WithContext(ctx).Create(archivo).Error
}

// CreateBatch inserts every node in one statement.
func (r *archivoRepository) CreateBatch(ctx context.Context, archivos []*model.Archivo) error {
	return r.db.WithContext(ctx).Create(archivos).Error
}

// FindByID retrieves a node by primary key.
func (r *archivoRepository) FindByID(ctx context.Context, id uint) (*model.Archivo, error) {
	var archivo model.Archivo
	if err := r.db.WithContext(ctx).First(&archivo, id).Error; err != nil {
		return nil, err
	}
	return &archivo, nil
}

// FindByObra retrieves the flat node set of an obra in display order.
func (r *archivoRepository) FindByObra(ctx context.Context, obraID uint) ([]model.Archivo, error) {
	var archivos []model.Archivo
	err := r.db.WithContext(ctx).
		Where("obra_id = ?", obraID).
		Order("tipo = 'carpeta' DESC").
		Order("nombre ASC").
		Find(&archivos).Error
	return archivos, err
}

// FindChildren retrieves the direct children of a set of parent ids.
func (r *archivoRepository) FindChildren(ctx context.Context, padreIDs []uint) ([]model.Archivo, error) {
	if len(padreIDs) == 0 {
		return nil, nil
	}
	var archivos []model.Archivo
	err := r.db.WithContext(ctx).Where("padre_id IN ?", padreIDs).Find(&archivos).Error
	return archivos, err
}

// UpdateNombre changes only the display name of a node.
func (r *archivoRepository) UpdateNombre(ctx context.Context, id uint, nombre string) error {
	return r.db.WithContext(ctx).Model(&model.Archivo{}).Where("id = ?", id).
		Update("nombre", nombre).Error
}

// Delete removes a node row; descendants fall with it via the FK cascade.
func (r *archivoRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Archivo{}, id).Error
}
