package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
)

// EntidadRepository resolves the master entities referenced by an obra
// (locality, contractor, legal representative) with find-or-create
// semantics keyed by trimmed unique name. The bulk import calls these
// inside its batch transaction, so two rows naming the same new entity
// resolve to the same id.
type EntidadRepository interface {
	FindOrCreateLocalidad(ctx context.Context, tx *gorm.DB, nombre string) (*model.Localidad, error)
	FindOrCreateEmpresa(ctx context.Context, tx *gorm.DB, nombre string) (*model.Empresa, error)
	FindOrCreateRepresentante(ctx context.Context, tx *gorm.DB, nombre string) (*model.RepresentanteLegal, error)
	ListLocalidades(ctx context.Context) ([]model.Localidad, error)
	ListEmpresas(ctx context.Context) ([]model.Empresa, error)
	ListRepresentantes(ctx context.Context) ([]model.RepresentanteLegal, error)
}

type entidadRepository struct {
	db *gorm.DB
}

// NewEntidadRepository creates a new EntidadRepository.
func NewEntidadRepository(db *gorm.DB) EntidadRepository {
	return &entidadRepository{db: db}
}

// FindOrCreateLocalidad resolves a locality by trimmed name, creating it
// when absent.
func (r *entidadRepository) FindOrCreateLocalidad(ctx context.Context, tx *gorm.DB, nombre string) (*model.Localidad, error) {
	nombre = strings.TrimSpace(nombre)
	var localidad model.Localidad
	err := conn(ctx, r.db, tx).
		Where(model.Localidad{Nombre: nombre}).
		FirstOrCreate(&localidad).Error
	if err != nil {
		return nil, err
	}
	return &localidad, nil
}

// FindOrCreateEmpresa resolves a contractor by trimmed name, creating it
// when absent.
func (r *entidadRepository) FindOrCreateEmpresa(ctx context.Context, tx *gorm.DB, nombre string) (*model.Empresa, error) {
	nombre = strings.TrimSpace(nombre)
	var empresa model.Empresa
	err := conn(ctx, r.db, tx).
		Where(model.Empresa{Nombre: nombre}).
		FirstOrCreate(&empresa).Error
	if err != nil {
		return nil, err
	}
	return &empresa, nil
}

// FindOrCreateRepresentante resolves a legal representative by trimmed
// name, creating it when absent.
func (r *entidadRepository) FindOrCreateRepresentante(ctx context.Context, tx *gorm.DB, nombre string) (*model.RepresentanteLegal, error) {
	nombre = strings.TrimSpace(nombre)
	var representante model.RepresentanteLegal
	err := conn(ctx, r.db, tx).
		Where(model.RepresentanteLegal{Nombre: nombre}).
		FirstOrCreate(&representante).Error
	if err != nil {
		return nil, err
	}
	return &representante, nil
}

// ListLocalidades retrieves every locality alphabetically.
func (r *entidadRepository) ListLocalidades(ctx context.Context) ([]model.Localidad, error) {
	var localidades []model.Localidad
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&localidades).Error
	return localidades, err
}

// ListEmpresas retrieves every contractor alphabetically.
func (r *entidadRepository) ListEmpresas(ctx context.Context) ([]model.Empresa, error) {
	var empresas []model.Empresa
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&empresas).Error
	return empresas, err
}

// ListRepresentantes retrieves every legal representative alphabetically.
func (r *entidadRepository) ListRepresentantes(ctx context.Context) ([]model.RepresentanteLegal, error) {
	var representantes []model.RepresentanteLegal
	err := r.db.WithContext(ctx).Order("nombre ASC").Find(&representantes).Error
	return representantes, err
}
