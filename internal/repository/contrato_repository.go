package repository

import (
	"context"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
)

// ContratoRepository defines the persistence operations for contracts.
type ContratoRepository interface {
	Create(ctx context.Context, contrato *model.Contrato) error
	FindByID(ctx context.Context, id uint) (*model.Contrato, error)
	FindByObra(ctx context.Context, obraID uint) ([]model.Contrato, error)
	Update(ctx context.Context, contrato *model.Contrato) error
	// SumAvance adds up the certified progress of every contract of an obra.
	SumAvance(ctx context.Context, obraID uint) (float64, error)
	Delete(ctx context.Context, id uint) error
}

type contratoRepository struct {
	db *gorm.DB
}

// NewContratoRepository creates a new ContratoRepository.
func NewContratoRepository(db *gorm.DB) ContratoRepository {
	return &contratoRepository{db: db}
}

// Create inserts a new contract row.
func (r *contratoRepository) Create(ctx context.Context, contrato *model.Contrato) error {
	return r.db.WithContext(ctx).Create(contrato).Error
}

// FindByID retrieves a contract by primary key.
func (r *contratoRepository) FindByID(ctx context.Context, id uint) (*model.Contrato, error) {
	var contrato model.Contrato
	if err := r.db.WithContext(ctx).First(&contrato, id).Error; err != nil {
		return nil, err
	}
	return &contrato, nil
}

// FindByObra retrieves the contracts of an obra ordered by tranche number.
func (r *contratoRepository) FindByObra(ctx context.Context, obraID uint) ([]model.Contrato, error) {
	var contratos []model.Contrato
	err := r.db.WithContext(ctx).Where("obra_id = ?", obraID).
		Order("numero ASC").Find(&contratos).Error
	return contratos, err
}

// Update persists changes to an existing contract.
func (r *contratoRepository) Update(ctx context.Context, contrato *model.Contrato) error {
	return r.db.WithContext(ctx).Save(contrato).Error
}

// SumAvance adds up the certified progress of every contract of an obra.
func (r *contratoRepository) SumAvance(ctx context.Context, obraID uint) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&model.Contrato{}).
		Where("obra_id = ?", obraID).
		Select("COALESCE(SUM(avance), 0)").
		Scan(&total).Error
	return total, err
}

// Delete removes a contract row.
func (r *contratoRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Contrato{}, id).Error
}
