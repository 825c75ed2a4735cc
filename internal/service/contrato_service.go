package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
	"sgo-sapem/internal/repository"
)

// DatosContrato carries the fields of a new contract tranche together with
// its single uploaded document, already written to the store.
type DatosContrato struct {
	Numero           int
	Monto            float64
	Avance           float64
	NombreOriginal   string
	NombreAlmacenado string
	Ruta             string
}

// ContratoService manages contract tranches. Every mutation delegates the
// progress update to ObraService.RecalcularAvance, the single path that
// touches the obra's global progress.
type ContratoService interface {
	ListarPorObra(ctx context.Context, obraID uint) ([]model.Contrato, error)
	Crear(ctx context.Context, obraID uint, datos DatosContrato) (*model.Contrato, error)
	ActualizarAvance(ctx context.Context, id uint, avance float64) (*model.Contrato, error)
}

type contratoService struct {
	contratos repository.ContratoRepository
	obras     ObraService
}

// NewContratoService creates a new ContratoService.
func NewContratoService(contratos repository.ContratoRepository, obras ObraService) ContratoService {
	return &contratoService{contratos: contratos, obras: obras}
}

// ListarPorObra returns the contracts of an obra.
func (s *contratoService) ListarPorObra(ctx context.Context, obraID uint) ([]model.Contrato, error) {
	if _, err := s.obras.Obtener(ctx, obraID); err != nil {
		return nil, err
	}
	contratos, err := s.contratos.FindByObra(ctx, obraID)
	if err != nil {
		return nil, errInterno("no se pudieron listar los contratos", err)
	}
	return contratos, nil
}

// Crear registers a contract tranche and recomputes the obra progress.
func (s *contratoService) Crear(ctx context.Context, obraID uint, datos DatosContrato) (*model.Contrato, error) {
	if datos.Numero <= 0 {
		return nil, errValidacion("el número de contrato debe ser positivo")
	}
	if datos.Avance < 0 || datos.Avance > 100 {
		return nil, errValidacion("el avance debe estar entre 0 y 100")
	}
	if _, err := s.obras.Obtener(ctx, obraID); err != nil {
		return nil, err
	}

	contrato := &model.Contrato{
		ObraID:           obraID,
		Numero:           datos.Numero,
		Monto:            datos.Monto,
		Avance:           datos.Avance,
		Nombre:           datos.NombreOriginal,
		NombreAlmacenado: datos.NombreAlmacenado,
		Ruta:             datos.Ruta,
	}
	if err := s.contratos.Create(ctx, contrato); err != nil {
		return nil, errInterno("no se pudo crear el contrato", err)
	}

	if _, err := s.obras.RecalcularAvance(ctx, obraID); err != nil {
		return nil, err
	}
	return contrato, nil
}

// ActualizarAvance updates the certified progress of one contract and
// recomputes the obra progress.
func (s *contratoService) ActualizarAvance(ctx context.Context, id uint, avance float64) (*model.Contrato, error) {
	if avance < 0 || avance > 100 {
		return nil, errValidacion("el avance debe estar entre 0 y 100")
	}
	contrato, err := s.contratos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoEncontrado("el contrato no existe")
		}
		return nil, errInterno("no se pudo obtener el contrato", err)
	}

	contrato.Avance = avance
	if err := s.contratos.Update(ctx, contrato); err != nil {
		return nil, errInterno("no se pudo actualizar el contrato", err)
	}

	if _, err := s.obras.RecalcularAvance(ctx, contrato.ObraID); err != nil {
		return nil, err
	}
	return contrato, nil
}
