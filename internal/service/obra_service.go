package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
	"sgo-sapem/internal/repository"
	"sgo-sapem/pkg/log"
)

// DatosObra carries the mutable fields of an obra for create and update.
type DatosObra struct {
	Nombre          string
	Expediente      string
	Detalle         *string
	Categoria       string
	Monto           float64
	Plazo           *int
	LocalidadID     *uint
	EmpresaID       *uint
	RepresentanteID *uint
	InspectorID     *uint
}

// ObraService manages project records and owns the single authoritative
// progress-recalculation path.
type ObraService interface {
	Listar(ctx context.Context, filtro repository.ObraFiltro) ([]model.Obra, error)
	Obtener(ctx context.Context, id uint) (*model.Obra, error)
	Crear(ctx context.Context, datos DatosObra) (*model.Obra, error)
	Actualizar(ctx context.Context, id uint, datos DatosObra) (*model.Obra, error)
	CambiarEstado(ctx context.Context, id uint, estado string) error
	Eliminar(ctx context.Context, id uint) error
	// RecalcularAvance recomputes the global progress of an obra from its
	// contracts. Every contract mutation funnels through here.
	RecalcularAvance(ctx context.Context, obraID uint) (float64, error)

	// Master listings backing the project forms.
	ListarLocalidades(ctx context.Context) ([]model.Localidad, error)
	ListarEmpresas(ctx context.Context) ([]model.Empresa, error)
	ListarRepresentantes(ctx context.Context) ([]model.RepresentanteLegal, error)
}

type obraService struct {
	obras     repository.ObraRepository
	contratos repository.ContratoRepository
	entidades repository.EntidadRepository
	archivos  ArchivoService
}

// NewObraService creates a new ObraService.
func NewObraService(obras repository.ObraRepository, contratos repository.ContratoRepository, entidades repository.EntidadRepository, archivos ArchivoService) ObraService {
	return &obraService{obras: obras, contratos: contratos, entidades: entidades, archivos: archivos}
}

// Listar returns obras matching the filter.
func (s *obraService) Listar(ctx context.Context, filtro repository.ObraFiltro) ([]model.Obra, error) {
	obras, err := s.obras.FindAll(ctx, filtro)
	if err != nil {
		return nil, errInterno("no se pudieron listar las obras", err)
	}
	return obras, nil
}

// Obtener returns one obra with its associations.
func (s *obraService) Obtener(ctx context.Context, id uint) (*model.Obra, error) {
	obra, err := s.obras.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoEncontrado("la obra no existe")
		}
		return nil, errInterno("no se pudo obtener la obra", err)
	}
	return obra, nil
}

// Crear registers a new obra in "En ejecución" state.
func (s *obraService) Crear(ctx context.Context, datos DatosObra) (*model.Obra, error) {
	if strings.TrimSpace(datos.Nombre) == "" {
		return nil, errValidacion("el nombre de la obra es obligatorio")
	}
	obra := &model.Obra{
		Nombre:            strings.TrimSpace(datos.Nombre),
		Expediente:        datos.Expediente,
		Detalle:           datos.Detalle,
		Categoria:         datos.Categoria,
		Estado:            model.EstadoEnEjecucion,
		Monto:             datos.Monto,
		Plazo:             datos.Plazo,
		CantidadContratos: 1,
		LocalidadID:       datos.LocalidadID,
		EmpresaID:         datos.EmpresaID,
		RepresentanteID:   datos.RepresentanteID,
		InspectorID:       datos.InspectorID,
	}
	if datos.Plazo != nil && *datos.Plazo > 0 {
		obra.CantidadContratos = (*datos.Plazo + diasPorContrato - 1) / diasPorContrato
	}
	if err := s.obras.Create(ctx, nil, obra); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, errConflicto("alguna de las entidades referenciadas no existe", err)
		}
		return nil, errInterno("no se pudo crear la obra", err)
	}
	return obra, nil
}

// Actualizar overwrites the mutable fields of an existing obra.
func (s *obraService) Actualizar(ctx context.Context, id uint, datos DatosObra) (*model.Obra, error) {
	if strings.TrimSpace(datos.Nombre) == "" {
		return nil, errValidacion("el nombre de la obra es obligatorio")
	}
	obra, err := s.obras.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoEncontrado("la obra no existe")
		}
		return nil, errInterno("no se pudo obtener la obra", err)
	}

	obra.Nombre = strings.TrimSpace(datos.Nombre)
	obra.Expediente = datos.Expediente
	obra.Detalle = datos.Detalle
	obra.Categoria = datos.Categoria
	obra.Monto = datos.Monto
	obra.Plazo = datos.Plazo
	obra.LocalidadID = datos.LocalidadID
	obra.EmpresaID = datos.EmpresaID
	obra.RepresentanteID = datos.RepresentanteID
	obra.InspectorID = datos.InspectorID
	if datos.Plazo != nil && *datos.Plazo > 0 {
		obra.CantidadContratos = (*datos.Plazo + diasPorContrato - 1) / diasPorContrato
	}

	if err := s.obras.Update(ctx, obra); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, errConflicto("alguna de las entidades referenciadas no existe", err)
		}
		return nil, errInterno("no se pudo actualizar la obra", err)
	}
	return obra, nil
}

// CambiarEstado moves the obra to a new state.
func (s *obraService) CambiarEstado(ctx context.Context, id uint, estado string) error {
	switch estado {
	case model.EstadoEnLicitacion, model.EstadoEnEjecucion, model.EstadoFinalizada, model.EstadoAnulada:
	default:
		return errValidacion("estado desconocido: " + estado)
	}
	if _, err := s.obras.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNoEncontrado("la obra no existe")
		}
		return errInterno("no se pudo obtener la obra", err)
	}
	if err := s.obras.UpdateEstado(ctx, id, estado); err != nil {
		return errInterno("no se pudo cambiar el estado", err)
	}
	return nil
}

// Eliminar removes an obra after sweeping its file tree, so no physical
// bytes are left behind by the row cascade.
func (s *obraService) Eliminar(ctx context.Context, id uint) error {
	if _, err := s.obras.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNoEncontrado("la obra no existe")
		}
		return errInterno("no se pudo obtener la obra", err)
	}

	arbol, err := s.archivos.ObtenerArbol(ctx, id)
	if err != nil {
		return err
	}
	for _, raiz := range arbol {
		if err := s.archivos.Eliminar(ctx, raiz.ID); err != nil {
			log.Warnf("no se pudo eliminar el nodo %d de la obra %d: %v", raiz.ID, id, err)
		}
	}

	if err := s.obras.Delete(ctx, id); err != nil {
		return errInterno("no se pudo eliminar la obra", err)
	}
	return nil
}

// RecalcularAvance derives the global progress as the sum of certified
// contract progress divided by the planned tranche count, clamped to 100.
func (s *obraService) RecalcularAvance(ctx context.Context, obraID uint) (float64, error) {
	obra, err := s.obras.FindByID(ctx, obraID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errNoEncontrado("la obra no existe")
		}
		return 0, errInterno("no se pudo obtener la obra", err)
	}

	total, err := s.contratos.SumAvance(ctx, obraID)
	if err != nil {
		return 0, errInterno("no se pudo calcular el avance", err)
	}

	cantidad := obra.CantidadContratos
	if cantidad < 1 {
		cantidad = 1
	}
	avance := total / float64(cantidad)
	if avance > 100 {
		avance = 100
	}
	if err := s.obras.UpdateAvance(ctx, obraID, avance); err != nil {
		return 0, errInterno("no se pudo actualizar el avance", err)
	}
	return avance, nil
}

// ListarLocalidades returns every locality.
func (s *obraService) ListarLocalidades(ctx context.Context) ([]model.Localidad, error) {
	localidades, err := s.entidades.ListLocalidades(ctx)
	if err != nil {
		return nil, errInterno("no se pudieron listar las localidades", err)
	}
	return localidades, nil
}

// ListarEmpresas returns every contractor.
func (s *obraService) ListarEmpresas(ctx context.Context) ([]model.Empresa, error) {
	empresas, err := s.entidades.ListEmpresas(ctx)
	if err != nil {
		return nil, errInterno("no se pudieron listar las empresas", err)
	}
	return empresas, nil
}

// ListarRepresentantes returns every legal representative.
func (s *obraService) ListarRepresentantes(ctx context.Context) ([]model.RepresentanteLegal, error) {
	representantes, err := s.entidades.ListRepresentantes(ctx)
	if err != nil {
		return nil, errInterno("no se pudieron listar los representantes", err)
	}
	return representantes, nil
}
