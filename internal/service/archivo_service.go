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

// Depth guard for the cascading delete walk. The data model forbids cycles,
// but corrupt parent pointers must not hang the request.
const maxProfundidadArbol = 64

// Almacen abstracts the physical file store behind the tree.
type Almacen interface {
	RutaFisica(nombreAlmacenado string) string
	Existe(ruta string) bool
	Eliminar(ruta string) error
}

// CargaArchivo describes one uploaded file already written to the store.
type CargaArchivo struct {
	NombreOriginal   string
	NombreAlmacenado string
	Ruta             string
	TipoMime         string
	Tamano           int64
}

// ArchivoService manages the per-obra folder/file hierarchy.
type ArchivoService interface {
	ObtenerArbol(ctx context.Context, obraID uint) ([]*model.NodoArchivo, error)
	CrearCarpeta(ctx context.Context, obraID uint, nombre string, padreID *uint) (*model.Archivo, error)
	RegistrarArchivos(ctx context.Context, obraID uint, padreID *uint, cargas []CargaArchivo) ([]*model.Archivo, error)
	Renombrar(ctx context.Context, id uint, nombre string) (*model.Archivo, error)
	Eliminar(ctx context.Context, id uint) error
}

type archivoService struct {
	archivos repository.ArchivoRepository
	obras    repository.ObraRepository
	almacen  Almacen
}

// NewArchivoService creates a new ArchivoService.
func NewArchivoService(archivos repository.ArchivoRepository, obras repository.ObraRepository, almacen Almacen) ArchivoService {
	return &archivoService{archivos: archivos, obras: obras, almacen: almacen}
}

// ObtenerArbol returns the fully materialized forest of an obra. Nodes come
// from one flat query ordered folders-first/alphabetical; a second pass
// hangs each node from its parent. Nodes whose parent id points outside the
// result set are treated as roots rather than dropped.
func (s *archivoService) ObtenerArbol(ctx context.Context, obraID uint) ([]*model.NodoArchivo, error) {
	if _, err := s.obras.FindByID(ctx, obraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoEncontrado("la obra no existe")
		}
		return nil, errInterno("no se pudo verificar la obra", err)
	}

	filas, err := s.archivos.FindByObra(ctx, obraID)
	if err != nil {
		return nil, errInterno("no se pudieron obtener los archivos", err)
	}

	nodos := make(map[uint]*model.NodoArchivo, len(filas))
	for i := range filas {
		nodos[filas[i].ID] = &model.NodoArchivo{
			Archivo: filas[i],
			Hijos:   []*model.NodoArchivo{},
		}
	}

	// Walk the ordered slice, not the map, so siblings keep query order.
	bosque := make([]*model.NodoArchivo, 0)
	for i := range filas {
		nodo := nodos[filas[i].ID]
		if nodo.PadreID != nil {
			if padre, ok := nodos[*nodo.PadreID]; ok {
				padre.Hijos = append(padre.Hijos, nodo)
				continue
			}
		}
		bosque = append(bosque, nodo)
	}
	return bosque, nil
}

// CrearCarpeta adds a folder node. Parent validity is enforced by the
// datastore's foreign key; a violation surfaces as a conflict.
func (s *archivoService) CrearCarpeta(ctx context.Context, obraID uint, nombre string, padreID *uint) (*model.Archivo, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, errValidacion("el nombre de la carpeta es obligatorio")
	}
	if _, err := s.obras.FindByID(ctx, obraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoEncontrado("la obra no existe")
		}
		return nil, errInterno("no se pudo verificar la obra", err)
	}

	carpeta := &model.Archivo{
		Nombre:  nombre,
		Tipo:    model.TipoCarpeta,
		ObraID:  obraID,
		PadreID: padreID,
	}
	if err := s.archivos.Create(ctx, carpeta); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, errConflicto("la carpeta destino no existe", err)
		}
		return nil, errInterno("no se pudo crear la carpeta", err)
	}
	return carpeta, nil
}

// RegistrarArchivos persists one node per uploaded file. The physical bytes
// were already written by the handler; if persistence fails, every file of
// this attempt is swept from disk so no orphaned bytes remain.
func (s *archivoService) RegistrarArchivos(ctx context.Context, obraID uint, padreID *uint, cargas []CargaArchivo) ([]*model.Archivo, error) {
	if len(cargas) == 0 {
		return nil, errValidacion("no se recibió ningún archivo")
	}
	if _, err := s.obras.FindByID(ctx, obraID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.limpiarCargas(cargas)
			return nil, errNoEncontrado("la obra no existe")
		}
		return nil, errInterno("no se pudo verificar la obra", err)
	}

	archivos := make([]*model.Archivo, 0, len(cargas))
	for _, carga := range cargas {
		archivos = append(archivos, &model.Archivo{
			Nombre:           carga.NombreOriginal,
			NombreAlmacenado: carga.NombreAlmacenado,
			Ruta:             carga.Ruta,
			TipoMime:         carga.TipoMime,
			Tamano:           carga.Tamano,
			Tipo:             model.TipoArchivo,
			ObraID:           obraID,
			PadreID:          padreID,
		})
	}

	if err := s.archivos.CreateBatch(ctx, archivos); err != nil {
		s.limpiarCargas(cargas)
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, errConflicto("la carpeta destino no existe", err)
		}
		return nil, errInterno("no se pudieron registrar los archivos", err)
	}
	return archivos, nil
}

// limpiarCargas removes the physical files of a failed upload attempt.
// Best effort: cleanup failures are logged, never escalated.
func (s *archivoService) limpiarCargas(cargas []CargaArchivo) {
	for _, carga := range cargas {
		ruta := s.almacen.RutaFisica(carga.NombreAlmacenado)
		if err := s.almacen.Eliminar(ruta); err != nil {
			log.Warnf("no se pudo limpiar el archivo %s tras el fallo: %v", ruta, err)
		}
	}
}

// Renombrar changes only the display name. Kind, stored name and path are
// immutable after creation.
func (s *archivoService) Renombrar(ctx context.Context, id uint, nombre string) (*model.Archivo, error) {
	nombre = strings.TrimSpace(nombre)
	if nombre == "" {
		return nil, errValidacion("el nombre es obligatorio")
	}
	archivo, err := s.archivos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errNoEncontrado("el archivo no existe")
		}
		return nil, errInterno("no se pudo obtener el archivo", err)
	}
	if err := s.archivos.UpdateNombre(ctx, id, nombre); err != nil {
		return nil, errInterno("no se pudo renombrar el archivo", err)
	}
	archivo.Nombre = nombre
	return archivo, nil
}

// Eliminar removes a node and its whole subtree. The walk is an iterative
// breadth-first traversal over a parent-id work queue with a visited set
// and a depth bound, collecting the physical path of every file node. One
// datastore delete removes the rows (the FK cascades); afterwards the
// collected paths are swept from disk. The sweep is idempotent and never
// fails the operation: the database delete already committed.
func (s *archivoService) Eliminar(ctx context.Context, id uint) error {
	raiz, err := s.archivos.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errNoEncontrado("el archivo no existe")
		}
		return errInterno("no se pudo obtener el archivo", err)
	}

	rutas := make([]string, 0)
	if !raiz.EsCarpeta() && raiz.NombreAlmacenado != "" {
		rutas = append(rutas, s.almacen.RutaFisica(raiz.NombreAlmacenado))
	}

	visitados := map[uint]bool{raiz.ID: true}
	nivel := []uint{raiz.ID}
	for profundidad := 0; len(nivel) > 0 && profundidad < maxProfundidadArbol; profundidad++ {
		hijos, err := s.archivos.FindChildren(ctx, nivel)
		if err != nil {
			return errInterno("no se pudo recorrer el árbol de archivos", err)
		}
		siguiente := make([]uint, 0, len(hijos))
		for i := range hijos {
			if visitados[hijos[i].ID] {
				// Corrupt parent pointer forming a cycle; skip it.
				continue
			}
			visitados[hijos[i].ID] = true
			siguiente = append(siguiente, hijos[i].ID)
			if !hijos[i].EsCarpeta() && hijos[i].NombreAlmacenado != "" {
				rutas = append(rutas, s.almacen.RutaFisica(hijos[i].NombreAlmacenado))
			}
		}
		nivel = siguiente
	}

	if err := s.archivos.Delete(ctx, raiz.ID); err != nil {
		return errInterno("no se pudo eliminar el archivo", err)
	}

	for _, ruta := range rutas {
		if !s.almacen.Existe(ruta) {
			continue
		}
		if err := s.almacen.Eliminar(ruta); err != nil {
			log.Warnf("no se pudo eliminar el archivo físico %s: %v", ruta, err)
		}
	}
	return nil
}
