package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sgo-sapem/internal/model"
)

func nuevoObraService(t *testing.T) (ObraService, *fakeObraRepo, *fakeContratoRepo, *fakeArchivoRepo, *fakeAlmacen) {
	t.Helper()
	obras := newFakeObraRepo()
	contratos := newFakeContratoRepo()
	entidades := newFakeEntidadRepo()
	archivos := newFakeArchivoRepo()
	almacen := newFakeAlmacen()
	archivoSvc := NewArchivoService(archivos, obras, almacen)
	return NewObraService(obras, contratos, entidades, archivoSvc), obras, contratos, archivos, almacen
}

func ptrInt(v int) *int { return &v }

func TestCrearObraCalculaContratos(t *testing.T) {
	svc, _, _, _, _ := nuevoObraService(t)

	obra, err := svc.Crear(context.Background(), DatosObra{Nombre: "Acueducto norte", Plazo: ptrInt(90)})
	require.NoError(t, err)
	assert.Equal(t, 3, obra.CantidadContratos)
	assert.Equal(t, model.EstadoEnEjecucion, obra.Estado)

	sinPlazo, err := svc.Crear(context.Background(), DatosObra{Nombre: "Bacheo"})
	require.NoError(t, err)
	assert.Equal(t, 1, sinPlazo.CantidadContratos)
}

func TestCrearObraSinNombre(t *testing.T) {
	svc, _, _, _, _ := nuevoObraService(t)

	_, err := svc.Crear(context.Background(), DatosObra{Nombre: "  "})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestCambiarEstadoDesconocido(t *testing.T) {
	svc, obras, _, _, _ := nuevoObraService(t)
	obra := obras.agregar(&model.Obra{Nombre: "Desagües"})

	err := svc.CambiarEstado(context.Background(), obra.ID, "Pausada")
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)

	require.NoError(t, svc.CambiarEstado(context.Background(), obra.ID, model.EstadoFinalizada))
	assert.Equal(t, model.EstadoFinalizada, obras.estados[obra.ID])
}

func TestRecalcularAvance(t *testing.T) {
	svc, obras, contratos, _, _ := nuevoObraService(t)
	obra := obras.agregar(&model.Obra{Nombre: "Gasoducto", CantidadContratos: 4})
	contratos.suma[obra.ID] = 120

	avance, err := svc.RecalcularAvance(context.Background(), obra.ID)
	require.NoError(t, err)
	assert.InDelta(t, 30, avance, 1e-9)
	assert.InDelta(t, 30, obras.avances[obra.ID], 1e-9)
}

func TestRecalcularAvanceTope(t *testing.T) {
	svc, obras, contratos, _, _ := nuevoObraService(t)
	obra := obras.agregar(&model.Obra{Nombre: "Vereda", CantidadContratos: 1})
	contratos.suma[obra.ID] = 150

	avance, err := svc.RecalcularAvance(context.Background(), obra.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(100), avance)
}

func TestRecalcularAvanceSinContratosPlanificados(t *testing.T) {
	svc, obras, contratos, _, _ := nuevoObraService(t)
	obra := obras.agregar(&model.Obra{Nombre: "Señalización", CantidadContratos: 0})
	contratos.suma[obra.ID] = 40

	avance, err := svc.RecalcularAvance(context.Background(), obra.ID)
	require.NoError(t, err)
	assert.InDelta(t, 40, avance, 1e-9)
}

func TestEliminarObraBarreArchivos(t *testing.T) {
	svc, obras, _, archivos, almacen := nuevoObraService(t)
	obra := obras.agregar(&model.Obra{Nombre: "Terminal"})
	archivos.agregar(&model.Archivo{Nombre: "contrato.pdf", NombreAlmacenado: "uuid-c.pdf", Tipo: model.TipoArchivo, ObraID: obra.ID})
	almacen.existentes[almacen.RutaFisica("uuid-c.pdf")] = true

	require.NoError(t, svc.Eliminar(context.Background(), obra.ID))
	assert.Equal(t, []uint{obra.ID}, obras.borradas)
	assert.Equal(t, []string{almacen.RutaFisica("uuid-c.pdf")}, almacen.eliminados)
}

func TestContratoActualizaAvanceDeObra(t *testing.T) {
	obraSvc, obras, contratos, _, _ := nuevoObraService(t)
	obra := obras.agregar(&model.Obra{Nombre: "Colector", CantidadContratos: 2})
	svc := NewContratoService(contratos, obraSvc)

	contratos.suma[obra.ID] = 80
	contrato, err := svc.Crear(context.Background(), obra.ID, DatosContrato{Numero: 1, Avance: 80, NombreOriginal: "c1.pdf"})
	require.NoError(t, err)
	assert.InDelta(t, 40, obras.avances[obra.ID], 1e-9)

	contratos.suma[obra.ID] = 100
	_, err = svc.ActualizarAvance(context.Background(), contrato.ID, 100)
	require.NoError(t, err)
	assert.InDelta(t, 50, obras.avances[obra.ID], 1e-9)
}

func TestContratoAvanceFueraDeRango(t *testing.T) {
	obraSvc, obras, contratos, _, _ := nuevoObraService(t)
	obra := obras.agregar(&model.Obra{Nombre: "Colector"})
	svc := NewContratoService(contratos, obraSvc)

	_, err := svc.Crear(context.Background(), obra.ID, DatosContrato{Numero: 1, Avance: 120})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}
