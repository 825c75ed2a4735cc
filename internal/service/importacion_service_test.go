package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sgo-sapem/internal/model"
)

type fixtureImportacion struct {
	svc       ImportacionService
	tx        *fakeTxManager
	obras     *fakeObraRepo
	usuarios  *fakeUserRepo
	entidades *fakeEntidadRepo
}

func nuevaImportacion(t *testing.T) *fixtureImportacion {
	t.Helper()
	f := &fixtureImportacion{
		tx:        &fakeTxManager{},
		obras:     newFakeObraRepo(),
		usuarios:  newFakeUserRepo(),
		entidades: newFakeEntidadRepo(),
	}
	f.svc = NewImportacionService(f.tx, f.obras, f.usuarios, f.entidades)
	return f
}

var mapeoBasico = map[string]string{
	"nombre":     "Obra",
	"expediente": "Expte",
}

func TestImportarObrasCampoDesconocido(t *testing.T) {
	f := nuevaImportacion(t)
	hoja := &fakeHoja{encabezados: []string{"Obra"}, filas: [][]string{{"Cordón cuneta"}}}

	_, err := f.svc.ImportarObras(context.Background(), hoja, map[string]string{"superficie": "Sup"}, nil, "Vial")
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	assert.Zero(t, f.tx.llamadas)
}

func TestImportarObrasPlanillaSinDatos(t *testing.T) {
	f := nuevaImportacion(t)
	hoja := &fakeHoja{encabezados: []string{"Obra"}}

	_, err := f.svc.ImportarObras(context.Background(), hoja, mapeoBasico, nil, "Vial")
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
}

func TestImportarObrasLoteCompleto(t *testing.T) {
	f := nuevaImportacion(t)
	hoja := &fakeHoja{
		encabezados: []string{"Obra", "Expte"},
		filas: [][]string{
			{"Cordón cuneta B° Norte", "EXP-001"},
			{"", ""}, // blank rows are skipped, not errors
			{"Red de agua potable", "EXP-002"},
		},
	}

	resultado, err := f.svc.ImportarObras(context.Background(), hoja, mapeoBasico, nil, "Vial")
	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Importadas)
	assert.Empty(t, resultado.Errores)
	require.Len(t, f.obras.creadas, 2)
	assert.Equal(t, "Cordón cuneta B° Norte", f.obras.creadas[0].Nombre)
	assert.Equal(t, "Vial", f.obras.creadas[0].Categoria)
	assert.Equal(t, model.EstadoEnEjecucion, f.obras.creadas[0].Estado)
	assert.Zero(t, f.tx.rollbacks)
}

func TestImportarObrasTodoONada(t *testing.T) {
	f := nuevaImportacion(t)
	hoja := &fakeHoja{
		encabezados: []string{"Obra", "Expte"},
		filas: [][]string{
			{"Obra válida", "EXP-001"},
			{"", "EXP-002"}, // missing name
			{"Otra obra válida", "EXP-003"},
		},
	}

	resultado, err := f.svc.ImportarObras(context.Background(), hoja, mapeoBasico, nil, "Vial")
	require.NoError(t, err)
	assert.Equal(t, 0, resultado.Importadas)
	assert.Nil(t, resultado.CuentasNuevas)
	require.Len(t, resultado.Errores, 1)
	assert.Contains(t, resultado.Errores[0], "Error en fila 3")
	assert.Equal(t, 1, f.tx.rollbacks)
}

func TestImportarObrasEstadoPorColor(t *testing.T) {
	f := nuevaImportacion(t)
	hoja := &fakeHoja{
		encabezados: []string{"Obra"},
		filas: [][]string{
			{"Obra anulada"},
			{"Obra sin color"},
		},
		colores: map[[2]int]string{
			{0, 0}: "#FF0000",
		},
	}
	colores := map[string]string{"#FF0000": model.EstadoAnulada}

	resultado, err := f.svc.ImportarObras(context.Background(), hoja, mapeoBasico, colores, "Vial")
	require.NoError(t, err)
	assert.Equal(t, 2, resultado.Importadas)
	assert.Equal(t, model.EstadoAnulada, f.obras.creadas[0].Estado)
	assert.Equal(t, model.EstadoEnEjecucion, f.obras.creadas[1].Estado)
}

func TestImportarObrasPlazoGanaALaFechaMapeada(t *testing.T) {
	f := nuevaImportacion(t)
	mapeo := map[string]string{
		"nombre":                      "Obra",
		"plazo":                       "Plazo",
		"fecha_inicio":                "Inicio",
		"fecha_finalizacion_estimada": "Fin",
	}
	hoja := &fakeHoja{
		encabezados: []string{"Obra", "Plazo", "Inicio", "Fin"},
		filas: [][]string{
			{"Obra con plazo", "10", "2024-01-01", "2025-12-31"},
		},
	}

	resultado, err := f.svc.ImportarObras(context.Background(), hoja, mapeo, nil, "Vial")
	require.NoError(t, err)
	assert.Equal(t, 1, resultado.Importadas)

	obra := f.obras.creadas[0]
	require.NotNil(t, obra.FechaInicio)
	require.NotNil(t, obra.FechaFinEstimada)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), *obra.FechaInicio)
	assert.Equal(t, time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), *obra.FechaFinEstimada)
	assert.Equal(t, 1, obra.CantidadContratos)
}

func TestImportarObrasCantidadContratos(t *testing.T) {
	f := nuevaImportacion(t)
	mapeo := map[string]string{"nombre": "Obra", "plazo": "Plazo"}
	hoja := &fakeHoja{
		encabezados: []string{"Obra", "Plazo"},
		filas: [][]string{
			{"Treinta días", "30"},
			{"Sesenta y uno", "61"},
			{"Sin plazo", ""},
		},
	}

	_, err := f.svc.ImportarObras(context.Background(), hoja, mapeo, nil, "Vial")
	require.NoError(t, err)
	assert.Equal(t, 1, f.obras.creadas[0].CantidadContratos)
	assert.Equal(t, 3, f.obras.creadas[1].CantidadContratos)
	assert.Equal(t, 1, f.obras.creadas[2].CantidadContratos)
}

func TestImportarObrasPlazoInvalido(t *testing.T) {
	f := nuevaImportacion(t)
	mapeo := map[string]string{"nombre": "Obra", "plazo": "Plazo"}
	hoja := &fakeHoja{
		encabezados: []string{"Obra", "Plazo"},
		filas:       [][]string{{"Obra", "seis meses"}},
	}

	resultado, err := f.svc.ImportarObras(context.Background(), hoja, mapeo, nil, "Vial")
	require.NoError(t, err)
	assert.Equal(t, 0, resultado.Importadas)
	require.Len(t, resultado.Errores, 1)
	assert.Contains(t, resultado.Errores[0], "plazo inválido")
}

func TestImportarObrasLocalidadCompartida(t *testing.T) {
	f := nuevaImportacion(t)
	mapeo := map[string]string{"nombre": "Obra", "localidad": "Localidad"}
	hoja := &fakeHoja{
		encabezados: []string{"Obra", "Localidad"},
		filas: [][]string{
			{"Obra uno", "Villa Mercedes"},
			{"Obra dos", "Villa Mercedes"},
		},
	}

	_, err := f.svc.ImportarObras(context.Background(), hoja, mapeo, nil, "Vial")
	require.NoError(t, err)
	assert.Equal(t, 1, f.entidades.creacionesTotal)
	require.NotNil(t, f.obras.creadas[0].LocalidadID)
	require.NotNil(t, f.obras.creadas[1].LocalidadID)
	assert.Equal(t, *f.obras.creadas[0].LocalidadID, *f.obras.creadas[1].LocalidadID)
}

func TestImportarObrasCreaCuentaDeInspector(t *testing.T) {
	f := nuevaImportacion(t)
	mapeo := map[string]string{"nombre": "Obra", "inspector": "Inspector"}
	hoja := &fakeHoja{
		encabezados: []string{"Obra", "Inspector"},
		filas:       [][]string{{"Obra inspeccionada", "María Gómez"}},
	}

	resultado, err := f.svc.ImportarObras(context.Background(), hoja, mapeo, nil, "Vial")
	require.NoError(t, err)
	require.Len(t, resultado.CuentasNuevas, 1)

	cuenta := resultado.CuentasNuevas[0]
	assert.Equal(t, "María Gómez", cuenta.Nombre)
	assert.NotEmpty(t, cuenta.Username)
	assert.NotEmpty(t, cuenta.Password)

	require.Len(t, f.usuarios.creados, 1)
	creado := f.usuarios.creados[0]
	assert.Equal(t, model.RolInspector, creado.Rol)
	// Only the hash is stored; the plain text goes out once in the report.
	assert.NotEqual(t, cuenta.Password, creado.Password)
	require.NotNil(t, f.obras.creadas[0].InspectorID)
	assert.Equal(t, creado.ID, *f.obras.creadas[0].InspectorID)
}

func TestImportarObrasInspectorExistente(t *testing.T) {
	f := nuevaImportacion(t)
	existente := f.usuarios.agregar(&model.User{Username: "mgomez", Nombre: "María Gómez", Rol: model.RolInspector})

	mapeo := map[string]string{"nombre": "Obra", "inspector": "Inspector"}
	hoja := &fakeHoja{
		encabezados: []string{"Obra", "Inspector"},
		filas:       [][]string{{"Obra inspeccionada", "María Gómez"}},
	}

	resultado, err := f.svc.ImportarObras(context.Background(), hoja, mapeo, nil, "Vial")
	require.NoError(t, err)
	assert.Empty(t, resultado.CuentasNuevas)
	assert.Empty(t, f.usuarios.creados)
	require.NotNil(t, f.obras.creadas[0].InspectorID)
	assert.Equal(t, existente.ID, *f.obras.creadas[0].InspectorID)
}

func TestGenerarUsername(t *testing.T) {
	username := generarUsername("María Gómez")
	assert.Regexp(t, `^maragmez\d{4}$`, username)
}

func TestFilaVacia(t *testing.T) {
	assert.True(t, filaVacia([]string{"", "  ", "\t"}))
	assert.False(t, filaVacia([]string{"", "x"}))
}
