package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
	"sgo-sapem/internal/repository"
	"sgo-sapem/pkg/excel"
	"sgo-sapem/pkg/hash"
	"sgo-sapem/pkg/token"
)

// Closed set of target fields a column mapping may point at. Unknown
// targets are rejected at the boundary, before any row is processed.
var camposImportacion = map[string]bool{
	"nombre":                      true,
	"expediente":                  true,
	"detalle":                     true,
	"localidad":                   true,
	"empresa":                     true,
	"representante":               true,
	"inspector":                   true,
	"plazo":                       true,
	"fecha_inicio":                true,
	"fecha_finalizacion_estimada": true,
	"monto":                       true,
	"avance":                      true,
}

// Days covered by one contract tranche; a term of N days spans
// ceil(N/30) tranches.
const diasPorContrato = 30

// errLoteConErrores signals the transaction callback to roll the whole
// batch back because at least one row failed.
var errLoteConErrores = errors.New("lote con errores")

// HojaImportacion is the decoded spreadsheet view the import consumes.
// Row and column indexes are 0-based over the data rows (header excluded).
type HojaImportacion interface {
	Encabezados() []string
	Filas() [][]string
	ColorFondo(fila, col int) string
}

// CuentaNueva reports one inspector account auto-created during an import.
// Password holds the generated plain text, returned once and never stored.
type CuentaNueva struct {
	Nombre   string `json:"nombre"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ResultadoImportacion is the outcome of one import batch. Either every row
// was imported or none: when Errores is non-empty, Importadas is zero and
// nothing was persisted.
type ResultadoImportacion struct {
	Importadas    int           `json:"importadas"`
	Errores       []string      `json:"errores"`
	CuentasNuevas []CuentaNueva `json:"cuentasNuevas"`
}

// ImportacionService ingests a spreadsheet of obras in one atomic batch.
type ImportacionService interface {
	ImportarObras(ctx context.Context, hoja HojaImportacion, mapeoColumnas, mapeoColores map[string]string, categoria string) (*ResultadoImportacion, error)
}

type importacionService struct {
	tx        TxManager
	obras     repository.ObraRepository
	usuarios  repository.UserRepository
	entidades repository.EntidadRepository
}

// NewImportacionService creates a new ImportacionService.
func NewImportacionService(tx TxManager, obras repository.ObraRepository, usuarios repository.UserRepository, entidades repository.EntidadRepository) ImportacionService {
	return &importacionService{tx: tx, obras: obras, usuarios: usuarios, entidades: entidades}
}

// ImportarObras maps every data row to an obra creation inside one shared
// transaction. Row failures are collected, not thrown; any recorded error
// rolls the whole batch back and the full list is returned with zero
// imports. Rows are displayed 1-based plus the header offset, so data row
// i reports as "fila i+2".
func (s *importacionService) ImportarObras(ctx context.Context, hoja HojaImportacion, mapeoColumnas, mapeoColores map[string]string, categoria string) (*ResultadoImportacion, error) {
	for campo := range mapeoColumnas {
		if !camposImportacion[campo] {
			return nil, errValidacion(fmt.Sprintf("campo de importación desconocido: %q", campo))
		}
	}

	filas := hoja.Filas()
	if len(filas) == 0 {
		return nil, errValidacion("la planilla no contiene filas de datos")
	}

	indices := make(map[string]int, len(hoja.Encabezados()))
	for i, titulo := range hoja.Encabezados() {
		indices[strings.TrimSpace(titulo)] = i
	}

	resultado := &ResultadoImportacion{Errores: []string{}}
	err := s.tx.WithTransaction(ctx, func(tx *gorm.DB) error {
		for i, fila := range filas {
			if filaVacia(fila) {
				continue
			}
			obra, cuenta, err := s.construirObra(ctx, tx, hoja, i, fila, indices, mapeoColumnas, mapeoColores, categoria)
			if err == nil {
				err = s.obras.Create(ctx, tx, obra)
			}
			if err != nil {
				resultado.Errores = append(resultado.Errores, fmt.Sprintf("Error en fila %d: %v", i+2, err))
				continue
			}
			if cuenta != nil {
				resultado.CuentasNuevas = append(resultado.CuentasNuevas, *cuenta)
			}
			resultado.Importadas++
		}
		if len(resultado.Errores) > 0 {
			return errLoteConErrores
		}
		return nil
	})

	if err != nil {
		if errors.Is(err, errLoteConErrores) {
			// Rolled back: nothing was persisted, including the accounts.
			resultado.Importadas = 0
			resultado.CuentasNuevas = nil
			return resultado, nil
		}
		return nil, errInterno("la importación no pudo completarse", err)
	}
	return resultado, nil
}

// construirObra resolves one data row into an obra payload plus, when an
// inspector account had to be created, its credentials report entry.
func (s *importacionService) construirObra(ctx context.Context, tx *gorm.DB, hoja HojaImportacion, fila int, celdas []string, indices map[string]int, mapeoColumnas, mapeoColores map[string]string, categoria string) (*model.Obra, *CuentaNueva, error) {
	valor := func(campo string) string {
		titulo, ok := mapeoColumnas[campo]
		if !ok {
			return ""
		}
		idx, ok := indices[strings.TrimSpace(titulo)]
		if !ok || idx >= len(celdas) {
			return ""
		}
		return strings.TrimSpace(celdas[idx])
	}

	columnas := len(celdas)
	if n := len(hoja.Encabezados()); n > columnas {
		columnas = n
	}
	obra := &model.Obra{
		Nombre:     valor("nombre"),
		Expediente: valor("expediente"),
		Categoria:  categoria,
		Estado:     s.estadoPorColor(hoja, fila, columnas, mapeoColores),
	}
	if obra.Nombre == "" {
		return nil, nil, fmt.Errorf("la obra no tiene nombre")
	}
	if detalle := valor("detalle"); detalle != "" {
		obra.Detalle = &detalle
	}

	if nombre := valor("localidad"); nombre != "" {
		localidad, err := s.entidades.FindOrCreateLocalidad(ctx, tx, nombre)
		if err != nil {
			return nil, nil, fmt.Errorf("no se pudo resolver la localidad %q: %v", nombre, err)
		}
		obra.LocalidadID = &localidad.ID
	}
	if nombre := valor("empresa"); nombre != "" {
		empresa, err := s.entidades.FindOrCreateEmpresa(ctx, tx, nombre)
		if err != nil {
			return nil, nil, fmt.Errorf("no se pudo resolver la empresa %q: %v", nombre, err)
		}
		obra.EmpresaID = &empresa.ID
	}
	if nombre := valor("representante"); nombre != "" {
		representante, err := s.entidades.FindOrCreateRepresentante(ctx, tx, nombre)
		if err != nil {
			return nil, nil, fmt.Errorf("no se pudo resolver el representante %q: %v", nombre, err)
		}
		obra.RepresentanteID = &representante.ID
	}

	var cuenta *CuentaNueva
	if nombre := valor("inspector"); nombre != "" {
		inspector, creada, err := s.resolverInspector(ctx, tx, nombre)
		if err != nil {
			return nil, nil, err
		}
		obra.InspectorID = &inspector.ID
		cuenta = creada
	}

	if crudo := valor("plazo"); crudo != "" {
		dias, err := strconv.Atoi(crudo)
		if err != nil {
			return nil, nil, fmt.Errorf("plazo inválido: %q", crudo)
		}
		obra.Plazo = &dias
	}
	obra.CantidadContratos = 1
	if obra.Plazo != nil && *obra.Plazo > 0 {
		obra.CantidadContratos = (*obra.Plazo + diasPorContrato - 1) / diasPorContrato
	}

	inicio := time.Now()
	if crudo := valor("fecha_inicio"); crudo != "" {
		parsed, err := excel.ParsearFecha(crudo)
		if err != nil {
			return nil, nil, fmt.Errorf("fecha de inicio inválida: %v", err)
		}
		inicio = parsed
	}
	obra.FechaInicio = &inicio

	if crudo := valor("fecha_finalizacion_estimada"); crudo != "" {
		fin, err := excel.ParsearFecha(crudo)
		if err != nil {
			return nil, nil, fmt.Errorf("fecha de finalización inválida: %v", err)
		}
		obra.FechaFinEstimada = &fin
	}
	// A present term always wins over the mapped end date.
	if obra.Plazo != nil && *obra.Plazo > 0 {
		fin := inicio.AddDate(0, 0, *obra.Plazo)
		obra.FechaFinEstimada = &fin
	}

	if crudo := valor("monto"); crudo != "" {
		if monto, err := strconv.ParseFloat(crudo, 64); err == nil {
			obra.Monto = monto
		}
	}
	if crudo := valor("avance"); crudo != "" {
		if avance, err := strconv.ParseFloat(crudo, 64); err == nil {
			obra.Avance = avance
		}
	}
	return obra, cuenta, nil
}

// estadoPorColor scans the row's cells in column order; the first cell
// whose normalized background color has a non-empty mapping decides the
// status. Unmatched rows default to "En ejecución".
func (s *importacionService) estadoPorColor(hoja HojaImportacion, fila, columnas int, mapeoColores map[string]string) string {
	for col := 0; col < columnas; col++ {
		color := hoja.ColorFondo(fila, col)
		if color == "" {
			continue
		}
		if estado, ok := mapeoColores[color]; ok && estado != "" {
			return estado
		}
	}
	return model.EstadoEnEjecucion
}

// resolverInspector looks an inspector up by exact full name, creating the
// account when absent. A username collision is reported as a row error, no
// retry.
func (s *importacionService) resolverInspector(ctx context.Context, tx *gorm.DB, nombre string) (*model.User, *CuentaNueva, error) {
	inspector, err := s.usuarios.FindByNombre(ctx, tx, nombre)
	if err == nil {
		return inspector, nil, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("no se pudo buscar el inspector %q: %v", nombre, err)
	}

	username := generarUsername(nombre)
	password := token.GenerateRandomString(4)
	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("no se pudo generar la cuenta del inspector %q: %v", nombre, err)
	}
	nuevo := &model.User{
		Username: username,
		Password: hashed,
		Nombre:   nombre,
		Email:    username + "@sapem.local",
		Rol:      model.RolInspector,
	}
	if err := s.usuarios.Create(ctx, tx, nuevo); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, nil, fmt.Errorf("el nombre de usuario generado %q ya existe", username)
		}
		return nil, nil, fmt.Errorf("no se pudo crear la cuenta del inspector %q: %v", nombre, err)
	}
	return nuevo, &CuentaNueva{Nombre: nombre, Username: username, Password: password}, nil
}

// generarUsername keeps only the alphanumeric characters of the name,
// lowercased, and appends a random 4-digit suffix.
func generarUsername(nombre string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(nombre) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return fmt.Sprintf("%s%04d", b.String(), rand.Intn(10000))
}

// filaVacia reports whether every cell of the row is blank.
func filaVacia(fila []string) bool {
	for _, celda := range fila {
		if strings.TrimSpace(celda) != "" {
			return false
		}
	}
	return true
}
