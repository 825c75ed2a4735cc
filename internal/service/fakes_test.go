package service

import (
	"context"
	"errors"
	"path/filepath"

	"gorm.io/gorm"
	"sgo-sapem/internal/model"
	"sgo-sapem/internal/repository"
)

// In-memory repository fakes. They accept a nil *gorm.DB because the
// services never touch the handle directly.

type fakeObraRepo struct {
	obras     map[uint]*model.Obra
	siguiente uint
	creadas   []*model.Obra
	avances   map[uint]float64
	estados   map[uint]string
	borradas  []uint
	createErr error
}

func newFakeObraRepo() *fakeObraRepo {
	return &fakeObraRepo{
		obras:   map[uint]*model.Obra{},
		avances: map[uint]float64{},
		estados: map[uint]string{},
	}
}

func (r *fakeObraRepo) agregar(obra *model.Obra) *model.Obra {
	r.siguiente++
	obra.ID = r.siguiente
	r.obras[obra.ID] = obra
	return obra
}

func (r *fakeObraRepo) Create(ctx context.Context, tx *gorm.DB, obra *model.Obra) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.agregar(obra)
	r.creadas = append(r.creadas, obra)
	return nil
}

func (r *fakeObraRepo) FindByID(ctx context.Context, id uint) (*model.Obra, error) {
	obra, ok := r.obras[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return obra, nil
}

func (r *fakeObraRepo) FindAll(ctx context.Context, filtro repository.ObraFiltro) ([]model.Obra, error) {
	out := make([]model.Obra, 0, len(r.obras))
	for _, obra := range r.obras {
		out = append(out, *obra)
	}
	return out, nil
}

func (r *fakeObraRepo) Update(ctx context.Context, obra *model.Obra) error {
	r.obras[obra.ID] = obra
	return nil
}

func (r *fakeObraRepo) UpdateAvance(ctx context.Context, id uint, avance float64) error {
	r.avances[id] = avance
	return nil
}

func (r *fakeObraRepo) UpdateEstado(ctx context.Context, id uint, estado string) error {
	r.estados[id] = estado
	return nil
}

func (r *fakeObraRepo) Delete(ctx context.Context, id uint) error {
	delete(r.obras, id)
	r.borradas = append(r.borradas, id)
	return nil
}

type fakeArchivoRepo struct {
	nodos     map[uint]*model.Archivo
	orden     []uint
	siguiente uint
	borrados  []uint
	batchErr  error
}

func newFakeArchivoRepo() *fakeArchivoRepo {
	return &fakeArchivoRepo{nodos: map[uint]*model.Archivo{}}
}

func (r *fakeArchivoRepo) agregar(archivo *model.Archivo) *model.Archivo {
	r.siguiente++
	archivo.ID = r.siguiente
	r.nodos[archivo.ID] = archivo
	r.orden = append(r.orden, archivo.ID)
	return archivo
}

func (r *fakeArchivoRepo) Create(ctx context.Context, archivo *model.Archivo) error {
	r.agregar(archivo)
	return nil
}

func (r *fakeArchivoRepo) CreateBatch(ctx context.Context, archivos []*model.Archivo) error {
	if r.batchErr != nil {
		return r.batchErr
	}
	for _, archivo := range archivos {
		r.agregar(archivo)
	}
	return nil
}

func (r *fakeArchivoRepo) FindByID(ctx context.Context, id uint) (*model.Archivo, error) {
	archivo, ok := r.nodos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return archivo, nil
}

func (r *fakeArchivoRepo) FindByObra(ctx context.Context, obraID uint) ([]model.Archivo, error) {
	out := make([]model.Archivo, 0)
	for _, id := range r.orden {
		if nodo, ok := r.nodos[id]; ok && nodo.ObraID == obraID {
			out = append(out, *nodo)
		}
	}
	return out, nil
}

func (r *fakeArchivoRepo) FindChildren(ctx context.Context, padreIDs []uint) ([]model.Archivo, error) {
	padres := map[uint]bool{}
	for _, id := range padreIDs {
		padres[id] = true
	}
	out := make([]model.Archivo, 0)
	for _, id := range r.orden {
		nodo := r.nodos[id]
		if nodo.PadreID != nil && padres[*nodo.PadreID] {
			out = append(out, *nodo)
		}
	}
	return out, nil
}

func (r *fakeArchivoRepo) UpdateNombre(ctx context.Context, id uint, nombre string) error {
	nodo, ok := r.nodos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	nodo.Nombre = nombre
	return nil
}

func (r *fakeArchivoRepo) Delete(ctx context.Context, id uint) error {
	r.borrados = append(r.borrados, id)
	delete(r.nodos, id)
	return nil
}

type fakeContratoRepo struct {
	contratos map[uint]*model.Contrato
	siguiente uint
	suma      map[uint]float64
}

func newFakeContratoRepo() *fakeContratoRepo {
	return &fakeContratoRepo{contratos: map[uint]*model.Contrato{}, suma: map[uint]float64{}}
}

func (r *fakeContratoRepo) Create(ctx context.Context, contrato *model.Contrato) error {
	r.siguiente++
	contrato.ID = r.siguiente
	r.contratos[contrato.ID] = contrato
	return nil
}

func (r *fakeContratoRepo) FindByID(ctx context.Context, id uint) (*model.Contrato, error) {
	contrato, ok := r.contratos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contrato, nil
}

func (r *fakeContratoRepo) FindByObra(ctx context.Context, obraID uint) ([]model.Contrato, error) {
	out := make([]model.Contrato, 0)
	for _, contrato := range r.contratos {
		if contrato.ObraID == obraID {
			out = append(out, *contrato)
		}
	}
	return out, nil
}

func (r *fakeContratoRepo) Update(ctx context.Context, contrato *model.Contrato) error {
	r.contratos[contrato.ID] = contrato
	return nil
}

func (r *fakeContratoRepo) SumAvance(ctx context.Context, obraID uint) (float64, error) {
	return r.suma[obraID], nil
}

func (r *fakeContratoRepo) Delete(ctx context.Context, id uint) error {
	delete(r.contratos, id)
	return nil
}

type fakeUserRepo struct {
	usuarios  map[uint]*model.User
	siguiente uint
	creados   []*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{usuarios: map[uint]*model.User{}}
}

func (r *fakeUserRepo) agregar(user *model.User) *model.User {
	r.siguiente++
	user.ID = r.siguiente
	r.usuarios[user.ID] = user
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, tx *gorm.DB, user *model.User) error {
	for _, existente := range r.usuarios {
		if existente.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	r.agregar(user)
	r.creados = append(r.creados, user)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	user, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, user := range r.usuarios {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByNombre(ctx context.Context, tx *gorm.DB, nombre string) (*model.User, error) {
	for _, user := range r.usuarios {
		if user.Nombre == nombre {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	out := make([]model.User, 0, len(r.usuarios))
	for _, user := range r.usuarios {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) FindByRol(ctx context.Context, rol string) ([]model.User, error) {
	out := make([]model.User, 0)
	for _, user := range r.usuarios {
		if user.Rol == rol {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.usuarios[user.ID] = user
	return nil
}

type fakeEntidadRepo struct {
	localidades     map[string]*model.Localidad
	empresas        map[string]*model.Empresa
	representantes  map[string]*model.RepresentanteLegal
	siguiente       uint
	creacionesTotal int
}

func newFakeEntidadRepo() *fakeEntidadRepo {
	return &fakeEntidadRepo{
		localidades:    map[string]*model.Localidad{},
		empresas:       map[string]*model.Empresa{},
		representantes: map[string]*model.RepresentanteLegal{},
	}
}

func (r *fakeEntidadRepo) FindOrCreateLocalidad(ctx context.Context, tx *gorm.DB, nombre string) (*model.Localidad, error) {
	if existente, ok := r.localidades[nombre]; ok {
		return existente, nil
	}
	r.siguiente++
	r.creacionesTotal++
	localidad := &model.Localidad{ID: r.siguiente, Nombre: nombre}
	r.localidades[nombre] = localidad
	return localidad, nil
}

func (r *fakeEntidadRepo) FindOrCreateEmpresa(ctx context.Context, tx *gorm.DB, nombre string) (*model.Empresa, error) {
	if existente, ok := r.empresas[nombre]; ok {
		return existente, nil
	}
	r.siguiente++
	r.creacionesTotal++
	empresa := &model.Empresa{ID: r.siguiente, Nombre: nombre}
	r.empresas[nombre] = empresa
	return empresa, nil
}

func (r *fakeEntidadRepo) FindOrCreateRepresentante(ctx context.Context, tx *gorm.DB, nombre string) (*model.RepresentanteLegal, error) {
	if existente, ok := r.representantes[nombre]; ok {
		return existente, nil
	}
	r.siguiente++
	r.creacionesTotal++
	representante := &model.RepresentanteLegal{ID: r.siguiente, Nombre: nombre}
	r.representantes[nombre] = representante
	return representante, nil
}

func (r *fakeEntidadRepo) ListLocalidades(ctx context.Context) ([]model.Localidad, error) {
	out := make([]model.Localidad, 0, len(r.localidades))
	for _, localidad := range r.localidades {
		out = append(out, *localidad)
	}
	return out, nil
}

func (r *fakeEntidadRepo) ListEmpresas(ctx context.Context) ([]model.Empresa, error) {
	out := make([]model.Empresa, 0, len(r.empresas))
	for _, empresa := range r.empresas {
		out = append(out, *empresa)
	}
	return out, nil
}

func (r *fakeEntidadRepo) ListRepresentantes(ctx context.Context) ([]model.RepresentanteLegal, error) {
	out := make([]model.RepresentanteLegal, 0, len(r.representantes))
	for _, representante := range r.representantes {
		out = append(out, *representante)
	}
	return out, nil
}

// fakeAlmacen tracks which physical paths exist and which were removed.
type fakeAlmacen struct {
	existentes map[string]bool
	eliminados []string
}

func newFakeAlmacen(nombres ...string) *fakeAlmacen {
	a := &fakeAlmacen{existentes: map[string]bool{}}
	for _, nombre := range nombres {
		a.existentes[a.RutaFisica(nombre)] = true
	}
	return a
}

func (a *fakeAlmacen) RutaFisica(nombreAlmacenado string) string {
	return filepath.Join("/srv/uploads", nombreAlmacenado)
}

func (a *fakeAlmacen) Existe(ruta string) bool {
	return a.existentes[ruta]
}

func (a *fakeAlmacen) Eliminar(ruta string) error {
	delete(a.existentes, ruta)
	a.eliminados = append(a.eliminados, ruta)
	return nil
}

// fakeTxManager runs the callback with a nil handle; a callback error is
// the rollback signal and is returned untouched.
type fakeTxManager struct {
	llamadas  int
	rollbacks int
}

func (m *fakeTxManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	m.llamadas++
	if err := fn(nil); err != nil {
		m.rollbacks++
		return err
	}
	return nil
}

// fakeHoja is a canned spreadsheet view. Colors are keyed by data-row and
// column index.
type fakeHoja struct {
	encabezados []string
	filas       [][]string
	colores     map[[2]int]string
}

func (h *fakeHoja) Encabezados() []string { return h.encabezados }
func (h *fakeHoja) Filas() [][]string     { return h.filas }
func (h *fakeHoja) ColorFondo(fila, col int) string {
	return h.colores[[2]int{fila, col}]
}

var errFalloPersistencia = errors.New("fallo de persistencia simulado")
