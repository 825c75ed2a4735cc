package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"sgo-sapem/internal/service"
	"sgo-sapem/pkg/log"
	"sgo-sapem/pkg/storage"
)

// ArchivoHandler serves the per-obra file tree.
type ArchivoHandler struct {
	archivoService service.ArchivoService
	almacen        *storage.Local
}

// NewArchivoHandler creates a new ArchivoHandler.
func NewArchivoHandler(archivoService service.ArchivoService, almacen *storage.Local) *ArchivoHandler {
	return &ArchivoHandler{archivoService: archivoService, almacen: almacen}
}

// Arbol returns the materialized folder/file forest of an obra.
func (h *ArchivoHandler) Arbol(c *gin.Context) {
	obraID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}

	arbol, err := h.archivoService.ObtenerArbol(c.Request.Context(), uint(obraID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, arbol)
}

// CrearCarpetaRequest is the body of POST /obras/:id/archivos/carpetas.
type CrearCarpetaRequest struct {
	Nombre  string `json:"nombre" binding:"required"`
	PadreID *uint  `json:"padreId"`
}

// CrearCarpeta adds a folder node to the tree.
func (h *ArchivoHandler) CrearCarpeta(c *gin.Context) {
	obraID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	var req CrearCarpetaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	carpeta, err := h.archivoService.CrearCarpeta(c.Request.Context(), uint(obraID), req.Nombre, req.PadreID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, carpeta)
}

// Subir receives a multipart upload of one or more files, writes them to
// the store, and registers one node per file. Optional "padreId" form
// field places them inside a folder.
func (h *ArchivoHandler) Subir(c *gin.Context) {
	obraID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}

	var padreID *uint
	if raw := c.PostForm("padreId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "padreId inválido"})
			return
		}
		id := uint(parsed)
		padreID = &id
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo leer el formulario"})
		return
	}
	encabezados := form.File["archivos"]
	if len(encabezados) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se recibió ningún archivo"})
		return
	}

	cargas := make([]service.CargaArchivo, 0, len(encabezados))
	for _, fh := range encabezados {
		src, err := fh.Open()
		if err != nil {
			h.limpiar(cargas)
			c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo leer el archivo " + fh.Filename})
			return
		}
		nombreAlmacenado := h.almacen.NombreAlmacenado(fh.Filename)
		escritos, err := h.almacen.Guardar(src, nombreAlmacenado)
		_ = src.Close()
		if err != nil {
			h.limpiar(cargas)
			respondError(c, err)
			return
		}
		cargas = append(cargas, service.CargaArchivo{
			NombreOriginal:   fh.Filename,
			NombreAlmacenado: nombreAlmacenado,
			Ruta:             h.almacen.URL(nombreAlmacenado),
			TipoMime:         fh.Header.Get("Content-Type"),
			Tamano:           escritos,
		})
	}

	archivos, err := h.archivoService.RegistrarArchivos(c.Request.Context(), uint(obraID), padreID, cargas)
	if err != nil {
		// The service already swept the physical files of this attempt.
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, archivos)
}

// limpiar removes files written before a mid-upload failure.
func (h *ArchivoHandler) limpiar(cargas []service.CargaArchivo) {
	for _, carga := range cargas {
		if err := h.almacen.Eliminar(h.almacen.RutaFisica(carga.NombreAlmacenado)); err != nil {
			log.Warnf("no se pudo limpiar %s: %v", carga.NombreAlmacenado, err)
		}
	}
}

// RenombrarRequest is the body of PUT /archivos/:id.
type RenombrarRequest struct {
	Nombre string `json:"nombre" binding:"required"`
}

// Renombrar changes the display name of a node.
func (h *ArchivoHandler) Renombrar(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	var req RenombrarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	archivo, err := h.archivoService.Renombrar(c.Request.Context(), uint(id), req.Nombre)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, archivo)
}

// Eliminar removes a node and its whole subtree, rows and bytes.
func (h *ArchivoHandler) Eliminar(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}

	if err := h.archivoService.Eliminar(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "archivo eliminado"})
}
