package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"sgo-sapem/internal/service"
	"sgo-sapem/pkg/storage"
)

// ContratoHandler serves contract tranches and their documents.
type ContratoHandler struct {
	contratoService service.ContratoService
	almacen         *storage.Local
}

// NewContratoHandler creates a new ContratoHandler.
func NewContratoHandler(contratoService service.ContratoService, almacen *storage.Local) *ContratoHandler {
	return &ContratoHandler{contratoService: contratoService, almacen: almacen}
}

// Listar returns the contracts of an obra.
func (h *ContratoHandler) Listar(c *gin.Context) {
	obraID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}

	contratos, err := h.contratoService.ListarPorObra(c.Request.Context(), uint(obraID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contratos)
}

// Crear registers a contract tranche from a multipart form carrying its
// numeric fields plus the single contract document.
func (h *ContratoHandler) Crear(c *gin.Context) {
	obraID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}

	numero, err := strconv.Atoi(c.PostForm("numero"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "número de contrato inválido"})
		return
	}
	monto, _ := strconv.ParseFloat(c.PostForm("monto"), 64)
	avance, _ := strconv.ParseFloat(c.PostForm("avance"), 64)

	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falta el documento del contrato"})
		return
	}
	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo leer el documento"})
		return
	}
	defer src.Close()

	nombreAlmacenado := h.almacen.NombreAlmacenado(fh.Filename)
	if _, err := h.almacen.Guardar(src, nombreAlmacenado); err != nil {
		respondError(c, err)
		return
	}

	contrato, err := h.contratoService.Crear(c.Request.Context(), uint(obraID), service.DatosContrato{
		Numero:           numero,
		Monto:            monto,
		Avance:           avance,
		NombreOriginal:   fh.Filename,
		NombreAlmacenado: nombreAlmacenado,
		Ruta:             h.almacen.URL(nombreAlmacenado),
	})
	if err != nil {
		// Don't leave the document behind if the row was rejected.
		_ = h.almacen.Eliminar(h.almacen.RutaFisica(nombreAlmacenado))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contrato)
}

// ActualizarAvanceRequest is the body of PUT /contratos/:id/avance.
type ActualizarAvanceRequest struct {
	Avance *float64 `json:"avance" binding:"required"`
}

// ActualizarAvance updates the certified progress of a contract, which in
// turn recomputes the obra's global progress.
func (h *ContratoHandler) ActualizarAvance(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	var req ActualizarAvanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	contrato, err := h.contratoService.ActualizarAvance(c.Request.Context(), uint(id), *req.Avance)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contrato)
}
