package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"sgo-sapem/internal/repository"
	"sgo-sapem/internal/service"
)

// ObraHandler serves the project CRUD and the master listings.
type ObraHandler struct {
	obraService service.ObraService
}

// NewObraHandler creates a new ObraHandler.
func NewObraHandler(obraService service.ObraService) *ObraHandler {
	return &ObraHandler{obraService: obraService}
}

// ObraRequest is the body of POST/PUT /obras.
type ObraRequest struct {
	Nombre          string  `json:"nombre" binding:"required"`
	Expediente      string  `json:"expediente"`
	Detalle         *string `json:"detalle"`
	Categoria       string  `json:"categoria"`
	Monto           float64 `json:"monto"`
	Plazo           *int    `json:"plazo"`
	LocalidadID     *uint   `json:"localidadId"`
	EmpresaID       *uint   `json:"empresaId"`
	RepresentanteID *uint   `json:"representanteId"`
	InspectorID     *uint   `json:"inspectorId"`
}

func (r *ObraRequest) datos() service.DatosObra {
	return service.DatosObra{
		Nombre:          r.Nombre,
		Expediente:      r.Expediente,
		Detalle:         r.Detalle,
		Categoria:       r.Categoria,
		Monto:           r.Monto,
		Plazo:           r.Plazo,
		LocalidadID:     r.LocalidadID,
		EmpresaID:       r.EmpresaID,
		RepresentanteID: r.RepresentanteID,
		InspectorID:     r.InspectorID,
	}
}

// Listar returns obras filtered by query parameters.
func (h *ObraHandler) Listar(c *gin.Context) {
	filtro := repository.ObraFiltro{
		Estado:    c.Query("estado"),
		Categoria: c.Query("categoria"),
	}
	if raw := c.Query("localidadId"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filtro.LocalidadID = uint(id)
		}
	}

	obras, err := h.obraService.Listar(c.Request.Context(), filtro)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, obras)
}

// Obtener returns one obra with its associations.
func (h *ObraHandler) Obtener(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}

	obra, err := h.obraService.Obtener(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, obra)
}

// Crear registers a new obra.
func (h *ObraHandler) Crear(c *gin.Context) {
	var req ObraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	obra, err := h.obraService.Crear(c.Request.Context(), req.datos())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, obra)
}

// Actualizar overwrites an existing obra.
func (h *ObraHandler) Actualizar(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	var req ObraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	obra, err := h.obraService.Actualizar(c.Request.Context(), uint(id), req.datos())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, obra)
}

// CambiarEstadoRequest is the body of PUT /obras/:id/estado.
type CambiarEstadoRequest struct {
	Estado string `json:"estado" binding:"required"`
}

// CambiarEstado moves an obra to a new state.
func (h *ObraHandler) CambiarEstado(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}
	var req CambiarEstadoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cuerpo de la petición inválido"})
		return
	}

	if err := h.obraService.CambiarEstado(c.Request.Context(), uint(id), req.Estado); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "estado actualizado"})
}

// Eliminar removes an obra and sweeps its file tree.
func (h *ObraHandler) Eliminar(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identificador inválido"})
		return
	}

	if err := h.obraService.Eliminar(c.Request.Context(), uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "obra eliminada"})
}

// Localidades lists the locality master.
func (h *ObraHandler) Localidades(c *gin.Context) {
	localidades, err := h.obraService.ListarLocalidades(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, localidades)
}

// Empresas lists the contractor master.
func (h *ObraHandler) Empresas(c *gin.Context) {
	empresas, err := h.obraService.ListarEmpresas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, empresas)
}

// Representantes lists the legal-representative master.
func (h *ObraHandler) Representantes(c *gin.Context) {
	representantes, err := h.obraService.ListarRepresentantes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, representantes)
}
