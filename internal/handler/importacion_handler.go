package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"sgo-sapem/internal/service"
	"sgo-sapem/pkg/excel"
	"sgo-sapem/pkg/log"
)

// ImportacionHandler serves the bulk import of obras from a spreadsheet.
type ImportacionHandler struct {
	importacionService service.ImportacionService
}

// NewImportacionHandler creates a new ImportacionHandler.
func NewImportacionHandler(importacionService service.ImportacionService) *ImportacionHandler {
	return &ImportacionHandler{importacionService: importacionService}
}

// Importar receives the workbook plus the JSON-encoded column and color
// mappings and the batch category. The workbook is decoded straight from
// the multipart stream, so no temporary copy of the upload is left behind
// on any outcome. The response is the full error list (nothing persisted),
// a JSON summary, or a downloadable credentials report when inspector
// accounts were created.
func (h *ImportacionHandler) Importar(c *gin.Context) {
	fh, err := c.FormFile("archivo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "falta la planilla a importar"})
		return
	}

	var mapeoColumnas map[string]string
	if err := json.Unmarshal([]byte(c.PostForm("mapeoColumnas")), &mapeoColumnas); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mapeo de columnas inválido"})
		return
	}
	var mapeoColores map[string]string
	if raw := c.PostForm("mapeoColores"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &mapeoColores); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "mapeo de colores inválido"})
			return
		}
	}
	categoria := c.PostForm("categoria")
	if categoria == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "la categoría es obligatoria"})
		return
	}

	src, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no se pudo leer la planilla"})
		return
	}
	defer src.Close()

	libro, err := excel.Abrir(src, c.PostForm("hoja"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer libro.Cerrar()

	resultado, err := h.importacionService.ImportarObras(c.Request.Context(), libro, mapeoColumnas, mapeoColores, categoria)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(resultado.Errores) > 0 {
		// All-or-nothing: the batch rolled back, nothing was persisted.
		c.JSON(http.StatusBadRequest, resultado)
		return
	}

	if len(resultado.CuentasNuevas) > 0 {
		h.responderReporteCuentas(c, resultado)
		return
	}
	c.JSON(http.StatusOK, resultado)
}

// responderReporteCuentas streams the xlsx credentials report of the
// inspector accounts created during the batch.
func (h *ImportacionHandler) responderReporteCuentas(c *gin.Context, resultado *service.ResultadoImportacion) {
	filas := make([][]interface{}, 0, len(resultado.CuentasNuevas))
	for _, cuenta := range resultado.CuentasNuevas {
		filas = append(filas, []interface{}{cuenta.Nombre, cuenta.Username, cuenta.Password})
	}

	reporte, err := excel.GenerarPlanilla("Cuentas nuevas", []string{"Nombre completo", "Usuario", "Contraseña"}, filas)
	if err != nil {
		respondError(c, err)
		return
	}
	defer reporte.Close()

	c.Header("Content-Disposition", `attachment; filename="cuentas_nuevas.xlsx"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("X-Obras-Importadas", strconv.Itoa(resultado.Importadas))
	c.Status(http.StatusOK)
	if err := reporte.Write(c.Writer); err != nil {
		log.Error("no se pudo enviar el reporte de cuentas", err)
	}
}
