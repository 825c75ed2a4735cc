// Package excel wraps excelize for reading import workbooks and writing
// report workbooks.
package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Serial 25569 corresponds to 1970-01-01 UTC in the spreadsheet epoch.
const serialEpocaUnix = 25569

// Layouts accepted when a date arrives as text instead of a serial.
var formatosFecha = []string{"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006"}

// Libro is an open workbook pinned to one sheet, with its rows fully read.
type Libro struct {
	f     *excelize.File
	hoja  string
	filas [][]string
}

// Abrir decodes a workbook from the reader. If hoja is empty the first
// sheet is used. Cell values are read raw, so date cells keep their
// numeric serial form.
func Abrir(r io.Reader, hoja string) (*Libro, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("no se pudo leer la planilla: %w", err)
	}
	if hoja == "" {
		hoja = f.GetSheetName(0)
	}
	filas, err := f.GetRows(hoja, excelize.Options{RawCellValue: true})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("no se pudo leer la hoja %q: %w", hoja, err)
	}
	return &Libro{f: f, hoja: hoja, filas: filas}, nil
}

// Cerrar releases the underlying workbook.
func (l *Libro) Cerrar() error {
	return l.f.Close()
}

// Hoja returns the name of the sheet being read.
func (l *Libro) Hoja() string {
	return l.hoja
}

// Encabezados returns the header row, or nil for an empty sheet.
func (l *Libro) Encabezados() []string {
	if len(l.filas) == 0 {
		return nil
	}
	return l.filas[0]
}

// Filas returns the data rows, excluding the header.
func (l *Libro) Filas() [][]string {
	if len(l.filas) <= 1 {
		return nil
	}
	return l.filas[1:]
}

// ColorFondo returns the normalized background color of a data cell, or ""
// when the cell has no fill. fila and col are 0-based over the data rows.
func (l *Libro) ColorFondo(fila, col int) string {
	celda, err := excelize.CoordinatesToCellName(col+1, fila+2)
	if err != nil {
		return ""
	}
	estiloID, err := l.f.GetCellStyle(l.hoja, celda)
	if err != nil {
		return ""
	}
	estilo, err := l.f.GetStyle(estiloID)
	if err != nil || estilo == nil || len(estilo.Fill.Color) == 0 {
		return ""
	}
	return NormalizarColor(estilo.Fill.Color[0])
}

// NormalizarColor reduces a raw color value (RGB or ARGB, with or without
// "#") to the canonical "#RRGGBB" form: the last six hex digits, uppercased.
func NormalizarColor(raw string) string {
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "#"))
	if len(raw) < 6 {
		return ""
	}
	return "#" + strings.ToUpper(raw[len(raw)-6:])
}

// DesdeSerial converts a spreadsheet date serial to a UTC calendar date.
func DesdeSerial(serial float64) time.Time {
	return time.Unix(int64((serial-serialEpocaUnix)*86400), 0).UTC()
}

// ParsearFecha interprets a raw cell as a date: numeric values are treated
// as spreadsheet serials, anything else is matched against the accepted
// text layouts.
func ParsearFecha(valor string) (time.Time, error) {
	valor = strings.TrimSpace(valor)
	if valor == "" {
		return time.Time{}, fmt.Errorf("fecha vacía")
	}
	if serial, err := strconv.ParseFloat(valor, 64); err == nil {
		return DesdeSerial(serial), nil
	}
	for _, formato := range formatosFecha {
		if t, err := time.Parse(formato, valor); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("formato de fecha no reconocido: %q", valor)
}

// GenerarPlanilla builds a single-sheet workbook with a header row followed
// by the given rows. Used for the new-accounts report of the bulk import.
func GenerarPlanilla(hoja string, encabezados []string, filas [][]interface{}) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", hoja); err != nil {
		return nil, err
	}
	for col, titulo := range encabezados {
		celda, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(hoja, celda, titulo); err != nil {
			return nil, err
		}
	}
	for i, fila := range filas {
		for col, valor := range fila {
			celda, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(hoja, celda, valor); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}
