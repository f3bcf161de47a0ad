package edictos

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Edictos"

var exportHeader = []any{
	"ID", "Creado", "Autoridad", "Fecha", "Descripción", "Expediente",
	"Número de publicación", "Publicaciones", "Páginas", "Estatus", "URL",
}

// WriteXLSX writes list as a spreadsheet with one row per notice.
func WriteXLSX(w io.Writer, list []Edicto, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range list {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		paginas := ""
		if e.Paginas != nil {
			paginas = fmt.Sprint(*e.Paginas)
		}

		row := []any{
			e.ID,
			e.Creado.In(loc).Format(time.DateTime),
			e.AutoridadClave,
			e.Fecha.Format(time.DateOnly),
			e.Descripcion,
			e.Expediente,
			e.NumeroPublicacion,
			e.AcuseNum,
			paginas,
			string(e.Estatus),
			e.URL,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "D", 20); err != nil {
		return err
	}
	if err := f.SetColWidth(exportSheet, "E", "E", 60); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
