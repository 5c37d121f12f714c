// Package export renders visitor listings as downloadable tables.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/AbelardoOk/PlanTracker/internal/modules/model"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Visitors"

// Header is the fixed column layout of every export.
var Header = []string{"#", "Visitor", "Type", "Plant", "Project", "Date/Time", "Lat/Lng", "Resources"}

// ParseFormat maps the export query flag to a Format. An empty flag means no export.
func ParseFormat(s string) (Format, bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", false, nil
	case "csv", "1", "true":
		return FormatCSV, true, nil
	case "xlsx":
		return FormatXLSX, true, nil
	}
	return "", false, fmt.Errorf("unsupported export format %q", s)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the attachment name for an export produced at now.
func (f Format) Filename(now time.Time) string {
	return "visitors-" + now.UTC().Format("20060102-150405") + "." + string(f)
}

// Rows flattens visitors into table rows, header excluded. Plant and Project
// must be preloaded on every visitor.
func Rows(items []model.Visitor) [][]string {
	rows := make([][]string, 0, len(items))
	for i := range items {
		v := &items[i]
		var plant, project string
		if v.Plant != nil {
			plant = v.Plant.Label()
			if v.Plant.Project != nil {
				project = v.Plant.Project.Name
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			v.Name,
			visitorType(v),
			plant,
			project,
			v.ObservedTime().Format("2006-01-02 15:04"),
			formatCoord(v.Latitude) + ", " + formatCoord(v.Longitude),
			v.ResourcesText(),
		})
	}
	return rows
}

// Write renders items in format f, header row first.
func Write(w io.Writer, f Format, items []model.Visitor) error {
	rows := Rows(items)
	switch f {
	case FormatCSV:
		return WriteCSV(w, rows)
	case FormatXLSX:
		return WriteXLSX(w, rows)
	}
	return fmt.Errorf("unsupported export format %q", f)
}

func WriteCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func WriteXLSX(w io.Writer, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", toCells(Header), excelize.RowOpts{StyleID: bold}); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// visitorType prefers the free-text type and falls back to the flower-type selections.
func visitorType(v *model.Visitor) string {
	if t := strings.TrimSpace(v.TypeVisitor); t != "" {
		return t
	}
	return strings.Join(v.FlowerTypeValues(), ",")
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func toCells(row []string) []any {
	out := make([]any, len(row))
	for i, s := range row {
		out[i] = s
	}
	return out
}
