package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"p9e.in/qac/models"
)

var exportHeaders = []string{
	"Tank No", "Oil Level (cm)", "Temperature (°C)", "Density (t/m³)", "Weight (t)", "FFA (%)", "Moisture (%)", "DOBI",
}

// ExportCpoReading downloads one reading as xlsx (default) or csv.
func ExportCpoReading(w http.ResponseWriter, r *http.Request) {
	id, ok := readingID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		writeError(w, http.StatusBadRequest, "format must be xlsx or csv")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "export cpo reading", err)
		return
	}
	reading, err := findReading(db, id)
	if err != nil {
		writeDBError(w, "export cpo reading", err)
		return
	}

	var data []byte
	var contentType string
	switch format {
	case "csv":
		data, err = createReadingCSV(&reading)
		contentType = "text/csv"
	default:
		var f *excelize.File
		f, err = createReadingExcel(&reading)
		if err == nil {
			var buf *bytes.Buffer
			buf, err = f.WriteToBuffer()
			if err == nil {
				data = buf.Bytes()
			}
			f.Close()
		}
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		writeDBError(w, "export cpo reading", err)
		return
	}

	filename := fmt.Sprintf("cpo_%s_%s.%s", reading.ReadingDate.Time().Format("20060102"), time.Now().Format("20060102_150405"), format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func optionalCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func tankRow(t models.CpoTankReading) []interface{} {
	return []interface{}{
		t.TankNo, t.OilLevel, t.Temperature, t.DensityUsed, t.WeightTons,
		optionalCell(t.FFA), optionalCell(t.Moisture), optionalCell(t.DOBI),
	}
}

// sheetWriter keeps the first excelize error so the layout code reads top to bottom.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (sw *sheetWriter) value(col, row int, v interface{}) {
	if sw.err != nil {
		return
	}
	var c string
	if c, sw.err = excelize.CoordinatesToCellName(col, row); sw.err == nil {
		sw.err = sw.f.SetCellValue(sw.sheet, c, v)
	}
}

func (sw *sheetWriter) row(row int, values []interface{}) {
	if sw.err != nil {
		return
	}
	var c string
	if c, sw.err = excelize.CoordinatesToCellName(1, row); sw.err == nil {
		sw.err = sw.f.SetSheetRow(sw.sheet, c, &values)
	}
}

func (sw *sheetWriter) style(fromCol, toCol, row, styleID int) {
	if sw.err != nil {
		return
	}
	from, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		sw.err = err
		return
	}
	to, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		sw.err = err
		return
	}
	sw.err = sw.f.SetCellStyle(sw.sheet, from, to, styleID)
}

func (sw *sheetWriter) newStyle(style *excelize.Style) int {
	if sw.err != nil {
		return 0
	}
	id, err := sw.f.NewStyle(style)
	sw.err = err
	return id
}

// createReadingExcel lays out a reading as: title, generated-at, header row at 4,
// one row per tank, a total row, then the quality summary block.
func createReadingExcel(reading *models.CpoReading) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "CPO Stock"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	sw := &sheetWriter{f: f, sheet: sheetName}

	titleStyle := sw.newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	title := fmt.Sprintf("CPO Stock %s", reading.ReadingDate.Time().Format("2006-01-02"))
	if reading.Location != "" {
		title += " - " + reading.Location
	}
	if reading.Shift != "" {
		title += " (" + reading.Shift + ")"
	}
	sw.value(1, 1, title)
	sw.style(1, 1, 1, titleStyle)
	if sw.err == nil {
		sw.err = f.SetRowHeight(sheetName, 1, 30)
	}
	sw.value(1, 2, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle := sw.newStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for colIdx, header := range exportHeaders {
		sw.value(colIdx+1, 4, header)
	}
	sw.style(1, len(exportHeaders), 4, headerStyle)
	if sw.err == nil {
		last, _ := excelize.ColumnNumberToName(len(exportHeaders))
		sw.err = f.SetColWidth(sheetName, "A", last, 16)
	}

	row := 5
	for _, t := range reading.Tanks {
		sw.row(row, tankRow(t))
		row++
	}

	boldStyle := sw.newStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E7E6E6"}, Pattern: 1},
	})
	sw.value(1, row, "Total")
	sw.value(5, row, reading.TotalTons)
	sw.style(1, 5, row, boldStyle)

	summaryRow := row + 2
	sw.value(1, summaryRow, "Quality Summary")
	sw.style(1, 1, summaryRow, boldStyle)
	for i, kv := range qualitySummary(reading) {
		sw.value(1, summaryRow+1+i, kv.label)
		sw.value(2, summaryRow+1+i, kv.value)
	}
	if sw.err != nil {
		f.Close()
		return nil, sw.err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

type summaryItem struct {
	label string
	value interface{}
}

func qualitySummary(reading *models.CpoReading) []summaryItem {
	return []summaryItem{
		{"Average FFA (%)", reading.AvgFFA},
		{"Average Moisture (%)", reading.AvgMoisture},
		{"Average DOBI", reading.AvgDOBI},
		{"Tanks Sampled", reading.QualityTankCount},
	}
}

func createReadingCSV(reading *models.CpoReading) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	records := [][]string{exportHeaders}
	for _, t := range reading.Tanks {
		values := tankRow(t)
		record := make([]string, len(values))
		for i, v := range values {
			record[i] = fmt.Sprintf("%v", v)
		}
		records = append(records, record)
	}
	records = append(records,
		[]string{"Total", "", "", "", fmt.Sprintf("%v", reading.TotalTons)},
		[]string{},
		[]string{"Quality Summary"},
	)
	for _, kv := range qualitySummary(reading) {
		records = append(records, []string{kv.label, fmt.Sprintf("%v", kv.value)})
	}

	if err := writer.WriteAll(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
