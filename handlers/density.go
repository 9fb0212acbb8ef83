package handlers

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"p9e.in/qac/config"
	"p9e.in/qac/middleware"
	"p9e.in/qac/models"
	"p9e.in/qac/pkg/cpo"
)

type densityRequest struct {
	TemperatureC int     `json:"temperatureC"`
	Density      float64 `json:"density"`
}

type rowRejection struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// upsertDensity writes points keyed by temperature, replacing existing densities.
func upsertDensity(db *gorm.DB, points []models.DensityPoint) error {
	if len(points) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "temperature_c"}},
		DoUpdates: clause.AssignmentColumns([]string{"density", "updated_at"}),
	}).Create(&points).Error
}

func GetDensityTable(w http.ResponseWriter, r *http.Request) {
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "list density table", err)
		return
	}
	var points []models.DensityPoint
	if err := db.Order("temperature_c").Find(&points).Error; err != nil {
		writeDBError(w, "list density table", err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// UpsertDensityPoints accepts an array of {temperatureC, density}.
func UpsertDensityPoints(w http.ResponseWriter, r *http.Request) {
	var req []densityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	points, rejected := validateDensityRequests(req)
	if len(rejected) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid density rows", "rejected": rejected})
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "upsert density", err)
		return
	}
	if err := upsertDensity(db, points); err != nil {
		writeDBError(w, "upsert density", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"upserted": len(points)})
}

func validateDensityRequests(req []densityRequest) ([]models.DensityPoint, []rowRejection) {
	points := make([]models.DensityPoint, 0, len(req))
	var rejected []rowRejection
	seen := make(map[int]bool, len(req))
	for i, d := range req {
		switch {
		case d.Density <= 0:
			rejected = append(rejected, rowRejection{Row: i + 1, Reason: "density must be positive"})
		case seen[d.TemperatureC]:
			rejected = append(rejected, rowRejection{Row: i + 1, Reason: "duplicate temperature"})
		default:
			seen[d.TemperatureC] = true
			points = append(points, models.DensityPoint{TemperatureC: d.TemperatureC, Density: d.Density})
		}
	}
	return points, rejected
}

func DeleteDensityPoint(w http.ResponseWriter, r *http.Request) {
	temp, err := strconv.Atoi(mux.Vars(r)["temperature"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid temperature")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "delete density point", err)
		return
	}
	result := db.Where("temperature_c = ?", temp).Delete(&models.DensityPoint{})
	if result.Error != nil {
		writeDBError(w, "delete density point", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportDensityExcel loads a density table from the first sheet of an .xlsx upload:
// header row, then temperature in column A and density in column B.
func ImportDensityExcel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field: "+err.Error())
		return
	}
	defer file.Close()

	points, rejected, err := parseDensityWorkbook(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	db, err := currentDB()
	if err != nil {
		writeDBError(w, "import density", err)
		return
	}
	if err := db.Transaction(func(tx *gorm.DB) error {
		return upsertDensity(tx, points)
	}); err != nil {
		writeDBError(w, "import density", err)
		return
	}

	config.Log.Info("Imported density table",
		zap.String("file", header.Filename),
		zap.Int("imported", len(points)),
		zap.Int("rejected", len(rejected)),
		zap.String("user_id", middleware.GetUserID(r)))

	if rejected == nil {
		rejected = []rowRejection{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"imported": len(points),
		"rejected": rejected,
	})
}

// parseDensityWorkbook reads density rows. Blank rows are skipped; bad rows are
// returned as rejections with their 1-based sheet row numbers.
func parseDensityWorkbook(r io.Reader) ([]models.DensityPoint, []rowRejection, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("not a valid xlsx file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	var points []models.DensityPoint
	var rejected []rowRejection
	seen := make(map[int]bool)

	for i, row := range rows {
		rowNo := i + 1
		if i == 0 {
			continue
		}
		tempCell, densityCell := cell(row, 0), cell(row, 1)
		if tempCell == "" && densityCell == "" {
			continue
		}
		if cpo.SanitizeNumericInput(tempCell, true) == "" {
			rejected = append(rejected, rowRejection{Row: rowNo, Reason: "missing temperature"})
			continue
		}
		temp := int(math.Round(cpo.ParseNumericInput(tempCell, 0)))
		density := cpo.ParseNumericInput(densityCell, 0)

		switch {
		case density <= 0:
			rejected = append(rejected, rowRejection{Row: rowNo, Reason: "density must be positive"})
		case seen[temp]:
			rejected = append(rejected, rowRejection{Row: rowNo, Reason: fmt.Sprintf("duplicate temperature %d", temp)})
		default:
			seen[temp] = true
			points = append(points, models.DensityPoint{TemperatureC: temp, Density: density})
		}
	}
	return points, rejected, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}
