package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"p9e.in/qac/config"
	"p9e.in/qac/middleware"
	"p9e.in/qac/models"
	"p9e.in/qac/pkg/cpo"
)

type cpoReadingRequest struct {
	ReadingDate models.JSONTime    `json:"readingDate"`
	Shift       string             `json:"shift"`
	Location    string             `json:"location"`
	Notes       string             `json:"notes"`
	Attachments []string           `json:"attachments"`
	Tanks       []cpo.ReadingInput `json:"tanks"`
}

// validate normalizes the tank inputs and checks the header.
func (req cpoReadingRequest) validate() ([]cpo.TankReading, error) {
	if req.ReadingDate.IsZero() {
		return nil, fmt.Errorf("readingDate is required")
	}
	if len(req.Tanks) == 0 {
		return nil, fmt.Errorf("at least one tank reading is required")
	}
	readings := cpo.NormalizeAll(req.Tanks)
	if tankNo, dup := duplicateTankNo(readings); dup {
		return nil, fmt.Errorf("tank %d appears more than once", tankNo)
	}
	return readings, nil
}

func (req cpoReadingRequest) applyHeader(c *models.CpoReading) {
	c.ReadingDate = req.ReadingDate
	c.Shift = req.Shift
	c.Location = req.Location
	c.Notes = req.Notes
	c.Attachments = pq.StringArray(req.Attachments)
	if c.Attachments == nil {
		c.Attachments = pq.StringArray{}
	}
}

// calculateReading runs the engine over the reading's tank rows and stores the results on it.
func calculateReading(db *gorm.DB, reading *models.CpoReading) error {
	geometry, err := loadGeometry(db)
	if err != nil {
		return err
	}
	density, err := loadDensity(db)
	if err != nil {
		return err
	}

	engine := cpo.NewEngine()
	readings := reading.EngineReadings()
	vol := engine.ComputeVolumes(readings, geometry, density)
	quality := engine.ComputeQualityAverages(readings)

	if len(vol.Skipped) > 0 {
		config.Log.Debug("tanks skipped in calculation",
			zap.String("reading_id", reading.ID.String()),
			zap.Any("skipped", vol.Skipped))
	}
	return reading.ApplyResults(vol, quality)
}

func readingID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	return id, err == nil
}

func findReading(db *gorm.DB, id uuid.UUID) (models.CpoReading, error) {
	var reading models.CpoReading
	err := db.Preload("Tanks", func(db *gorm.DB) *gorm.DB {
		return db.Order("tank_no")
	}).Where("id = ?", id).First(&reading).Error
	return reading, err
}

// readingFilter holds the list query parameters.
type readingFilter struct {
	From     *time.Time
	To       *time.Time
	Location string
}

// parseReadingFilter reads from/to (YYYY-MM-DD, to inclusive) and location.
func parseReadingFilter(r *http.Request) (readingFilter, error) {
	var f readingFilter
	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return f, fmt.Errorf("invalid from date %q", from)
		}
		f.From = &t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return f, fmt.Errorf("invalid to date %q", to)
		}
		end := t.AddDate(0, 0, 1)
		f.To = &end
	}
	f.Location = r.URL.Query().Get("location")
	return f, nil
}

func (f readingFilter) apply(db *gorm.DB) *gorm.DB {
	q := db.Model(&models.CpoReading{})
	if f.From != nil {
		q = q.Where("reading_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("reading_date < ?", *f.To)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	return q
}

func GetAllCpoReadings(w http.ResponseWriter, r *http.Request) {
	page, limit, offset := pagination(r)
	filter, err := parseReadingFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "list cpo readings", err)
		return
	}
	q := filter.apply(db)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		writeDBError(w, "count cpo readings", err)
		return
	}

	var readings []models.CpoReading
	if err := q.Session(&gorm.Session{}).Preload("Tanks", func(db *gorm.DB) *gorm.DB {
		return db.Order("tank_no")
	}).Order("reading_date DESC").Limit(limit).Offset(offset).Find(&readings).Error; err != nil {
		writeDBError(w, "list cpo readings", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  readings,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func GetCpoReading(w http.ResponseWriter, r *http.Request) {
	id, ok := readingID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "get cpo reading", err)
		return
	}
	reading, err := findReading(db, id)
	if err != nil {
		writeDBError(w, "get cpo reading", err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func CreateCpoReading(w http.ResponseWriter, r *http.Request) {
	var req cpoReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	tanks, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "create cpo reading", err)
		return
	}

	reading := models.CpoReading{
		ID:             uuid.New(),
		RecordedByName: middleware.GetUserName(r),
		Tanks:          models.NewTankRows(tanks),
	}
	if uid, err := uuid.Parse(middleware.GetUserID(r)); err == nil {
		reading.RecordedByID = &uid
	}
	req.applyHeader(&reading)

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := calculateReading(tx, &reading); err != nil {
			return err
		}
		return tx.Create(&reading).Error
	})
	if err != nil {
		writeDBError(w, "create cpo reading", err)
		return
	}

	config.Log.Info("CPO reading recorded",
		zap.String("reading_id", reading.ID.String()),
		zap.Int("tanks", len(reading.Tanks)),
		zap.Float64("total_tons", reading.TotalTons))
	writeJSON(w, http.StatusCreated, reading)
}

func UpdateCpoReading(w http.ResponseWriter, r *http.Request) {
	id, ok := readingID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req cpoReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	tanks, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "update cpo reading", err)
		return
	}

	var reading models.CpoReading
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&reading).Error; err != nil {
			return err
		}
		req.applyHeader(&reading)
		reading.Tanks = models.NewTankRows(tanks)
		for i := range reading.Tanks {
			reading.Tanks[i].CpoReadingID = reading.ID
		}
		if err := calculateReading(tx, &reading); err != nil {
			return err
		}
		if err := tx.Where("cpo_reading_id = ?", reading.ID).Delete(&models.CpoTankReading{}).Error; err != nil {
			return err
		}
		if err := tx.Omit("Tanks").Save(&reading).Error; err != nil {
			return err
		}
		return tx.Create(&reading.Tanks).Error
	})
	if err != nil {
		writeDBError(w, "update cpo reading", err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// RecalculateCpoReading recomputes a stored reading against the current reference tables.
func RecalculateCpoReading(w http.ResponseWriter, r *http.Request) {
	id, ok := readingID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "recalculate cpo reading", err)
		return
	}

	var reading models.CpoReading
	var before float64
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		if reading, err = findReading(tx, id); err != nil {
			return err
		}
		before = reading.TotalTons
		if err := calculateReading(tx, &reading); err != nil {
			return err
		}
		for _, t := range reading.Tanks {
			if err := tx.Model(&models.CpoTankReading{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
				"density_used": t.DensityUsed,
				"weight_tons":  t.WeightTons,
			}).Error; err != nil {
				return err
			}
		}
		return tx.Omit("Tanks").Save(&reading).Error
	})
	if err != nil {
		writeDBError(w, "recalculate cpo reading", err)
		return
	}

	config.Log.Info("CPO reading recalculated",
		zap.String("reading_id", reading.ID.String()),
		zap.Float64("total_before", before),
		zap.Float64("total_after", reading.TotalTons))
	writeJSON(w, http.StatusOK, reading)
}

func DeleteCpoReading(w http.ResponseWriter, r *http.Request) {
	id, ok := readingID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "delete cpo reading", err)
		return
	}
	result := db.Where("id = ?", id).Delete(&models.CpoReading{})
	if result.Error != nil {
		writeDBError(w, "delete cpo reading", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
