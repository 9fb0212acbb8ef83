package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"p9e.in/qac/config"
	"p9e.in/qac/models"
)

type tankRequest struct {
	TankNo    int      `json:"tankNo"`
	Name      string   `json:"name"`
	HeightM   float64  `json:"heightM"`
	VolumeM3  float64  `json:"volumeM3"`
	DiameterM *float64 `json:"diameterM"`
	IsActive  *bool    `json:"isActive"`
}

func (req tankRequest) apply(t *models.TankGeometry) {
	t.TankNo = req.TankNo
	t.Name = req.Name
	t.HeightM = req.HeightM
	t.VolumeM3 = req.VolumeM3
	t.DiameterM = req.DiameterM
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
}

func tankNoVar(r *http.Request) (int, bool) {
	n, err := strconv.Atoi(mux.Vars(r)["tankNo"])
	return n, err == nil && n > 0
}

func GetAllTanks(w http.ResponseWriter, r *http.Request) {
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "list tanks", err)
		return
	}

	query := db.Order("tank_no")
	if r.URL.Query().Get("active") == "true" {
		query = query.Where("is_active = ?", true)
	}
	var tanks []models.TankGeometry
	if err := query.Find(&tanks).Error; err != nil {
		writeDBError(w, "list tanks", err)
		return
	}
	writeJSON(w, http.StatusOK, tanks)
}

func GetTank(w http.ResponseWriter, r *http.Request) {
	tankNo, ok := tankNoVar(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tank number")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "get tank", err)
		return
	}

	var tank models.TankGeometry
	if err := db.Where("tank_no = ?", tankNo).First(&tank).Error; err != nil {
		writeDBError(w, "get tank", err)
		return
	}
	writeJSON(w, http.StatusOK, tank)
}

func CreateTank(w http.ResponseWriter, r *http.Request) {
	var req tankRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.TankNo <= 0 {
		writeError(w, http.StatusBadRequest, "tankNo must be a positive integer")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "create tank", err)
		return
	}

	tank := models.TankGeometry{IsActive: true}
	req.apply(&tank)
	if err := db.Create(&tank).Error; err != nil {
		writeDBError(w, "create tank", err)
		return
	}
	if !tank.Engine().Usable() {
		config.Log.Warn("tank geometry stored but unusable for volume calculation",
			zap.Int("tank_no", tank.TankNo), zap.Float64("height_m", tank.HeightM), zap.Float64("volume_m3", tank.VolumeM3))
	}
	writeJSON(w, http.StatusCreated, tank)
}

func UpdateTank(w http.ResponseWriter, r *http.Request) {
	tankNo, ok := tankNoVar(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tank number")
		return
	}
	var req tankRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.TankNo == 0 {
		req.TankNo = tankNo
	}
	if req.TankNo < 0 {
		writeError(w, http.StatusBadRequest, "tankNo must be a positive integer")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "update tank", err)
		return
	}

	var tank models.TankGeometry
	if err := db.Where("tank_no = ?", tankNo).First(&tank).Error; err != nil {
		writeDBError(w, "update tank", err)
		return
	}
	req.apply(&tank)
	if err := db.Save(&tank).Error; err != nil {
		writeDBError(w, "update tank", err)
		return
	}
	writeJSON(w, http.StatusOK, tank)
}

func DeleteTank(w http.ResponseWriter, r *http.Request) {
	tankNo, ok := tankNoVar(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid tank number")
		return
	}
	db, err := currentDB()
	if err != nil {
		writeDBError(w, "delete tank", err)
		return
	}

	result := db.Where("tank_no = ?", tankNo).Delete(&models.TankGeometry{})
	if result.Error != nil {
		writeDBError(w, "delete tank", result.Error)
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "record not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
