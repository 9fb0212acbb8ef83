package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"p9e.in/qac/models"
	"p9e.in/qac/pkg/cpo"
)

func TestCpoReadingRequestValidate(t *testing.T) {
	date := models.JSONTime(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name    string
		req     cpoReadingRequest
		wantErr string
		wantLen int
	}{
		{
			name:    "missing date",
			req:     cpoReadingRequest{Tanks: []cpo.ReadingInput{{TankNo: 1}}},
			wantErr: "readingDate is required",
		},
		{
			name:    "no tanks",
			req:     cpoReadingRequest{ReadingDate: date},
			wantErr: "at least one tank reading is required",
		},
		{
			name: "duplicate tank",
			req: cpoReadingRequest{ReadingDate: date, Tanks: []cpo.ReadingInput{
				{TankNo: 2, OilLevel: 10}, {TankNo: "2", OilLevel: 20},
			}},
			wantErr: "tank 2 appears more than once",
		},
		{
			name: "repeated invalid tank numbers are allowed",
			req: cpoReadingRequest{ReadingDate: date, Tanks: []cpo.ReadingInput{
				{TankNo: nil}, {TankNo: "abc"}, {TankNo: 1, OilLevel: "1,250.5"},
			}},
			wantLen: 3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings, err := tt.req.validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Len(t, readings, tt.wantLen)
		})
	}
}

func TestCpoReadingRequestApplyHeader(t *testing.T) {
	var reading models.CpoReading
	cpoReadingRequest{Shift: "Night", Location: "Jetty"}.applyHeader(&reading)
	assert.Equal(t, "Night", reading.Shift)
	assert.Equal(t, "Jetty", reading.Location)
	assert.NotNil(t, reading.Attachments)
	assert.Empty(t, reading.Attachments)
}

func TestCreateCpoReading(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{"tanks":`, http.StatusBadRequest},
		{"missing date", `{"tanks":[{"tank_no":1,"oil_level":100,"temperature":30}]}`, http.StatusBadRequest},
		{"bad date", `{"readingDate":"yesterday","tanks":[{"tank_no":1}]}`, http.StatusBadRequest},
		{"duplicate tanks", `{"readingDate":"2026-10-01","tanks":[{"tank_no":1},{"tank_no":1}]}`, http.StatusBadRequest},
		{"valid without database", `{"readingDate":"2026-10-01","tanks":[{"tank_no":1,"oil_level":"250","temperature":"30"}]}`, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			CreateCpoReading(rec, httptest.NewRequest(http.MethodPost, "/api/v1/qac/cpo-readings", strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestReadingHandlers_BadID(t *testing.T) {
	handlers := map[string]http.HandlerFunc{
		"get":         GetCpoReading,
		"update":      UpdateCpoReading,
		"recalculate": RecalculateCpoReading,
		"delete":      DeleteCpoReading,
	}
	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/qac/cpo-readings/42", strings.NewReader(`{}`))
			req = mux.SetURLVars(req, map[string]string{"id": "42"})
			rec := httptest.NewRecorder()
			h(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRecalculateCpoReading_WithoutDatabase(t *testing.T) {
	id := uuid.NewString()
	req := mux.SetURLVars(httptest.NewRequest(http.MethodPost, "/", nil), map[string]string{"id": id})
	rec := httptest.NewRecorder()
	RecalculateCpoReading(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseReadingFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?from=2026-10-01&to=2026-10-03&location=Jetty", nil)
	f, err := parseReadingFilter(req)
	require.NoError(t, err)
	require.NotNil(t, f.From)
	require.NotNil(t, f.To)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), *f.From)
	assert.Equal(t, time.Date(2026, 10, 4, 0, 0, 0, 0, time.UTC), *f.To, "to is inclusive")
	assert.Equal(t, "Jetty", f.Location)

	_, err = parseReadingFilter(httptest.NewRequest(http.MethodGet, "/?from=01-10-2026", nil))
	assert.Error(t, err)
}

func TestGetAllCpoReadings_BadFilter(t *testing.T) {
	rec := httptest.NewRecorder()
	GetAllCpoReadings(rec, httptest.NewRequest(http.MethodGet, "/api/v1/qac/cpo-readings?to=tomorrow", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadingFilter_CountDoesNotLeakIntoFind(t *testing.T) {
	db, err := gorm.Open(postgres.Open("host=localhost user=qac dbname=qac sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	q := readingFilter{From: &from, Location: "Jetty"}.apply(db)

	var total int64
	count := q.Session(&gorm.Session{}).Count(&total)
	require.NoError(t, count.Error)
	assert.Contains(t, strings.ToLower(count.Statement.SQL.String()), "count(")

	find := q.Session(&gorm.Session{}).Order("reading_date DESC").Limit(10).Find(&[]models.CpoReading{})
	require.NoError(t, find.Error)
	sql := find.Statement.SQL.String()
	assert.NotContains(t, strings.ToLower(sql), "count(")
	assert.Contains(t, sql, "reading_date >=")
	assert.Contains(t, sql, "location =")
	assert.Equal(t, 1, strings.Count(sql, "location ="))
}
