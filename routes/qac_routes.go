package routes

import (
	"github.com/gorilla/mux"
	"p9e.in/qac/handlers"
	"p9e.in/qac/models"
)

var referenceEditors = []string{models.RoleSuperAdmin, models.RoleQAManager}

// RegisterQACRoutes registers the QA/CPO tank farm endpoints under /qac
func RegisterQACRoutes(api *mux.Router) {
	qac := api.PathPrefix("/qac").Subrouter()

	// Stateless calculation and input helpers
	qac.HandleFunc("/cpo/calculate", handlers.CalculateCPO).Methods("POST")
	qac.HandleFunc("/numeric/sanitize", handlers.SanitizeNumeric).Methods("POST")

	// Tank geometry
	registerCRUDRoutes(qac, "/tanks", "tankNo", crudHandlers{
		getAll:      handlers.GetAllTanks,
		create:      handlers.CreateTank,
		getOne:      handlers.GetTank,
		update:      handlers.UpdateTank,
		delete:      handlers.DeleteTank,
		writeRoles:  referenceEditors,
		deleteRoles: referenceEditors,
	})

	// Density table
	qac.HandleFunc("/density", handlers.GetDensityTable).Methods("GET")
	qac.Handle("/density", guard(referenceEditors, handlers.UpsertDensityPoints)).Methods("POST")
	qac.Handle("/density/import", guard(referenceEditors, handlers.ImportDensityExcel)).Methods("POST")
	qac.Handle("/density/{temperature}", guard(referenceEditors, handlers.DeleteDensityPoint)).Methods("DELETE")

	// CPO readings
	registerCRUDRoutes(qac, "/cpo-readings", "id", crudHandlers{
		getAll:      handlers.GetAllCpoReadings,
		create:      handlers.CreateCpoReading,
		getOne:      handlers.GetCpoReading,
		update:      handlers.UpdateCpoReading,
		delete:      handlers.DeleteCpoReading,
		deleteRoles: referenceEditors,
	})
	qac.HandleFunc("/cpo-readings/{id}/recalculate", handlers.RecalculateCpoReading).Methods("POST")
	qac.HandleFunc("/cpo-readings/{id}/export", handlers.ExportCpoReading).Methods("GET")
}
