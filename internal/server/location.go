package server

import (
	"net/http"

	"contestatii/pkg/types"
)

type locationResponse struct {
	Status  string                      `json:"status"`
	Message string                      `json:"message"`
	Data    *types.LocationPreselection `json:"data"`
}

// handleLocationPreselection validates the location the user works in and
// echoes it back; nothing is stored.
func (s *Service) handleLocationPreselection(w http.ResponseWriter, r *http.Request) {
	var req types.LocationPreselection
	if !s.decodeAndValidate(w, r, &req, "Județul este obligatoriu") {
		return
	}

	if name, ok := types.CountyName(req.County); ok {
		req.CountyName = name
	}

	s.writeJSON(w, http.StatusOK, locationResponse{
		Status:  "success",
		Message: "Datele de locație au fost validate cu succes",
		Data:    &req,
	})
}

func (s *Service) handleCounties(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, types.Counties)
}
