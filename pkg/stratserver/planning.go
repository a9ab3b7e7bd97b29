package stratserver

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/stratboard/stratboard/pkg/api"
	"github.com/stratboard/stratboard/pkg/db/models"
)

const maxOKRResults = 5

// Read views backing the dashboard screens. These are the same slices the
// context assembler feeds into the system prompt.

func (s *Server) jsonVisionMission(w http.ResponseWriter, req *http.Request) {
	rows, err := s.store.CurrentVisionMission(req.Context())
	if err != nil {
		log.WithError(err).Error("could not load vision/mission")
		failureResponse(w, http.StatusInternalServerError, "Failed to load vision/mission")
		return
	}

	response := map[string]interface{}{}
	for _, row := range rows {
		switch row.Type {
		case models.VisionMissionTypeVision:
			response["vision"] = row
		case models.VisionMissionTypeMission:
			response["mission"] = row
		}
	}
	api.RespondWithJSON(http.StatusOK, w, response)
}

func (s *Server) jsonOKRs(w http.ResponseWriter, req *http.Request) {
	rows, err := s.store.ActiveObjectives(req.Context(), maxOKRResults)
	if err != nil {
		log.WithError(err).Error("could not load objectives")
		failureResponse(w, http.StatusInternalServerError, "Failed to load objectives")
		return
	}
	api.RespondWithJSON(http.StatusOK, w, rows)
}

func (s *Server) jsonSwot(w http.ResponseWriter, req *http.Request) {
	rows, err := s.store.SwotItems(req.Context())
	if err != nil {
		log.WithError(err).Error("could not load SWOT items")
		failureResponse(w, http.StatusInternalServerError, "Failed to load SWOT items")
		return
	}
	api.RespondWithJSON(http.StatusOK, w, rows)
}

func (s *Server) jsonCanvas(w http.ResponseWriter, req *http.Request) {
	rows, err := s.store.CanvasBlocks(req.Context())
	if err != nil {
		log.WithError(err).Error("could not load canvas blocks")
		failureResponse(w, http.StatusInternalServerError, "Failed to load canvas blocks")
		return
	}
	api.RespondWithJSON(http.StatusOK, w, rows)
}
