package stratserver

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/stratboard/stratboard/pkg/api"
	"github.com/stratboard/stratboard/pkg/assistant"
)

// MaxChatMessageSizeBytes limits a single submitted message (64KB).
const MaxChatMessageSizeBytes = 65536

// ChatSubmitRequest is the request payload for one chat turn.
type ChatSubmitRequest struct {
	Message string `json:"message"`

	// Page is the dashboard route the user is on, used for context
	// enrichment (e.g. "/vision-mission").
	Page string `json:"page,omitempty"`
}

func (s *Server) jsonChatSubmit(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	var request ChatSubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, MaxChatMessageSizeBytes)).Decode(&request); err != nil {
		log.WithError(err).Error("error parsing chat request")
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	orchestrator := s.orchestratorFor(user, req.UserAgent())
	result, err := orchestrator.Submit(req.Context(), request.Message, request.Page)
	if err != nil {
		chatTurnsMetric.WithLabelValues("rejected").Inc()
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			failureResponse(w, http.StatusBadRequest, "Message is required")
		case errors.Is(err, assistant.ErrTurnInProgress), errors.Is(err, assistant.ErrConfirmationPending):
			failureResponse(w, http.StatusConflict, err.Error())
		default:
			log.WithError(err).Error("chat turn failed")
			failureResponse(w, http.StatusInternalServerError, "Failed to process message")
		}
		return
	}

	chatTurnsMetric.WithLabelValues(turnOutcome(result)).Inc()
	if result.Action != "" {
		aiActionsMetric.WithLabelValues(string(result.Action), turnOutcome(result)).Inc()
	}

	api.RespondWithJSON(http.StatusOK, w, result)
}

func (s *Server) jsonChatConfirm(w http.ResponseWriter, req *http.Request) {
	s.decidePendingAction(w, req, true)
}

func (s *Server) jsonChatReject(w http.ResponseWriter, req *http.Request) {
	s.decidePendingAction(w, req, false)
}

func (s *Server) decidePendingAction(w http.ResponseWriter, req *http.Request, confirm bool) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	orchestrator := s.orchestratorFor(user, req.UserAgent())

	var status *assistant.Status
	var err error
	if confirm {
		status, err = orchestrator.Confirm(req.Context())
	} else {
		status, err = orchestrator.Reject(req.Context())
	}
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrNoPendingAction):
			failureResponse(w, http.StatusConflict, "No action is awaiting confirmation")
		case errors.Is(err, assistant.ErrTurnInProgress):
			failureResponse(w, http.StatusConflict, err.Error())
		default:
			log.WithError(err).Error("pending action decision failed")
			failureResponse(w, http.StatusInternalServerError, "Failed to process decision")
		}
		return
	}

	decision := "reject"
	if confirm {
		decision = "confirm"
	}
	chatDecisionsMetric.WithLabelValues(decision, status.Type).Inc()

	api.RespondWithJSON(http.StatusOK, w, status)
}

func (s *Server) jsonChatNewConversation(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	orchestrator := s.orchestratorFor(user, req.UserAgent())
	if err := orchestrator.StartNewConversation(req.Context()); err != nil {
		if errors.Is(err, assistant.ErrTurnInProgress) {
			failureResponse(w, http.StatusConflict, err.Error())
			return
		}
		log.WithError(err).Error("could not start new conversation")
		failureResponse(w, http.StatusInternalServerError, "Failed to start new conversation")
		return
	}

	api.RespondWithJSON(http.StatusCreated, w, map[string]interface{}{"status": "OK"})
}

func (s *Server) jsonChatMessages(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	orchestrator := s.orchestratorFor(user, req.UserAgent())
	messages, err := orchestrator.Messages(req.Context())
	if err != nil {
		if errors.Is(err, assistant.ErrTurnInProgress) {
			failureResponse(w, http.StatusConflict, err.Error())
			return
		}
		log.WithError(err).Error("could not load conversation messages")
		failureResponse(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	response := map[string]interface{}{"messages": messages}
	if pending := orchestrator.PendingConfirmation(); pending != nil {
		response["pending_confirmation"] = pending
	}

	api.RespondWithJSON(http.StatusOK, w, response)
}

func turnOutcome(result *assistant.TurnResult) string {
	switch {
	case result.Confirmation != nil:
		return "pending"
	case result.Status == nil:
		return "reply"
	default:
		return result.Status.Type
	}
}
