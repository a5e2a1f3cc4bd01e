package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Backland-Labs/dailyagi/internal/agentapi"
	"github.com/Backland-Labs/dailyagi/internal/logger"
	"github.com/Backland-Labs/dailyagi/internal/stream"
	"github.com/Backland-Labs/dailyagi/internal/wallet"
)

const (
	contentTypeJSON = "application/json"

	// maxUploadSize bounds a fridge photo upload.
	maxUploadSize = 10 << 20

	startContent = "dailyAGI is processing your request…"
)

// agentHandler streams the answer to one chat message as "data:" frames:
// start, cumulative progress, then message and end, or a single error frame.
func (s *Server) agentHandler(w http.ResponseWriter, r *http.Request) {
	var req stream.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Wallet) == "" {
		s.respondWithError(w, http.StatusBadRequest, "Wallet address is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondWithError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	log := logger.WithFields(map[string]interface{}{
		"wallet":      wallet.FormatAddress(req.Wallet, 4),
		"message_len": len(req.Message),
	})
	log.Info("Processing agent request")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	fw := &frameWriter{w: w, flusher: flusher, delay: s.frameDelay}

	if err := fw.write(ctx, stream.KindStart, startContent); err != nil {
		log.WithField("error", err.Error()).Debug("Client went away before start frame")
		return
	}

	reply, intent, err := s.agent.Run(ctx, req.Message, req.Wallet, func(step string) error {
		return fw.progress(ctx, step)
	})
	if err != nil {
		if ctx.Err() != nil {
			log.Info("Client disconnected mid-stream")
			return
		}
		s.metrics.StreamFailed()
		log.WithField("error", err.Error()).Error("Agent run failed")
		_ = fw.write(ctx, stream.KindError, "An error occurred: "+err.Error())
		return
	}

	if err := fw.write(ctx, stream.KindMessage, reply); err != nil {
		return
	}
	s.metrics.StreamServed()
	s.store.RecordUsage(req.Wallet, intent, false)
	_ = fw.write(ctx, stream.KindEnd, "")
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"agent":   agentID,
		"version": agentVersion,
		"agents": map[string]string{
			"reminders": "active",
			"spending":  "active",
			"grocery":   "active",
		},
		"metrics":   s.metrics.Snapshot(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) listRemindersHandler(w http.ResponseWriter, r *http.Request) {
	address, ok := s.requireAddress(w, r.URL.Query().Get("address"))
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": s.store.Reminders(address),
	})
}

func (s *Server) createReminderHandler(w http.ResponseWriter, r *http.Request) {
	var in agentapi.NewReminder
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	address, ok := s.requireAddress(w, in.Address)
	if !ok {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		s.respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}

	reminder := s.store.AddReminder(address, in.Title, in.Description, in.Datetime)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"reminder": reminder})
}

func (s *Server) deleteReminderHandler(w http.ResponseWriter, r *http.Request) {
	address, ok := s.requireAddress(w, r.URL.Query().Get("address"))
	if !ok {
		return
	}
	id := r.PathValue("id")
	if !s.store.DeleteReminder(address, id) {
		s.respondWithError(w, http.StatusNotFound, "Reminder not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": id})
}

func (s *Server) spendingHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Address   string             `json:"address"`
		TimeRange agentapi.TimeRange `json:"timeRange"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	address, ok := s.requireAddress(w, in.Address)
	if !ok {
		return
	}
	if in.TimeRange == "" {
		in.TimeRange = agentapi.Range30Days
	}
	if !in.TimeRange.Valid() {
		s.respondWithError(w, http.StatusBadRequest, "timeRange must be one of 7d, 30d, 90d")
		return
	}

	s.respondJSON(w, http.StatusOK, s.store.Spending(address, in.TimeRange))
}

func (s *Server) groceryUploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	address, ok := s.requireAddress(w, r.FormValue("address"))
	if !ok {
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Failed to read image")
		return
	}

	s.respondJSON(w, http.StatusOK, s.store.GroceryFromImage(address, header.Filename, data))
}

func (s *Server) groceryGetHandler(w http.ResponseWriter, r *http.Request) {
	list, ok := s.store.Grocery(r.PathValue("cid"))
	if !ok {
		s.respondWithError(w, http.StatusNotFound, "Grocery list not found")
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) premiumHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAddress(w, r.PathValue("address")); !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, agentapi.PremiumStatus{Premium: false, StakedAmount: "0"})
}

// runAgentHandler invokes one sub-agent directly, bypassing intent detection.
func (s *Server) runAgentHandler(w http.ResponseWriter, r *http.Request) {
	var in agentapi.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	address, ok := s.requireAddress(w, in.Address)
	if !ok {
		return
	}

	param := func(key string) string {
		v, _ := in.Params[key].(string)
		return v
	}

	var result interface{}
	intent := Intent(strings.ToLower(in.AgentType))
	switch intent {
	case IntentReminders:
		switch param("action") {
		case "list":
			result = s.store.Reminders(address)
		case "delete":
			result = map[string]interface{}{"success": s.store.DeleteReminder(address, param("id")), "id": param("id")}
		case "", "create":
			result = s.store.AddReminder(address, param("title"), param("description"), param("datetime"))
		default:
			s.respondWithError(w, http.StatusBadRequest, "Unknown action: "+param("action"))
			return
		}
	case IntentSpending:
		tr := agentapi.TimeRange(param("timeRange"))
		if !tr.Valid() {
			tr = agentapi.Range30Days
		}
		result = s.store.Spending(address, tr)
	case IntentGrocery:
		list, found := s.store.Grocery(param("cid"))
		if !found {
			s.respondWithError(w, http.StatusBadRequest, "Missing image_data or cid parameter")
			return
		}
		result = list
	default:
		s.respondWithError(w, http.StatusBadRequest, "Unknown agent type: "+in.AgentType)
		return
	}

	s.store.RecordUsage(address, intent, false)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"agent":           string(intent),
		"oml_fingerprint": agentID + "_v1",
		"result":          result,
	})
}

// requireAddress validates address and answers 400 when it is malformed.
func (s *Server) requireAddress(w http.ResponseWriter, address string) (string, bool) {
	if err := wallet.ValidateAddress(address); err != nil {
		msg := "address is required"
		if address != "" && errors.Is(err, wallet.ErrInvalidAddress) {
			msg = "invalid wallet address"
		}
		s.respondWithError(w, http.StatusBadRequest, msg)
		return "", false
	}
	return address, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Errorf("Failed to encode response: %v", err)
	}
}

// respondWithError sends {"detail": message}, the error shape agentapi reads.
func (s *Server) respondWithError(w http.ResponseWriter, status int, message string) {
	logger.WithFields(map[string]interface{}{
		"status_code":   status,
		"error_message": message,
	}).Debug("Sending error response")

	s.respondJSON(w, status, map[string]string{"detail": message})
}
