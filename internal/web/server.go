// Package web exposes the study engine as a JSON API.
package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"braindrop/internal/domain"
	"braindrop/internal/session"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	ctrl   *session.Controller
	router *http.ServeMux
}

// NewServer creates and configures a new server around a session
// controller.
func NewServer(ctrl *session.Controller) *Server {
	s := &Server{
		ctrl:   ctrl,
		router: http.NewServeMux(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("/api/health", s.handleHealth)
	s.router.HandleFunc("/api/session", s.handleSession)
	s.router.HandleFunc("/api/session/deck/", s.handleSelectDeck)
	s.router.HandleFunc("/api/session/advance", s.handleAdvance)
	s.router.HandleFunc("/api/session/answer", s.handleAnswer)
	s.router.HandleFunc("/api/decks", s.handleDecks)
	s.router.HandleFunc("/api/decks/", s.handleDeckActions)
	s.router.HandleFunc("/api/settings", s.handleSettings)
	s.router.HandleFunc("/api/stats", s.handleStats)
	s.router.HandleFunc("/api/cosmetics", s.handleCosmetics)
	s.router.HandleFunc("/api/cosmetics/", s.handleCosmeticActions)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.View())
}

func (s *Server) handleSelectDeck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/session/deck/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "deck not found")
		return
	}
	if !s.ctrl.SelectDeck(id) {
		writeError(w, http.StatusNotFound, "deck not found")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.View())
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	s.ctrl.AdvanceLearning()
	writeJSON(w, http.StatusOK, s.ctrl.View())
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Option domain.Option `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	// Out-of-phase or invalid answers are no-ops; the view reports the
	// resulting state either way.
	s.ctrl.SubmitAnswer(req.Option)
	writeJSON(w, http.StatusOK, s.ctrl.View())
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.DeckSummaries())
}

// handleDeckActions dispatches /api/decks/{id} and the per-card
// subroutes /api/decks/{id}/cards/{cardID}/{suspend|reset}.
func (s *Server) handleDeckActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/decks/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		deck, ok := s.ctrl.DeckByID(parts[0])
		if !ok {
			writeError(w, http.StatusNotFound, "deck not found")
			return
		}
		writeJSON(w, http.StatusOK, deck)

	case len(parts) == 4 && parts[1] == "cards":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		s.handleCardAction(w, r, parts[0], parts[2], parts[3])

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleCardAction(w http.ResponseWriter, r *http.Request, deckID, cardID, action string) {
	switch action {
	case "suspend":
		if !s.ctrl.ToggleSuspend(deckID, cardID) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
	case "reset":
		var fields session.ResetFields
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
				writeError(w, http.StatusBadRequest, "malformed request body")
				return
			}
		}
		if !s.ctrl.ResetCardProgress(deckID, cardID, fields) {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	deck, _ := s.ctrl.DeckByID(deckID)
	writeJSON(w, http.StatusOK, deck)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.ctrl.Settings())
	case http.MethodPatch:
		var req struct {
			NewPerDay     *int       `json:"newPerDay"`
			ReviewsPerDay *int       `json:"reviewsPerDay"`
			ExamDate      *time.Time `json:"examDate"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		s.ctrl.UpdateSettings(session.SettingsPatch{
			NewPerDay:     req.NewPerDay,
			ReviewsPerDay: req.ReviewsPerDay,
			ExamDate:      req.ExamDate,
		})
		writeJSON(w, http.StatusOK, s.ctrl.Settings())
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPatch)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.Stats())
}

func (s *Server) handleCosmetics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Catalog []domain.Cosmetic `json:"catalog"`
		Wallet  session.Wallet    `json:"wallet"`
	}{domain.Cosmetics, s.ctrl.CosmeticsView()})
}

// handleCosmeticActions dispatches /api/cosmetics/{id}/{buy|equip}.
func (s *Server) handleCosmeticActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/cosmetics/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id, action := parts[0], parts[1]

	if domain.CosmeticByID(id) == nil {
		writeError(w, http.StatusNotFound, "cosmetic not found")
		return
	}
	switch action {
	case "buy":
		if !s.ctrl.BuyCosmetic(id) {
			writeError(w, http.StatusConflict, "already owned or insufficient gold")
			return
		}
	case "equip":
		if !s.ctrl.EquipCosmetic(id) {
			writeError(w, http.StatusConflict, "cosmetic not owned")
			return
		}
	default:
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, s.ctrl.CosmeticsView())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
