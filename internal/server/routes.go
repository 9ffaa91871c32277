package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/basket/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Baskets
	mux.HandleFunc("/api/baskets/", s.routeBaskets)
	mux.HandleFunc("/api/baskets", s.handleBasketsRoot)

	// Portfolio and calculators
	mux.HandleFunc("/api/portfolio", s.handlePortfolioSummary)
	mux.HandleFunc("/api/allocate", s.handleAllocate)
	mux.HandleFunc("/api/xirr", s.handleXIRR)

	// Live feed
	mux.HandleFunc("/api/ws", s.handleFeedWS)
}

// routeBaskets dispatches /api/baskets/{id} and /api/baskets/{id}/{action}.
func (s *Server) routeBaskets(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/baskets/"), "/")
	if path == "" {
		s.handleBasketsRoot(w, r)
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch action {
	case "":
		s.handleBasket(w, r, id)
	case "exit":
		s.handleBasketExit(w, r, id)
	case "refresh":
		s.handleBasketRefresh(w, r, id)
	case "chart":
		s.handleBasketChart(w, r, id)
	default:
		WriteErrorWithCode(w, http.StatusNotFound, "Unknown basket action: "+action, CodeNotFound)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, common.GetVersionInfo())
}
