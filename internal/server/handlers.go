package server

import (
	"net/http"
	"strconv"

	"github.com/bobmcallan/basket/internal/models"
	"github.com/bobmcallan/basket/internal/services/portfolio"
)

// --- Basket handlers ---

// handleBasketsRoot serves GET (list valuations) and POST (create) on /api/baskets.
func (s *Server) handleBasketsRoot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodGet {
		list, err := s.app.BasketService.ListBasketValuations(r.Context())
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"baskets": list,
		})
		return
	}

	var req models.CreateBasketRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	basket, err := s.app.BasketService.CreateBasket(r.Context(), req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"basket":    basket,
		"valuation": portfolio.ValueBasket(basket),
	})
}

// handleBasket serves GET (valuation, ?refresh=true re-prices first) and DELETE.
func (s *Server) handleBasket(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodDelete) {
		return
	}

	if r.Method == http.MethodDelete {
		if err := s.app.BasketService.DeleteBasket(r.Context(), id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	var (
		v   *models.BasketValuation
		err error
	)
	if refresh {
		v, err = s.app.BasketService.RefreshPrices(r.Context(), id)
	} else {
		v, err = s.app.BasketService.GetBasketValuation(r.Context(), id)
	}
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleBasketExit(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	v, err := s.app.BasketService.ExitBasket(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleBasketRefresh(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	v, err := s.app.BasketService.RefreshPrices(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleBasketChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	png, err := s.app.BasketService.RenderBasketChart(r.Context(), id)
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// --- Portfolio and calculators ---

func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	summary, err := s.app.BasketService.GetPortfolioSummary(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}

	// Cashflows are only included on request
	if include, _ := strconv.ParseBool(r.URL.Query().Get("cashflows")); !include {
		summary.CashFlows = nil
	}
	WriteJSON(w, http.StatusOK, summary)
}

// allocateRequest previews an allocation either at live prices for Symbols
// or at caller supplied Candidates prices. Candidates win when both are set.
type allocateRequest struct {
	Amount     float64                      `json:"amount"`
	Symbols    []string                     `json:"symbols,omitempty"`
	Candidates []models.AllocationCandidate `json:"candidates,omitempty"`
}

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req allocateRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if len(req.Candidates) > 0 {
		if err := models.ValidateAllocation(req.Amount, len(req.Candidates)); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, portfolio.PlanAllocation(req.Amount, req.Candidates))
		return
	}

	plan, err := s.app.BasketService.PreviewAllocation(r.Context(), req.Amount, req.Symbols)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, plan)
}

type xirrRequest struct {
	CashFlows []models.CashFlowInput `json:"cashflows"`
}

type xirrResponse struct {
	XIRR      float64          `json:"xirr"`
	Direction models.Direction `json:"direction"`
	Formatted string           `json:"formatted"`
	Count     int              `json:"count"`
}

func (s *Server) handleXIRR(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req xirrRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	flows, err := models.ParseCashFlows(req.CashFlows)
	if err != nil {
		WriteErrorWithCode(w, http.StatusBadRequest, err.Error(), CodeInvalidRequest)
		return
	}

	rate := portfolio.ComputeXIRR(flows)
	WriteJSON(w, http.StatusOK, xirrResponse{
		XIRR:      rate,
		Direction: models.Classify(rate),
		Formatted: models.FormatSignedPercent(rate),
		Count:     len(flows),
	})
}

// --- Feed ---

func (s *Server) handleFeedWS(w http.ResponseWriter, r *http.Request) {
	if s.app.Feed == nil {
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "Live feed unavailable", CodeInternal)
		return
	}
	s.app.Feed.ServeWS(w, r)
}
