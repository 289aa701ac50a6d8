package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/estimate"
)

type parseRequest struct {
	CompanyID  int64  `json:"company_id"`
	Transcript string `json:"transcript"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := s.parse.Parse(r.Context(), req.CompanyID, req.Transcript)
	if err != nil {
		s.error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.json(w, http.StatusOK, resp)
}

type transcribeResponse struct {
	Transcript string `json:"transcript"`
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if s.transcriber == nil {
		s.error(w, r, http.StatusServiceUnavailable, "transcription is not configured")
		return
	}

	audio, err := io.ReadAll(io.LimitReader(r.Body, maxAudioBytes+1))
	if err != nil {
		s.error(w, r, http.StatusBadRequest, "read audio body")
		return
	}
	if len(audio) == 0 {
		s.error(w, r, http.StatusBadRequest, "empty audio body")
		return
	}
	if len(audio) > maxAudioBytes {
		s.error(w, r, http.StatusRequestEntityTooLarge, "audio exceeds the upload limit")
		return
	}

	start := time.Now()
	text, err := s.transcriber.Transcribe(r.Context(), audio, r.Header.Get("Content-Type"))
	s.metrics.TranscribeDuration.Record(r.Context(), time.Since(start).Seconds())
	if err != nil {
		s.log.ErrorContext(r.Context(), "transcription failed", "error", err)
		s.error(w, r, http.StatusBadGateway, "transcription failed")
		return
	}
	s.json(w, http.StatusOK, transcribeResponse{Transcript: text})
}

func (s *Server) handleCreateEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimate.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	e, err := s.estimates.CreateFromParse(r.Context(), req)
	if err != nil {
		s.error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.metrics.EstimatesCreated.Add(r.Context(), 1)
	s.json(w, http.StatusCreated, e)
}

func (s *Server) handleListEstimates(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil || companyID <= 0 {
		s.error(w, r, http.StatusBadRequest, "company_id query parameter is required")
		return
	}

	list, err := s.estimates.ListByCompany(r.Context(), companyID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "list estimates failed", "error", err)
		s.error(w, r, http.StatusInternalServerError, "list estimates")
		return
	}
	if list == nil {
		list = []estimate.Estimate{}
	}
	s.json(w, http.StatusOK, list)
}

func (s *Server) handleGetEstimate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, r, http.StatusBadRequest, "invalid estimate id")
		return
	}

	e, err := s.estimates.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, estimate.ErrNotFound) {
			s.error(w, r, http.StatusNotFound, "estimate not found")
			return
		}
		s.log.ErrorContext(r.Context(), "get estimate failed", "error", err)
		s.error(w, r, http.StatusInternalServerError, "get estimate")
		return
	}
	s.json(w, http.StatusOK, e)
}

type updateStatusRequest struct {
	Status estimate.Status `json:"status"`
}

func (s *Server) handleUpdateEstimateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, r, http.StatusBadRequest, "invalid estimate id")
		return
	}
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.estimates.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, estimate.ErrNotFound) {
			s.error(w, r, http.StatusNotFound, "estimate not found")
			return
		}
		s.error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListPriceItems(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.ParseInt(r.URL.Query().Get("company_id"), 10, 64)
	if err != nil || companyID <= 0 {
		s.error(w, r, http.StatusBadRequest, "company_id query parameter is required")
		return
	}

	items, err := s.catalog.ListActive(r.Context(), companyID)
	if err != nil {
		s.log.ErrorContext(r.Context(), "list price items failed", "error", err)
		s.error(w, r, http.StatusInternalServerError, "list price items")
		return
	}
	if items == nil {
		items = []catalog.PriceItem{}
	}
	s.json(w, http.StatusOK, items)
}

func (s *Server) handleCreatePriceItem(w http.ResponseWriter, r *http.Request) {
	var item catalog.PriceItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		s.error(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if item.CompanyID <= 0 {
		s.error(w, r, http.StatusBadRequest, "company_id is required")
		return
	}
	item.IsActive = true

	if err := s.catalog.Create(r.Context(), &item); err != nil {
		s.error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.json(w, http.StatusCreated, item)
}

func (s *Server) handleUpdatePriceItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.error(w, r, http.StatusBadRequest, "invalid price item id")
		return
	}
	var item catalog.PriceItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		s.error(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}
	item.ID = id

	if err := s.catalog.Update(r.Context(), &item); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.error(w, r, http.StatusNotFound, "price item not found")
			return
		}
		s.error(w, r, http.StatusBadRequest, err.Error())
		return
	}
	s.json(w, http.StatusOK, item)
}

func (s *Server) handleDeactivatePriceItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		s.error(w, r, http.StatusBadRequest, "invalid price item id")
		return
	}

	if err := s.catalog.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.error(w, r, http.StatusNotFound, "price item not found")
			return
		}
		s.log.ErrorContext(r.Context(), "deactivate price item failed", "error", err)
		s.error(w, r, http.StatusInternalServerError, "deactivate price item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) json(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response", "error", err)
	}
}

func (s *Server) error(w http.ResponseWriter, r *http.Request, status int, msg string) {
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", "status", status, "error", msg)
	}
	s.json(w, status, errorResponse{Error: msg})
}
