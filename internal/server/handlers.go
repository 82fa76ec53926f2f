package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ZaguanLabs/gophrase"
	"github.com/labstack/echo/v4"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

type translateRequest struct {
	Phrase    string `json:"phrase"`
	Direction string `json:"direction"`
}

type translateResponse struct {
	Phrase      string `json:"phrase"`
	Translation string `json:"translation"`
	Direction   string `json:"direction"`
	Source      string `json:"source"`
	Warning     string `json:"warning,omitempty"`
}

// maxBatchPhrases caps the number of phrases accepted by one batch request.
const maxBatchPhrases = 100

type batchRequest struct {
	Phrases     []string `json:"phrases"`
	Direction   string   `json:"direction"`
	Concurrency int      `json:"concurrency"`
}

type batchResponse struct {
	Results []translateResponse `json:"results"`
	Missing int                 `json:"missing"`
	Warning string              `json:"warning,omitempty"`
}

type statsResponse struct {
	Entries           int     `json:"entries"`
	ExpirationSeconds float64 `json:"expiration_seconds"`
}

type trimResponse struct {
	Removed int `json:"removed"`
	Entries int `json:"entries"`
}

type removeResponse struct {
	Removed bool `json:"removed"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) translate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}

	direction, err := parseDirection(req.Direction)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	result, err := s.translator.Translate(c.Request().Context(), req.Phrase, direction)
	if err != nil && !gophrase.IsCacheError(err) {
		var dirErr *gophrase.InvalidDirectionError
		if errors.Is(err, gophrase.ErrEmptyPhrase) || errors.As(err, &dirErr) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		s.logger.Error("translation failed", "module", "http", "action", "translate", "result", "failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	if !result.Found() {
		resp := errorResponse{Error: "no translation available"}
		if result.Err != nil {
			resp.Detail = result.Err.Error()
		}
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}

	resp := translateResponse{
		Phrase:      result.Phrase,
		Translation: result.Text,
		Direction:   result.Direction.String(),
		Source:      string(result.Source),
	}
	if err != nil {
		s.logger.Error("translation not cached", "module", "http", "action", "translate", "result", "failed", "error", err)
		resp.Warning = "translation could not be cached"
	}

	s.updateCacheGauge()
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) translateBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
	}
	if len(req.Phrases) == 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "phrases is empty"})
	}
	if len(req.Phrases) > maxBatchPhrases {
		return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "too many phrases"})
	}

	direction, err := parseDirection(req.Direction)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	results, err := s.translator.TranslateBatch(c.Request().Context(), req.Phrases, direction, req.Concurrency)
	if err != nil && !gophrase.IsCacheError(err) {
		s.logger.Error("batch translation failed", "module", "http", "action", "batch", "result", "failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	resp := batchResponse{Results: make([]translateResponse, 0, len(results))}
	for _, r := range results {
		if !r.Found() {
			resp.Missing++
		}
		resp.Results = append(resp.Results, translateResponse{
			Phrase:      r.Phrase,
			Translation: r.Text,
			Direction:   r.Direction.String(),
			Source:      string(r.Source),
		})
	}
	if err != nil {
		s.logger.Error("batch not fully cached", "module", "http", "action", "batch", "result", "failed", "error", err)
		resp.Warning = "some translations could not be cached"
	}

	s.updateCacheGauge()
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) stats(c echo.Context) error {
	s.updateCacheGauge()
	return c.JSON(http.StatusOK, statsResponse{
		Entries:           s.cache.Size(),
		ExpirationSeconds: s.cache.Expiration().Seconds(),
	})
}

func (s *Server) trim(c echo.Context) error {
	removed, err := s.cache.Trim(c.Request().Context())
	if err != nil {
		s.logger.Error("cache trim failed", "module", "http", "action", "trim", "result", "failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "cache trim failed"})
	}

	if s.metrics != nil {
		s.metrics.AddTrimmed(removed)
	}
	s.updateCacheGauge()
	return c.JSON(http.StatusOK, trimResponse{Removed: removed, Entries: s.cache.Size()})
}

func (s *Server) remove(c echo.Context) error {
	phrase := c.QueryParam("phrase")
	if strings.TrimSpace(phrase) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: gophrase.ErrEmptyPhrase.Error()})
	}

	removed, err := s.cache.Remove(c.Request().Context(), phrase)
	if err != nil {
		s.logger.Error("cache remove failed", "module", "http", "action", "remove", "result", "failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "cache update failed"})
	}
	if !removed {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "phrase not cached"})
	}

	s.updateCacheGauge()
	return c.JSON(http.StatusOK, removeResponse{Removed: true})
}

// parseDirection applies the default for an omitted direction.
func parseDirection(s string) (gophrase.Direction, error) {
	if strings.TrimSpace(s) == "" {
		return gophrase.DefaultDirection, nil
	}
	return gophrase.ParseDirection(s)
}
