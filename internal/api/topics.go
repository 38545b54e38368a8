package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Proton-105/dataeng-assistant/internal/knowledge"
)

type topicSummary struct {
	ID       string   `json:"id"`
	Keywords []string `json:"keywords"`
	Preview  string   `json:"preview"`
}

type topicsResponse struct {
	Topics []topicSummary `json:"topics"`
	Count  int            `json:"count"`
}

func (s *Server) topics(c echo.Context) error {
	catalog := s.deps.Knowledge.Topics()

	out := make([]topicSummary, 0, len(catalog))
	for _, t := range catalog {
		out = append(out, topicSummary{ID: t.ID, Keywords: t.Keywords, Preview: t.Preview()})
	}

	return c.JSON(http.StatusOK, topicsResponse{Topics: out, Count: len(out)})
}

type suggestRequest struct {
	Context string `json:"context"`
}

func (s *Server) suggest(c echo.Context) error {
	var req suggestRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body")
	}

	return c.JSON(http.StatusOK, map[string][]string{"suggestions": knowledge.Suggest(req.Context)})
}
