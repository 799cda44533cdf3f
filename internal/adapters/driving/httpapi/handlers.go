package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/docqa-cli/internal/core/domain"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// RunRequest is the body of POST /hackrx/run.
type RunRequest struct {
	Documents string   `json:"documents"`
	Questions []string `json:"questions"`
}

// RunResponse carries one answer per question, in input order.
type RunResponse struct {
	Answers []string `json:"answers"`
}

// DocumentResponse is one entry of GET /documents.
type DocumentResponse struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	Format    string `json:"format"`
	Chunks    int    `json:"chunks"`
	CreatedAt string `json:"created_at"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// run downloads the document, indexes it unless already known, and answers
// every question against it.
func (s *Server) run(c echo.Context) error {
	var req RunRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	req.Documents = strings.TrimSpace(req.Documents)
	if req.Documents == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "documents is required")
	}
	if len(req.Questions) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "questions must not be empty")
	}

	ctx := c.Request().Context()

	doc, err := s.ports.Ingest.IngestURL(ctx, req.Documents)
	if err != nil {
		var fetchErr *domain.FetchError
		if errors.As(err, &fetchErr) {
			logger.Warn("http: %v", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Failed to download file")
		}
		return echo.NewHTTPError(http.StatusInternalServerError,
			fmt.Sprintf("An unexpected error occurred: %v", err))
	}

	answers, err := s.ports.Answer.AnswerBatch(ctx, doc.ID, req.Questions)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrNoQuestions) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError,
			fmt.Sprintf("An unexpected error occurred: %v", err))
	}

	resp := RunResponse{Answers: make([]string, len(answers))}
	for i, a := range answers {
		resp.Answers[i] = a.Text
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listDocuments(c echo.Context) error {
	records, err := s.ports.Document.List(c.Request().Context())
	if err != nil {
		return err
	}

	resp := make([]DocumentResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, DocumentResponse{
			ID:        r.Hash,
			Filename:  r.Filename,
			Format:    string(r.Format),
			Chunks:    r.Chunks,
			CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return c.JSON(http.StatusOK, resp)
}
