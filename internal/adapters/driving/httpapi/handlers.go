package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/comply/internal/core/domain"
	"github.com/custodia-labs/comply/internal/core/ports/driving"
)

type analyzeRequest struct {
	DocText    string `json:"docText"`
	SkipAdvice bool   `json:"skipAdvice,omitempty"`
}

type resultJSON struct {
	ID         string        `json:"id"`
	Section    string        `json:"section"`
	Question   string        `json:"question"`
	Similarity float64       `json:"similarity"`
	Threshold  float64       `json:"threshold"`
	MatchScore int           `json:"matchScore"`
	Status     domain.Status `json:"status"`
	TopChunk   string        `json:"topChunk"`
	Advice     string        `json:"advice,omitempty"`
}

type analyzeResponse struct {
	Framework string       `json:"framework"`
	Results   []resultJSON `json:"results"`
}

type improveRequest struct {
	Question string `json:"question"`
}

type improveResponse struct {
	Advice string `json:"advice"`
}

type draftRequest struct {
	Question string `json:"question"`
	DocText  string `json:"docText"`
}

type draftResponse struct {
	Draft    string  `json:"draft"`
	LowMatch bool    `json:"lowMatch"`
	TopScore float64 `json:"topScore"`
}

type summaryRequest struct {
	DocText string `json:"docText"`
}

type summaryResponse struct {
	Summary []string `json:"summary"`
}

type embedRequest struct {
	Text      string `json:"text"`
	Namespace string `json:"namespace"`
}

type embedResponse struct {
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

type documentJSON struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Chunks         int       `json:"chunks"`
	IndexedAt      time.Time `json:"indexedAt"`
	EmbeddingModel string    `json:"embeddingModel,omitempty"`
	Dimensions     int       `json:"dimensions,omitempty"`
}

type documentsResponse struct {
	Documents []documentJSON `json:"documents"`
}

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
	DocName  string               `json:"docName"`
}

type chatResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	FollowUps []string `json:"followUps"`
}

type frameworkJSON struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Policy       string `json:"policy"`
	Requirements int    `json:"requirements"`
}

type frameworksResponse struct {
	Frameworks []frameworkJSON `json:"frameworks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFrameworks(w http.ResponseWriter, _ *http.Request) {
	frameworks := s.ports.Compliance.Frameworks()

	resp := frameworksResponse{Frameworks: make([]frameworkJSON, len(frameworks))}
	for i, fw := range frameworks {
		resp.Frameworks[i] = frameworkJSON{
			Name:         fw.Name,
			Title:        fw.DisplayName(),
			Policy:       fw.Policy.String(),
			Requirements: fw.Checklist.Len(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	report, err := s.ports.Compliance.Check(r.Context(), r.PathValue("framework"), req.DocText,
		driving.CheckOptions{SkipAdvice: req.SkipAdvice})
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := analyzeResponse{
		Framework: report.Framework,
		Results:   make([]resultJSON, len(report.Results)),
	}
	for i := range report.Results {
		res := &report.Results[i]
		resp.Results[i] = resultJSON{
			ID:         res.ID,
			Section:    res.Section,
			Question:   res.Question,
			Similarity: res.Similarity,
			Threshold:  res.Threshold,
			MatchScore: res.MatchScore,
			Status:     res.Status,
			TopChunk:   res.TopChunk,
			Advice:     res.Advice,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImprove(w http.ResponseWriter, r *http.Request) {
	var req improveRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	advice, err := s.ports.Advisor.Improve(r.Context(), r.PathValue("framework"), req.Question)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, improveResponse{Advice: advice})
}

func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	draft, err := s.ports.Advisor.Draft(r.Context(), r.PathValue("framework"), req.Question, req.DocText)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{
		Draft:    draft.Text,
		LowMatch: draft.LowMatch,
		TopScore: draft.TopScore,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.ports.Advisor.Summarise(r.Context(), req.DocText)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Summary: summary})
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	var req embedRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	n, err := s.ports.Corpus.Index(r.Context(), req.Namespace, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, embedResponse{
		Message: fmt.Sprintf("Indexed %d chunks under namespace %q", n, req.Namespace),
		Chunks:  n,
	})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.ports.Corpus.Documents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := documentsResponse{Documents: make([]documentJSON, len(docs))}
	for i, d := range docs {
		resp.Documents[i] = documentJSON{
			ID:             d.ID,
			Name:           d.Name,
			Chunks:         d.Chunks,
			IndexedAt:      d.IndexedAt,
			EmbeddingModel: d.EmbeddingModel,
			Dimensions:     d.Dimensions,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	answer, err := s.ports.Corpus.Ask(r.Context(), req.DocName, req.Messages)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Answer:    answer.Answer,
		Sources:   nonNil(answer.Sources),
		FollowUps: nonNil(answer.FollowUps),
	})
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
