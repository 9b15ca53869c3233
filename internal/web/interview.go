package web

import (
	"errors"
	"net/http"

	"github.com/careervani/careervani/internal/auth"
	"github.com/careervani/careervani/internal/interview"
	"github.com/careervani/careervani/internal/observe"
)

type mockStartRequest struct {
	Domain string `json:"domain"`
}

type mockAnswerRequest struct {
	QuestionIndex *int   `json:"question_index"`
	Answer        string `json:"answer"`
}

func (s *Server) handleMockStart(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	var req mockStartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}

	q, err := s.deps.Interviews.StartMock(id.UserID, req.Domain)
	if errors.Is(err, interview.ErrInvalidDomain) {
		writeError(w, http.StatusBadRequest, "Invalid domain selected.")
		return
	}
	if err != nil {
		observe.Logger(r.Context()).Error("start mock interview failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Could not start the interview.")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// handleMockAnswer returns the next question as JSON, or after the final
// answer the whole interview as a text download.
func (s *Server) handleMockAnswer(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	var req mockAnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.QuestionIndex == nil {
		writeError(w, http.StatusBadRequest, "Missing question_index.")
		return
	}

	step, err := s.deps.Interviews.SubmitAnswer(id.UserID, *req.QuestionIndex, req.Answer)
	switch {
	case errors.Is(err, interview.ErrSessionExpired):
		writeError(w, http.StatusConflict, "Session expired. Please restart your mock interview.")
		return
	case errors.Is(err, interview.ErrInvalidIndex):
		writeError(w, http.StatusBadRequest, "Invalid question index.")
		return
	case err != nil:
		observe.Logger(r.Context()).Error("submit mock answer failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Could not save your answer.")
		return
	}
	s.deps.Metrics.RecordInterviewAnswer(r.Context(), "mock")

	if step.Summary != nil {
		writeAttachment(w, "text/plain; charset=utf-8", interview.SummaryFilename, []byte(step.Summary.Text()))
		return
	}
	writeJSON(w, http.StatusOK, step.Next)
}

func (s *Server) handleVideoResponse(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	audio, err := s.readUpload(w, r, "video")
	if err != nil {
		s.uploadError(w, err, "No video uploaded.")
		return
	}

	turn, err := s.deps.Interviews.SubmitVideo(r.Context(), id.UserID, audio)
	if err != nil {
		observe.Logger(r.Context()).Error("video answer failed", "err", err)
		writeError(w, http.StatusBadGateway, "Transcription failed. Try again.")
		return
	}
	s.deps.Metrics.RecordInterviewAnswer(r.Context(), "video")
	writeJSON(w, http.StatusOK, turn)
}

func (s *Server) handleVideoLog(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	log, err := s.deps.Interviews.VideoLog(id.UserID)
	if errors.Is(err, interview.ErrNoResponses) {
		writeError(w, http.StatusNotFound, "No video interview responses found.")
		return
	}
	if err != nil {
		observe.Logger(r.Context()).Error("video log failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Could not load the interview.")
		return
	}
	writeJSON(w, http.StatusOK, log)
}
