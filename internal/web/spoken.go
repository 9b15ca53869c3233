package web

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/careervani/careervani/internal/auth"
	"github.com/careervani/careervani/internal/followup"
	"github.com/careervani/careervani/internal/grammar"
	"github.com/careervani/careervani/internal/observe"
	"github.com/careervani/careervani/internal/report"
	"github.com/careervani/careervani/internal/scoring"
	"github.com/careervani/careervani/internal/scoring/phonetic"
	"github.com/careervani/careervani/internal/translate"
	"github.com/careervani/careervani/pkg/provider/stt"
	"github.com/careervani/careervani/pkg/store"
)

// followUpCount is how many ranked follow-ups a spoken result carries.
const followUpCount = 3

const msgProcessingFailed = "Processing failed. Try again."

// ─── spoken result ───

type spokenRequest struct {
	Transcript string `json:"transcript"`

	// Domain, when set, adds ranked follow-up questions to the response.
	Domain string `json:"domain,omitempty"`
}

type spokenResultBody struct {
	FeedbackID       int64           `json:"feedback_id,omitempty"`
	Transcript       string          `json:"transcript"`
	CorrectedText    string          `json:"corrected_text"`
	Suggestions      []string        `json:"suggestions"`
	CustomSuggestion string          `json:"custom_suggestion,omitempty"`
	Score            float64         `json:"score"`
	Badge            scoring.Badge   `json:"badge"`
	Suggestion       string          `json:"suggestion"`
	Hints            []phonetic.Hint `json:"hints,omitempty"`
	FollowUps        []string        `json:"follow_ups,omitempty"`
	Domain           followup.Domain `json:"domain,omitempty"`
}

func (s *Server) handleSpokenResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := auth.FromContext(ctx)
	log := observe.Logger(ctx)

	var req spokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	text := strings.TrimSpace(req.Transcript)
	if text == "" {
		writeError(w, http.StatusBadRequest, "No transcript received.")
		return
	}

	var domain followup.Domain
	if req.Domain != "" {
		d, err := followup.ParseDomain(req.Domain)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid domain selected.")
			return
		}
		domain = d
	}

	rv, err := s.deps.Reviewer.Review(ctx, text)
	if err != nil {
		log.Error("grammar review failed", "err", err)
		writeError(w, http.StatusBadGateway, msgProcessingFailed)
		return
	}

	res := s.deps.Scorer.Score(scoring.Input{
		Transcript:    text,
		IssueCount:    len(rv.Issues),
		CustomMatched: rv.CustomMatched(),
	})
	s.deps.Metrics.RecordScore(ctx, "result", res.Score)

	body := spokenResultBody{
		Transcript:       text,
		CorrectedText:    rv.Corrected,
		Suggestions:      rv.Suggestions,
		CustomSuggestion: rv.CustomSuggestion,
		Score:            res.Score,
		Badge:            res.Badge,
		Suggestion:       "See analysis below",
		Hints:            res.Hints,
		Domain:           domain,
	}
	if domain != "" {
		body.FollowUps = s.deps.Ranker.Best(text, domain, followUpCount)
	}

	score := res.StoredScore()
	fb := &store.Feedback{
		UserID:        id.UserID,
		Transcript:    text,
		GrammarIssues: rv.Joined(),
		PronScore:     &score,
		Badge:         string(res.Badge),
	}
	if err := s.saveFeedback(r, fb, "spoken"); err == nil {
		body.FeedbackID = fb.ID
	}

	writeJSON(w, http.StatusOK, body)
}

// ─── spoken report ───

func (s *Server) handleSpokenReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := auth.FromContext(ctx)
	log := observe.Logger(ctx)

	audio, err := s.readUpload(w, r, "audio")
	if err != nil {
		s.uploadError(w, err, "No audio uploaded.")
		return
	}
	if lang := strings.TrimSpace(r.FormValue("lang")); lang != "" && lang != "auto" {
		audio.Language = lang
	}

	tr, err := s.deps.STT.Transcribe(ctx, audio)
	if err != nil {
		log.Error("transcription failed", "err", err)
		writeError(w, http.StatusBadGateway, "Transcription failed. Try again.")
		return
	}

	text := tr.Text
	if s.deps.Translator != nil && audio.Language != "" && audio.Language != "en" {
		res, err := s.translate(r, text)
		if err != nil {
			log.Warn("translation failed, reporting original transcript", "err", err)
		} else {
			text = res.Translated
		}
	}
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusUnprocessableEntity, "No speech detected in the recording.")
		return
	}

	var (
		rv    *grammar.Review
		score int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rv, err = s.deps.Reviewer.Review(gctx, text)
		return err
	})
	g.Go(func() error {
		score = s.deps.Scorer.Plain(text)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("grammar review failed", "err", err)
		writeError(w, http.StatusBadGateway, msgProcessingFailed)
		return
	}
	s.deps.Metrics.RecordScore(ctx, "report", float64(score))

	badge := scoring.BadgeFor(float64(score))
	rep := report.Spoken{
		Transcript: text,
		Score:      &score,
		Suggestion: scoring.SuggestionFor(score),
		Badge:      string(badge),
		Issues:     report.IssueLines(rv.Issues),
		Date:       time.Now(),
	}
	pdf, err := rep.PDF()
	if err != nil {
		log.Error("render report pdf failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Could not render the report.")
		return
	}

	if s.deps.Mailer != nil && id.Email != "" {
		if err := s.deps.Mailer.SendReport(ctx, id.Email, &rep, pdf); err != nil {
			log.Warn("mailing report failed", "to", id.Email, "err", err)
		}
	}

	_ = s.saveFeedback(r, &store.Feedback{
		UserID:        id.UserID,
		Transcript:    text,
		GrammarIssues: rv.Joined(),
		PronScore:     &score,
		Badge:         string(badge),
	}, "spoken")

	writeAttachment(w, "application/pdf", report.Filename, pdf)
}

// ─── regional ───

type regionalRequest struct {
	Transcript string `json:"transcript"`
}

type regionalBody struct {
	FeedbackID       int64    `json:"feedback_id,omitempty"`
	Transcript       string   `json:"transcript"`
	TranslatedText   string   `json:"translated_text"`
	DetectedLanguage string   `json:"detected_language"`
	Suggestions      []string `json:"suggestions"`
}

func (s *Server) handleRegionalTranslate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := auth.FromContext(ctx)
	log := observe.Logger(ctx)

	if s.deps.Translator == nil {
		writeError(w, http.StatusServiceUnavailable, "Translation is not available.")
		return
	}

	var req regionalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err)
		return
	}
	text := strings.TrimSpace(req.Transcript)
	if text == "" {
		writeError(w, http.StatusBadRequest, "No transcript received.")
		return
	}

	res, err := s.translate(r, text)
	if err != nil {
		log.Error("translation failed", "err", err)
		writeError(w, http.StatusBadGateway, msgProcessingFailed)
		return
	}

	suggestions, err := s.deps.Reviewer.Check(ctx, res.Translated)
	if err != nil {
		log.Error("grammar check failed", "err", err)
		writeError(w, http.StatusBadGateway, msgProcessingFailed)
		return
	}

	body := regionalBody{
		Transcript:       res.Original,
		TranslatedText:   res.Translated,
		DetectedLanguage: res.Detected.Code,
		Suggestions:      suggestions,
	}
	fb := &store.Feedback{
		UserID:        id.UserID,
		Transcript:    res.FeedbackTranscript(),
		GrammarIssues: grammar.JoinSuggestions(suggestions),
		Badge:         string(scoring.BadgeRegional),
	}
	if err := s.saveFeedback(r, fb, "regional"); err == nil {
		body.FeedbackID = fb.ID
	}

	writeJSON(w, http.StatusOK, body)
}

// ─── helpers ───

// translate calls the translator and records its latency.
func (s *Server) translate(r *http.Request, text string) (*translate.Result, error) {
	start := time.Now()
	res, err := s.deps.Translator.ToEnglish(r.Context(), text)
	s.deps.Metrics.RecordProviderCall(r.Context(), "translate", s.deps.Metrics.TranslateDuration, time.Since(start), err)
	return res, err
}

// saveFeedback persists fb. A failure is logged and returned but does not
// fail the request: the user still gets their analysis.
func (s *Server) saveFeedback(r *http.Request, fb *store.Feedback, source string) error {
	if err := s.deps.Feedback.SaveFeedback(r.Context(), fb); err != nil {
		observe.Logger(r.Context()).Error("save feedback failed", "user_id", fb.UserID, "source", source, "err", err)
		return err
	}
	s.deps.Metrics.RecordFeedbackSaved(r.Context(), source)
	return nil
}

var errNoUpload = errors.New("no file uploaded")

// readUpload parses a multipart form and reads the named file field into an
// [stt.Audio].
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (stt.Audio, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		return stt.Audio{}, err
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return stt.Audio{}, errNoUpload
	}
	if err != nil {
		return stt.Audio{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return stt.Audio{}, err
	}
	if len(data) == 0 {
		return stt.Audio{}, errNoUpload
	}
	return stt.Audio{
		Data:        data,
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
	}, nil
}

// uploadError maps a readUpload failure to its response.
func (s *Server) uploadError(w http.ResponseWriter, err error, missing string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, errNoUpload):
		writeError(w, http.StatusBadRequest, missing)
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Upload too large.")
	default:
		writeError(w, http.StatusBadRequest, "Expected a multipart form upload.")
	}
}
