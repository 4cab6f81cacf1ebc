package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/quillboard/quillboard-backend/internal/domain"
	qerrors "github.com/quillboard/quillboard-backend/internal/pkg/errors"
	"github.com/quillboard/quillboard-backend/internal/platform/logger"
	"github.com/quillboard/quillboard-backend/internal/quality"
	"github.com/quillboard/quillboard-backend/internal/services"
)

type fakeEvalService struct {
	qs       *quality.QualityScore
	failures []quality.StageFailure
	err      error
	runs     []*domain.EvaluationRun

	gotContentID string
	gotOpts      services.EvaluateOptions
}

func (f *fakeEvalService) Evaluate(_ context.Context, contentID, _ string, _ quality.EvalContext, opts services.EvaluateOptions) (*quality.QualityScore, []quality.StageFailure, error) {
	f.gotContentID = contentID
	f.gotOpts = opts
	return f.qs, f.failures, f.err
}

func (f *fakeEvalService) RecentRuns(context.Context, string, int) ([]*domain.EvaluationRun, error) {
	return f.runs, nil
}

func evaluationRouter(t *testing.T, svc services.EvaluationService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	h := NewEvaluationHandler(log, svc)
	r := gin.New()
	r.POST("/api/content/:id/evaluate", h.Evaluate)
	r.GET("/api/content/:id/runs", h.RecentRuns)
	return r
}

func TestEvaluateEndpointOK(t *testing.T) {
	svc := &fakeEvalService{
		qs: &quality.QualityScore{OverallScore: 93.2, Grade: "A", PassesThreshold: true},
	}
	r := evaluationRouter(t, svc)

	body := `{"content":"draft text","mode":"strict","record_version":true,"author":"kim"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/content/post-1/evaluate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", w.Code, w.Body.String())
	}
	if svc.gotContentID != "post-1" {
		t.Fatalf("content id: want=post-1 got=%s", svc.gotContentID)
	}
	if !svc.gotOpts.RecordVersion || svc.gotOpts.Author != "kim" {
		t.Fatalf("options not forwarded: %+v", svc.gotOpts)
	}
	var resp struct {
		Run *quality.QualityScore `json:"run"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Run == nil || resp.Run.OverallScore != 93.2 {
		t.Fatalf("response run: got %+v", resp.Run)
	}
}

func TestEvaluateEndpointMissingContent(t *testing.T) {
	r := evaluationRouter(t, &fakeEvalService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/content/post-1/evaluate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=400 got=%d", w.Code)
	}
}

func TestEvaluateEndpointAborted(t *testing.T) {
	svc := &fakeEvalService{
		failures: []quality.StageFailure{{Dimension: "seo", LastError: "analyzer offline", Attempts: 2}},
		err:      fmt.Errorf("%w: 1 of 3 stages failed", qerrors.ErrRunAborted),
	}
	r := evaluationRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/content/post-1/evaluate", strings.NewReader(`{"content":"draft"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status: want=422 got=%d", w.Code)
	}
	var resp struct {
		Failures []quality.StageFailure `json:"failures"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Failures) != 1 || resp.Failures[0].Dimension != "seo" {
		t.Fatalf("failures in body: got %+v", resp.Failures)
	}
}

func TestEvaluateEndpointCancelled(t *testing.T) {
	svc := &fakeEvalService{err: fmt.Errorf("%w: context canceled", qerrors.ErrRunCancelled)}
	r := evaluationRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/content/post-1/evaluate", strings.NewReader(`{"content":"draft"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestTimeout {
		t.Fatalf("status: want=408 got=%d", w.Code)
	}
}

func TestRecentRunsEndpoint(t *testing.T) {
	svc := &fakeEvalService{runs: []*domain.EvaluationRun{{ContentID: "post-1"}, {ContentID: "post-1"}}}
	r := evaluationRouter(t, svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/content/post-1/runs?limit=2", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", w.Code)
	}
	var resp struct {
		Runs []*domain.EvaluationRun `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Runs) != 2 {
		t.Fatalf("runs: want=2 got=%d", len(resp.Runs))
	}
}
