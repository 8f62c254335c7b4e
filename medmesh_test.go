package medmesh

import (
	"context"
	"image/color"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/internal/testutil"
	"github.com/hupe1980/medmesh/model"
	"github.com/hupe1980/medmesh/server"
)

func TestMedMesh_ImageAnalysisWithQuestion(t *testing.T) {
	m := model.NewMockModel("medgemma", "mock")
	m.Enqueue("image_analysis", `{"technique": "PA chest radiograph", "findings": "No consolidation", "impression": "Normal", "recommendations": "None", "answer_to_user_question": "No pneumonia"}`)

	mm := New(model.NewStatic(m))
	require.NoError(t, mm.Engine().Validate())

	resp := mm.Analyze(context.Background(), core.Input{
		Note:  "Is there pneumonia?",
		Image: testutil.SolidImage(16, 16, color.Gray{Y: 128}),
	})

	require.False(t, resp.Failed(), resp.Error)
	assert.Equal(t, core.TaskImageAnalysis, resp.Agent)

	report, ok := resp.Result.(core.RadiologyReport)
	require.True(t, ok)
	assert.Equal(t, "Normal", report.Impression)
	require.NotNil(t, report.AnswerToUserQuestion)
	assert.Equal(t, "No pneumonia", *report.AnswerToUserQuestion)

	recs, err := mm.Store().List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "image_analysis", recs[0].Label)
	assert.True(t, recs[0].HasImage)
}

func TestMedMesh_DisableAudit(t *testing.T) {
	m := model.NewMockModel("medgemma", "mock")
	m.Enqueue("unknown")

	mm := New(model.NewStatic(m), func(o *Options) { o.DisableAudit = true })

	resp := mm.Analyze(context.Background(), core.Input{Note: "x"})
	assert.True(t, resp.Failed())
	assert.Nil(t, mm.Store())
}

func TestMedMesh_SharedRequestHeaderKeepsBothAudits(t *testing.T) {
	m := model.NewMockModel("medgemma", "mock")
	m.Enqueue(
		"icd10", `[{"code": "K35.80", "description": "Acute appendicitis"}]`,
		"icd10", `[{"code": "J45.909", "description": "Asthma"}]`,
	)

	mm := New(model.NewStatic(m))
	h := server.New(mm, func(o *server.Options) { o.Store = mm.Store() }).Handler()

	for _, note := range []string{"user A: appendicitis", "user B: asthma"} {
		form := url.Values{"note": {note}}
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set(server.HeaderRequestID, "fixed")

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "fixed", rec.Header().Get(server.HeaderRequestID))
	}

	recs, err := mm.Store().List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byNote := map[string]core.AnalysisRecord{}
	for _, r := range recs {
		assert.Equal(t, "fixed", r.RequestID)
		byNote[r.Note] = r
	}
	require.Contains(t, byNote, "user A: appendicitis")
	require.Contains(t, byNote, "user B: asthma")
	assert.Contains(t, string(byNote["user A: appendicitis"].Result), "K35.80")
	assert.Contains(t, string(byNote["user B: asthma"].Result), "J45.909")
	assert.NotEqual(t, byNote["user A: appendicitis"].ID, byNote["user B: asthma"].ID)
}
