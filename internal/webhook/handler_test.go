package webhook

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/models"
	"github.com/quizrally/backend/internal/scoring"
)

type fakeReconciler struct {
	calls []reconcileCall
	res   scoring.Result
	err   error
}

type reconcileCall struct {
	pollID    string
	profile   models.Profile
	optionIDs []int
}

func (f *fakeReconciler) Reconcile(_ context.Context, pollID string, profile models.Profile, optionIDs []int) (scoring.Result, error) {
	f.calls = append(f.calls, reconcileCall{pollID: pollID, profile: profile, optionIDs: optionIDs})
	return f.res, f.err
}

func newTestRouter(rec Reconciler, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(rec, nil, nil, secret, 5*time.Second, zap.NewNop())
	router := gin.New()
	router.POST("/telegram/webhook", h.Receive)
	return router
}

func post(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

const pollAnswerUpdate = `{
	"update_id": 10,
	"poll_answer": {
		"poll_id": "tg-poll-1",
		"user": {"id": 42, "first_name": "Ana", "username": "ana"},
		"option_ids": [0]
	}
}`

func TestReceivePollAnswerRoutesToReconciler(t *testing.T) {
	rec := &fakeReconciler{res: scoring.Result{Outcome: scoring.OutcomeReconciled, IsCorrect: true, PointsAwarded: 50}}
	router := newTestRouter(rec, "")

	w := post(router, pollAnswerUpdate, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "tg-poll-1", rec.calls[0].pollID)
	assert.Equal(t, int64(42), rec.calls[0].profile.TelegramID)
	assert.Equal(t, "Ana", rec.calls[0].profile.FirstName)
	assert.Equal(t, []int{0}, rec.calls[0].optionIDs)
}

func TestReceiveChecksSecretToken(t *testing.T) {
	rec := &fakeReconciler{}
	router := newTestRouter(rec, "s3cret")

	w := post(router, pollAnswerUpdate, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, rec.calls)

	w = post(router, pollAnswerUpdate, map[string]string{secretHeader: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, rec.calls)

	w = post(router, pollAnswerUpdate, map[string]string{secretHeader: "s3cret"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, rec.calls, 1)
}

func TestReceiveAnswers200OnReconcileError(t *testing.T) {
	rec := &fakeReconciler{err: assert.AnError}
	router := newTestRouter(rec, "")

	w := post(router, pollAnswerUpdate, nil)

	// Failures are logged and dropped; Telegram must not redeliver.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, rec.calls, 1)
}

func TestReceiveAnswers200OnGarbageBody(t *testing.T) {
	rec := &fakeReconciler{}
	router := newTestRouter(rec, "")

	w := post(router, `{not json`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rec.calls)
}

func TestReceiveIgnoresUpdatesWithoutPollAnswerOrMessage(t *testing.T) {
	rec := &fakeReconciler{}
	router := newTestRouter(rec, "")

	w := post(router, `{"update_id": 11}`, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, rec.calls)
}
