package notifier

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/quizrally/backend/internal/telegram"
	"github.com/quizrally/backend/pkg/queue"
)

type fakeAnnouncer struct {
	jobs []queue.NotificationPayload
	err  error
}

func (f *fakeAnnouncer) EnqueueNotification(_ context.Context, p queue.NotificationPayload) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, p)
	return nil
}

func newAnnounceRouter(q Announcer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(q, zap.NewNop())
	router := gin.New()
	router.POST("/admin/announce", h.Announce)
	return router
}

func announce(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/announce", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnnounceQueuesMessage(t *testing.T) {
	q := &fakeAnnouncer{}
	router := newAnnounceRouter(q)

	w := announce(router, `{"chat_id": -100200300, "text": "Tournament starts at 20:00!"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, q.jobs, 1)
	assert.Equal(t, int64(-100200300), q.jobs[0].ChatID)
	assert.Equal(t, "Tournament starts at 20:00!", q.jobs[0].Text)
	assert.Equal(t, telegram.ParseModeHTML, q.jobs[0].ParseMode)
}

func TestAnnounceRequiresChatIDAndText(t *testing.T) {
	q := &fakeAnnouncer{}
	router := newAnnounceRouter(q)

	for _, body := range []string{`{}`, `{"chat_id": 1}`, `{"text": "hi"}`} {
		w := announce(router, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
	assert.Empty(t, q.jobs)
}

func TestAnnounceReportsQueueFailure(t *testing.T) {
	q := &fakeAnnouncer{err: assert.AnError}
	router := newAnnounceRouter(q)

	w := announce(router, `{"chat_id": 1, "text": "hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
