package backup

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/quizrally/backend/pkg/queue"
)

type fakeEnqueuer struct {
	tables []string
	err    error
}

func (f *fakeEnqueuer) EnqueueBackup(_ context.Context, p queue.BackupPayload) error {
	if f.err != nil {
		return f.err
	}
	f.tables = append(f.tables, p.Table)
	return nil
}

func newBackupRouter(q Enqueuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(q, zap.NewNop())
	router := gin.New()
	router.POST("/admin/backups", h.Trigger)
	return router
}

func trigger(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/admin/backups", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestTriggerEmptyBodyBacksUpAllTables(t *testing.T) {
	q := &fakeEnqueuer{}
	router := newBackupRouter(q)

	w := trigger(router, "")

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, Tables(), q.tables)
}

func TestTriggerSingleTable(t *testing.T) {
	q := &fakeEnqueuer{}
	router := newBackupRouter(q)

	w := trigger(router, `{"table": "answers"}`)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"answers"}, q.tables)
}

func TestTriggerRejectsUnknownTable(t *testing.T) {
	q := &fakeEnqueuer{}
	router := newBackupRouter(q)

	w := trigger(router, `{"table": "pg_shadow"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, q.tables)
}

func TestTriggerRejectsMalformedBody(t *testing.T) {
	q := &fakeEnqueuer{}
	router := newBackupRouter(q)

	w := trigger(router, `{not json`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, q.tables)
}
