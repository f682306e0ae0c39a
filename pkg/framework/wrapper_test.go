package framework

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitglue/bike-miles/pkg/bootstrap"
)

func testService() *bootstrap.Service {
	return &bootstrap.Service{Logger: bootstrap.DiscardLogger()}
}

func serve(h http.Handler) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/miles", nil))
	return rec
}

func TestWrap_Success(t *testing.T) {
	var gotCtx *FrameworkContext
	h := Wrap("miles", testService(), func(w http.ResponseWriter, r *http.Request, fwCtx *FrameworkContext) error {
		gotCtx = fwCtx
		WriteJSON(w, http.StatusOK, map[string]int{"year": 2023})
		return nil
	})

	rec := serve(h)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"year":2023}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	require.NotNil(t, gotCtx)
	assert.NotNil(t, gotCtx.Logger)
	_, err := uuid.Parse(gotCtx.ExecutionID)
	assert.NoError(t, err)
	assert.Equal(t, gotCtx.ExecutionID, rec.Header().Get(ExecutionIDHeader))
}

func TestWrap_StatusError(t *testing.T) {
	h := Wrap("miles", testService(), func(w http.ResponseWriter, r *http.Request, fwCtx *FrameworkContext) error {
		return NewError(http.StatusBadRequest, "Missing token or year parameter", nil)
	})

	rec := serve(h)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing token or year parameter"}`, rec.Body.String())
}

func TestWrap_StatusErrorWithDetails(t *testing.T) {
	h := Wrap("miles", testService(), func(w http.ResponseWriter, r *http.Request, fwCtx *FrameworkContext) error {
		return NewErrorWithDetails(http.StatusInternalServerError, "An error occurred fetching miles", errors.New("connection refused"))
	})

	rec := serve(h)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"An error occurred fetching miles","details":"connection refused"}`, rec.Body.String())
}

func TestWrap_PlainError(t *testing.T) {
	h := Wrap("miles", testService(), func(w http.ResponseWriter, r *http.Request, fwCtx *FrameworkContext) error {
		return errors.New("boom")
	})

	rec := serve(h)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error","details":"boom"}`, rec.Body.String())
}

func TestStatusError(t *testing.T) {
	cause := errors.New("cause")
	err := NewError(http.StatusBadRequest, "bad", cause)

	assert.Equal(t, "bad: cause", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, err.Details)
	assert.Equal(t, "bad", NewError(http.StatusBadRequest, "bad", nil).Error())
}
