package handler

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/johnquangdev/consult-review/errors"
	"github.com/johnquangdev/consult-review/pkg/validator"
)

func handleErr(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/webhook", nil), rec)
	if herr := HandleError(nil, c, err); herr != nil {
		t.Fatalf("HandleError: %v", herr)
	}
	return rec
}

func TestHandleError_ClientErrorCarriesInfo(t *testing.T) {
	appErr := errors.ErrInvalidPayload()
	appErr.Raw = stdErrors.New("unexpected end of JSON input")

	rec := handleErr(t, appErr)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if decode(t, rec)["info"] != "unexpected end of JSON input" {
		t.Fatalf("client errors should explain the cause: %s", rec.Body.String())
	}
}

func TestHandleError_ServerErrorHidesCause(t *testing.T) {
	cause := stdErrors.New("dial tcp 10.0.0.7:6379: connection refused")

	for _, err := range []error{errors.ErrCacheFailed("acquire", cause), fmt.Errorf("wrapped: %w", cause)} {
		rec := handleErr(t, err)
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "10.0.0.7") {
			t.Fatalf("internal error text leaked: %s", rec.Body.String())
		}
		if _, ok := decode(t, rec)["info"]; ok {
			t.Fatalf("5xx body must not carry info: %s", rec.Body.String())
		}
	}
}

type failingRegistry struct{ err error }

func (r failingRegistry) TryAcquire(context.Context, string) (bool, error) { return false, r.err }
func (r failingRegistry) Release(context.Context, string) error            { return nil }

func TestWebhook_RegistryFailureIsNotLeaked(t *testing.T) {
	h := NewWebhookHandler(failingRegistry{err: stdErrors.New("redis: ERR max clients reached")}, &fakeSubmitter{}, defaultOptions(), nil, nil)
	e := echo.New()
	e.Validator = validator.New()
	NewRouter(nil, h, nil).Setup(e)
	s := &testServer{e: e, submitter: &fakeSubmitter{}}

	rec := s.post(t, recordingEvent("7", transcriptFiles), true)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "max clients") {
		t.Fatalf("registry error leaked to caller: %s", rec.Body.String())
	}
	if msg, _ := decode(t, rec)["error"].(string); msg == "" {
		t.Fatalf("expected an error message: %s", rec.Body.String())
	}
}
