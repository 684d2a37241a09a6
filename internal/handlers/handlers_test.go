package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/middleware"
	"github.com/yourorg/imnotdurnk/internal/models"
)

const validToken = "valid-token"

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(middleware.AccessToken())
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func envelope(t *testing.T, body []byte) models.Response {
	t.Helper()
	var r models.Response
	require.NoError(t, json.Unmarshal(body, &r))
	return r
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer "+validToken)
	return req
}

func jsonRequest(method, target string, v any) *http.Request {
	data, _ := json.Marshal(v)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func requireToken(token string) error {
	if token != validToken {
		return apperror.Unauthorized("access token is invalid")
	}
	return nil
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/bad", func(c *fiber.Ctx) error { return apperror.BadRequest("title is too long") })
	app.Get("/missing", func(c *fiber.Ctx) error { return apperror.NotFound("plan not found") })
	app.Get("/boom", func(c *fiber.Ctx) error { return io.ErrUnexpectedEOF })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/bad", http.StatusBadRequest, "title is too long"},
		{"/missing", http.StatusNotFound, "plan not found"},
		{"/boom", http.StatusInternalServerError, "internal server error"},
		{"/nowhere", http.StatusNotFound, "Cannot GET /nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := do(t, app, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, resp.StatusCode)
			env := envelope(t, body)
			assert.Equal(t, tt.status, env.StatusCode)
			assert.Equal(t, tt.message, env.Message)
		})
	}
}

func TestParamIDRejectsGarbage(t *testing.T) {
	app := newApp()
	app.Get("/x/:id", func(c *fiber.Ctx) error {
		_, err := paramID(c, "id")
		return err
	})
	resp, _ := do(t, app, httptest.NewRequest(http.MethodGet, "/x/abc", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, app, httptest.NewRequest(http.MethodGet, "/x/0", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ============================================================================
// fakes
// ============================================================================

// Each fake embeds its interface; calling a method the test did not set
// panics, which fails the test.

type fakeCalendar struct {
	CalendarService
	addCalendar func(token string, dto models.CalendarDTO) (*models.CalendarDTO, error)
	statistic   func(date, token string) (*models.CalendarStatisticDTO, error)
	arrival     func(token string, planID int64, arrival string) (*models.CalendarDTO, error)
	diary       func(token string, year, month int) ([]models.DiaryDTO, error)
	export      func(token string, year, month int) ([]byte, error)
}

func (f *fakeCalendar) AddCalendar(_ context.Context, token string, dto models.CalendarDTO) (*models.CalendarDTO, error) {
	return f.addCalendar(token, dto)
}

func (f *fakeCalendar) GetCalendarStatistic(_ context.Context, date, token string) (*models.CalendarStatisticDTO, error) {
	return f.statistic(date, token)
}

func (f *fakeCalendar) UpdateArrivalTime(_ context.Context, token string, planID int64, arrival string) (*models.CalendarDTO, error) {
	return f.arrival(token, planID, arrival)
}

func (f *fakeCalendar) GetDiary(_ context.Context, token string, year, month int) ([]models.DiaryDTO, error) {
	return f.diary(token, year, month)
}

func (f *fakeCalendar) ExportCalendar(_ context.Context, token string, year, month int) ([]byte, error) {
	return f.export(token, year, month)
}

type fakeUsers struct {
	UserService
	login  func(email, password string) (*models.AuthDTO, error)
	logout func(access, refresh string) error
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*models.AuthDTO, error) {
	return f.login(email, password)
}

func (f *fakeUsers) Logout(_ context.Context, access, refresh string) error {
	return f.logout(access, refresh)
}
