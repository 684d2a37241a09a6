package handlers

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/models"
	"github.com/yourorg/imnotdurnk/internal/service"
)

type fakeVoice struct {
	VoiceService
	gotLogID  int64
	gotName   string
	gotBody   string
	gotScript string
}

func (f *fakeVoice) AddVoice(_ context.Context, logID int64, file *service.File) (*models.VoiceDTO, error) {
	if file.Body == nil || file.Size == 0 {
		return nil, apperror.BadRequest("file is empty")
	}
	data, _ := io.ReadAll(file.Body)
	f.gotLogID, f.gotName, f.gotBody = logID, file.Name, string(data)
	return &models.VoiceDTO{LogID: logID, Filename: file.Name, FileURL: "/files/" + file.Name}, nil
}

func (f *fakeVoice) Score(_ context.Context, file *service.File, script string) (*models.VoiceResultDTO, error) {
	f.gotName, f.gotScript = file.Name, script
	return &models.VoiceResultDTO{Score: 4.2, Script: script, Filename: "tmp.wav"}, nil
}

func voiceApp(svc VoiceService) *fiber.App {
	h := NewVoiceHandler(svc)
	app := newApp()
	app.Post("/voice", h.AddVoice)
	app.Post("/voice/pronounce", h.Pronounce)
	return app
}

func TestAddVoiceMultipart(t *testing.T) {
	svc := &fakeVoice{}
	req := multipartRequest(t, "/voice", map[string]string{"voice": `{"logId":3}`}, "file", "take1.m4a", []byte("audio"))

	resp, body := do(t, voiceApp(svc), req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, http.StatusOK, envelope(t, body).StatusCode)
	assert.EqualValues(t, 3, svc.gotLogID)
	assert.Equal(t, "take1.m4a", svc.gotName)
	assert.Equal(t, "audio", svc.gotBody)
}

func TestAddVoiceRequiresMetadata(t *testing.T) {
	req := multipartRequest(t, "/voice", nil, "file", "take1.m4a", []byte("audio"))
	resp, _ := do(t, voiceApp(&fakeVoice{}), req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = multipartRequest(t, "/voice", map[string]string{"voice": `{"logId":3}`}, "", "", nil)
	resp, body := do(t, voiceApp(&fakeVoice{}), req)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "file is empty", envelope(t, body).Message)
}

func TestPronounce(t *testing.T) {
	svc := &fakeVoice{}
	req := multipartRequest(t, "/voice/pronounce", map[string]string{"script": " 간장 공장 공장장 "}, "file", "say.wav", []byte("RIFF"))

	resp, body := do(t, voiceApp(svc), req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "간장 공장 공장장", svc.gotScript)
	data, ok := envelope(t, body).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tmp.wav", data["filename"])
}
