package handlers

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/models"
	"github.com/yourorg/imnotdurnk/internal/service"
)

// VoiceService is what the voice endpoints need from the service layer.
type VoiceService interface {
	AddVoice(ctx context.Context, logID int64, file *service.File) (*models.VoiceDTO, error)
	GetVoiceByLogID(ctx context.Context, logID int64) (*models.VoiceDTO, error)
	DeleteVoice(ctx context.Context, logID int64) error
	Score(ctx context.Context, file *service.File, script string) (*models.VoiceResultDTO, error)
	SavePronunciation(ctx context.Context, token string, dto models.VoiceResultDTO) (*models.VoiceDTO, error)
	DiscardPronunciation(ctx context.Context, dto models.VoiceResultDTO) error
}

type VoiceHandler struct {
	svc VoiceService
}

func NewVoiceHandler(svc VoiceService) *VoiceHandler {
	return &VoiceHandler{svc: svc}
}

// AddVoice handles POST /voice with a "voice" part ({"logId": n}) and a
// "file" part.
func (h *VoiceHandler) AddVoice(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperror.BadRequest("multipart form expected")
	}
	raw, err := voicePart(form)
	if err != nil {
		return err
	}
	var meta models.VoiceDTO
	if err := json.Unmarshal(raw, &meta); err != nil || meta.LogID <= 0 {
		return apperror.BadRequest("voice.logId is required")
	}

	file, closeFile, err := formFile(form, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	voice, err := h.svc.AddVoice(c.UserContext(), meta.LogID, file)
	if err != nil {
		return err
	}
	return single(c, fiber.StatusOK, "voice saved", voice)
}

// GetVoice handles GET /voice/:logId.
func (h *VoiceHandler) GetVoice(c *fiber.Ctx) error {
	logID, err := paramID(c, "logId")
	if err != nil {
		return err
	}
	voice, err := h.svc.GetVoiceByLogID(c.UserContext(), logID)
	if err != nil {
		return err
	}
	return single(c, fiber.StatusOK, "voice found, see fileUrl", voice)
}

// DeleteVoice handles DELETE /voice/:logId.
func (h *VoiceHandler) DeleteVoice(c *fiber.Ctx) error {
	logID, err := paramID(c, "logId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteVoice(c.UserContext(), logID); err != nil {
		return err
	}
	return ok(c, "voice deleted")
}

// Pronounce handles POST /voice/pronounce with "file" and "script" parts.
func (h *VoiceHandler) Pronounce(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperror.BadRequest("multipart form expected")
	}
	file, closeFile, err := formFile(form, "file")
	if err != nil {
		return err
	}
	defer closeFile()

	result, err := h.svc.Score(c.UserContext(), file, firstValue(form, "script"))
	if err != nil {
		return err
	}
	return single(c, fiber.StatusOK, "pronunciation scored", result)
}

// SavePronunciation handles POST /voice/pronounce/save.
func (h *VoiceHandler) SavePronunciation(c *fiber.Ctx) error {
	var dto models.VoiceResultDTO
	if err := parseBody(c, &dto); err != nil {
		return err
	}
	if _, err := h.svc.SavePronunciation(c.UserContext(), accessToken(c), dto); err != nil {
		return err
	}
	return ok(c, "result saved")
}

// DiscardPronunciation handles POST /voice/pronounce/not-save.
func (h *VoiceHandler) DiscardPronunciation(c *fiber.Ctx) error {
	var dto models.VoiceResultDTO
	if err := parseBody(c, &dto); err != nil {
		return err
	}
	if err := h.svc.DiscardPronunciation(c.UserContext(), dto); err != nil {
		return err
	}
	return ok(c, "result discarded")
}

// voicePart accepts the metadata either as a text field or as a JSON file
// part.
func voicePart(form *multipart.Form) ([]byte, error) {
	if v := firstValue(form, "voice"); v != "" {
		return []byte(v), nil
	}
	headers := form.File["voice"]
	if len(headers) == 0 {
		return nil, apperror.BadRequest("voice part is required")
	}
	f, err := headers[0].Open()
	if err != nil {
		return nil, apperror.BadRequest("could not read voice part")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperror.BadRequest("could not read voice part")
	}
	return data, nil
}

// formFile opens the named file part. A missing part yields an empty File
// so the service reports it.
func formFile(form *multipart.Form, name string) (*service.File, func(), error) {
	headers := form.File[name]
	if len(headers) == 0 {
		return &service.File{}, func() {}, nil
	}
	fh := headers[0]
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperror.BadRequest("could not read " + name)
	}
	return &service.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, func() { f.Close() }, nil
}

func firstValue(form *multipart.Form, name string) string {
	if vs := form.Value[name]; len(vs) > 0 {
		return strings.TrimSpace(vs[0])
	}
	return ""
}
