package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yourorg/imnotdurnk/internal/apperror"
	"github.com/yourorg/imnotdurnk/internal/models"
	"github.com/yourorg/imnotdurnk/internal/storage"
)

// Upstream pronunciation scores range from 1.0 to 5.0.
const maxPronunciationScore = 5.0

// File is an uploaded recording.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

func (f *File) empty() bool {
	return f == nil || f.Body == nil || f.Size <= 0
}

// VoiceStore is the persistence of recordings.
type VoiceStore interface {
	Create(ctx context.Context, v *models.Voice) (int64, error)
	FindByLogID(ctx context.Context, logID int64) (*models.Voice, error)
	DeleteByLogID(ctx context.Context, logID int64) error
}

// TempStore holds recordings between scoring and saving.
type TempStore interface {
	Save(r io.Reader, ext string) (string, error)
	Read(name string) ([]byte, error)
	Remove(name string) error
}

// Scorer rates how well audio matches script.
type Scorer interface {
	Score(ctx context.Context, script string, audio []byte) (float64, error)
}

type VoiceService struct {
	voices  VoiceStore
	logs    GameLogStore
	plans   PlanFinder
	objects storage.ObjectStore
	temp    TempStore
	scorer  Scorer
	auth    TokenResolver
}

func NewVoiceService(voices VoiceStore, logs GameLogStore, plans PlanFinder, objects storage.ObjectStore,
	temp TempStore, scorer Scorer, auth TokenResolver) *VoiceService {
	return &VoiceService{
		voices:  voices,
		logs:    logs,
		plans:   plans,
		objects: objects,
		temp:    temp,
		scorer:  scorer,
		auth:    auth,
	}
}

// AddVoice uploads a recording and attaches it to an existing game log.
func (s *VoiceService) AddVoice(ctx context.Context, logID int64, file *File) (*models.VoiceDTO, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.logs.FindByID(ctx, logID); err != nil {
		return nil, notFoundOr(err, "game log not found", "failed to load game log")
	}
	if file.empty() {
		return nil, apperror.BadRequest("file is empty")
	}

	key := objectKey(file.Name)
	url, err := s.objects.Upload(ctx, key, file.Body, contentType(file))
	if err != nil {
		return nil, internal("failed to upload recording", err)
	}
	return s.attach(ctx, logID, key, url)
}

func (s *VoiceService) attach(ctx context.Context, logID int64, key, url string) (*models.VoiceDTO, error) {
	voice := &models.Voice{LogID: logID, FileName: key, FileURL: url}
	id, err := s.voices.Create(ctx, voice)
	if err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			log.Printf("⚠️ orphaned object %s: %v", key, delErr)
		}
		return nil, internal("failed to save recording", err)
	}
	voice.ID = id

	out := voice.ToDTO()
	return &out, nil
}

func (s *VoiceService) GetVoiceByLogID(ctx context.Context, logID int64) (*models.VoiceDTO, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	voice, err := s.voices.FindByLogID(ctx, logID)
	if err != nil {
		return nil, notFoundOr(err, "recording not found", "failed to load recording")
	}
	out := voice.ToDTO()
	return &out, nil
}

// DeleteVoice removes the stored object, then the row. Nothing is deleted
// from storage when the row does not exist.
func (s *VoiceService) DeleteVoice(ctx context.Context, logID int64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()
	voice, err := s.voices.FindByLogID(ctx, logID)
	if err != nil {
		return notFoundOr(err, "recording not found", "failed to load recording")
	}
	if err := s.objects.Delete(ctx, voice.FileName); err != nil {
		return internal("failed to delete recording", err)
	}
	if err := s.voices.DeleteByLogID(ctx, logID); err != nil {
		return internal("failed to delete recording", err)
	}
	return nil
}

// Score keeps the recording as a temp file and asks the scoring API how
// well it matches script. The temp file name is returned for the follow-up
// save or discard.
func (s *VoiceService) Score(ctx context.Context, file *File, script string) (*models.VoiceResultDTO, error) {
	script = strings.TrimSpace(script)
	if file.empty() {
		return nil, apperror.BadRequest("file is empty")
	}
	if script == "" {
		return nil, apperror.BadRequest("script is required")
	}

	audio, err := io.ReadAll(file.Body)
	if err != nil {
		return nil, apperror.BadRequest("could not read file")
	}
	name, err := s.temp.Save(bytes.NewReader(audio), filepath.Ext(file.Name))
	if err != nil {
		return nil, internal("failed to keep recording", err)
	}

	score, err := s.scorer.Score(ctx, script, audio)
	if err != nil {
		_ = s.temp.Remove(name)
		return nil, internal("failed to score pronunciation", err)
	}
	return &models.VoiceResultDTO{Score: score, Script: script, Filename: name}, nil
}

// SavePronunciation stores a scored recording: the uploaded file, a
// pronunciation game log on the plan and its voice row. A failed step undoes
// the earlier ones and keeps the temp file for a retry.
func (s *VoiceService) SavePronunciation(ctx context.Context, token string, dto models.VoiceResultDTO) (*models.VoiceDTO, error) {
	userID, err := s.auth.UserID(token)
	if err != nil {
		return nil, err
	}
	if dto.PlanID <= 0 {
		return nil, apperror.BadRequest("planId is required")
	}
	if strings.TrimSpace(dto.Filename) == "" {
		return nil, apperror.BadRequest("filename is required")
	}

	ctx, cancel := withTimeout(ctx)
	defer cancel()
	if _, err := s.plans.FindByIDAndUser(ctx, dto.PlanID, userID); err != nil {
		return nil, notFoundOr(err, "plan not found", "failed to load plan")
	}

	audio, err := s.temp.Read(dto.Filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperror.NotFound("recording not found")
		}
		if errors.Is(err, storage.ErrInvalidName) {
			return nil, apperror.BadRequest("invalid filename")
		}
		return nil, internal("failed to read recording", err)
	}

	key := dto.Filename
	url, err := s.objects.Upload(ctx, key, bytes.NewReader(audio), contentTypeFor(key))
	if err != nil {
		return nil, internal("failed to upload recording", err)
	}

	logID, err := s.logs.Create(ctx, &models.GameLog{
		PlanID:   dto.PlanID,
		GameType: models.GamePronunciation,
		Score:    pronunciationScore(dto.Score),
	})
	if err != nil {
		if delErr := s.objects.Delete(ctx, key); delErr != nil {
			log.Printf("⚠️ orphaned object %s: %v", key, delErr)
		}
		return nil, internal("failed to save game log", err)
	}
	out, err := s.attach(ctx, logID, key, url)
	if err != nil {
		if delErr := s.logs.Delete(ctx, logID); delErr != nil {
			log.Printf("⚠️ orphaned game log %d: %v", logID, delErr)
		}
		return nil, err
	}

	if err := s.temp.Remove(dto.Filename); err != nil {
		log.Printf("⚠️ could not remove temp recording %s: %v", dto.Filename, err)
	}
	return out, nil
}

// DiscardPronunciation drops a scored recording the user chose not to keep.
func (s *VoiceService) DiscardPronunciation(_ context.Context, dto models.VoiceResultDTO) error {
	if strings.TrimSpace(dto.Filename) == "" {
		return apperror.BadRequest("filename is required")
	}
	if err := s.temp.Remove(dto.Filename); err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			return apperror.BadRequest("invalid filename")
		}
		return internal("failed to remove recording", err)
	}
	return nil
}

// pronunciationScore maps the 1..5 upstream scale onto the 0..100 game scale.
func pronunciationScore(score float64) int {
	if score <= 0 {
		return 0
	}
	if score >= maxPronunciationScore {
		return maxGameScore
	}
	return int(math.Round(score / maxPronunciationScore * maxGameScore))
}

func objectKey(name string) string {
	return uuid.NewString() + strings.ToLower(filepath.Ext(name))
}

func contentType(f *File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	return contentTypeFor(f.Name)
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".webm":
		return "audio/webm"
	default:
		return "application/octet-stream"
	}
}
