package models

import "time"

// Game types recorded in game_logs.
const (
	GamePronunciation = "pronunciation"
	GameBalance       = "balance"
	GameMemorize      = "memorize"
	GameTyping        = "typing"
)

// IsValidGameType reports whether t is one of the known game types.
func IsValidGameType(t string) bool {
	switch t {
	case GamePronunciation, GameBalance, GameMemorize, GameTyping:
		return true
	}
	return false
}

// GameLog is a row of the game_logs table.
type GameLog struct {
	ID        int64
	PlanID    int64
	GameType  string
	Score     int
	CreatedAt time.Time
}

// GameLogDTO is a game log as returned to clients. FileURL is set when a
// voice recording is attached.
type GameLogDTO struct {
	LogID    int64  `json:"logId"`
	PlanID   int64  `json:"planId"`
	GameType string `json:"gameType"`
	Score    int    `json:"score"`
	FileURL  string `json:"fileUrl,omitempty"`
}

// Voice is a row of the voices table.
type Voice struct {
	ID       int64
	LogID    int64
	FileName string
	FileURL  string
}

// VoiceDTO identifies the recording attached to a game log.
type VoiceDTO struct {
	LogID    int64  `json:"logId"`
	Filename string `json:"filename,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
}

// ToDTO converts a voice row for the wire.
func (v *Voice) ToDTO() VoiceDTO {
	return VoiceDTO{LogID: v.LogID, Filename: v.FileName, FileURL: v.FileURL}
}

// VoiceResultDTO carries a pronunciation score and the temp file it was
// computed from, between /voice/pronounce and /voice/pronounce/save.
type VoiceResultDTO struct {
	PlanID   int64   `json:"planId"`
	Score    float64 `json:"score"`
	Script   string  `json:"script"`
	Filename string  `json:"filename"`
}

// GameLogRequest is the body of POST /game-logs.
type GameLogRequest struct {
	PlanID   int64  `json:"planId"`
	GameType string `json:"gameType"`
	Score    int    `json:"score"`
}
