// Package config loads settings from a .env file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every setting the CLI and its components read.
type Config struct {
	CameraID        int
	Flip            bool
	ModelPath       string
	HandsModelPath  string
	DBPath          string
	Addr            string
	StabilityWindow time.Duration
	Mapping         string
	Bot             string
	LogLevel        string
	DevLog          bool

	Speech Speech
}

// Speech holds the text-to-speech settings. Speech is disabled without a key.
type Speech struct {
	Key      string
	Region   string
	Voice    string
	Language string
	Player   string
}

// Enabled reports whether credentials are present.
func (s Speech) Enabled() bool {
	return s.Key != "" && s.Region != ""
}

// Load reads the .env files, if any, then the environment. Values already
// set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	cameraID, err := getInt("HANDSIGN_CAMERA", 0)
	if err != nil {
		return nil, err
	}
	flip, err := getBool("HANDSIGN_FLIP", true)
	if err != nil {
		return nil, err
	}
	window, err := getDuration("HANDSIGN_STABILITY_WINDOW", time.Second)
	if err != nil {
		return nil, err
	}
	devLog, err := getBool("HANDSIGN_DEV_LOG", false)
	if err != nil {
		return nil, err
	}

	return &Config{
		CameraID:        cameraID,
		Flip:            flip,
		ModelPath:       getEnv("HANDSIGN_MODEL_PATH", "models/gesture_recognizer.task"),
		HandsModelPath:  getEnv("HANDSIGN_HANDS_MODEL_PATH", "models/hand_landmarker.task"),
		DBPath:          getEnv("HANDSIGN_DB_PATH", defaultDBPath()),
		Addr:            getEnv("HANDSIGN_ADDR", ":8080"),
		StabilityWindow: window,
		Mapping:         getEnv("HANDSIGN_MAPPING", "wide"),
		Bot:             getEnv("HANDSIGN_BOT", "random"),
		LogLevel:        getEnv("HANDSIGN_LOG_LEVEL", "info"),
		DevLog:          devLog,
		Speech: Speech{
			Key:      getEnv("SPEECH_KEY", ""),
			Region:   getEnv("SPEECH_REGION", ""),
			Voice:    getEnv("SPEECH_VOICE", "en-US-JennyMultilingualNeural"),
			Language: getEnv("SPEECH_LANGUAGE", "en-US"),
			Player:   getEnv("SPEECH_PLAYER", "ffplay -nodisp -autoexit -loglevel quiet -"),
		},
	}, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "handsign.db"
	}
	return filepath.Join(home, ".handsign", "handsign.db")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
