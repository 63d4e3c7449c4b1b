package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	RunDataRoot   string
	OutputRoot    string
	JobNumber     string
	JobFolderName string
	Sterile       bool

	TemplatesMapPath string
	TemplateRoot     string
	CMDRelPath       string

	ResetSCOnRerun           bool
	RemoveSourceAfterSuccess bool

	DBPath   string
	LogLevel string

	WebAddr       string
	WebBuildSlots int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		RunDataRoot:   getEnv("RUN_DATA_ROOT", ""),
		OutputRoot:    getEnv("OUTPUT_ROOT", ""),
		JobNumber:     getEnv("JOB_NUMBER", ""),
		JobFolderName: getEnv("JOB_FOLDER_NAME", ""),
		Sterile:       getEnvBool("STERILE", false),

		TemplatesMapPath: getEnv("TEMPLATES_MAP_PATH", ""),
		TemplateRoot:     getEnv("TEMPLATE_ROOT", ""),
		CMDRelPath:       getEnv("CMD_REL_PATH", "CMD"),

		ResetSCOnRerun:           getEnvBool("RESET_SC_ON_RERUN", true),
		RemoveSourceAfterSuccess: getEnvBool("REMOVE_SOURCE_AFTER_SUCCESS", false),

		DBPath:   getEnv("DB_PATH", defaultDBPath()),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		WebAddr:       getEnv("WEB_ADDR", ":5000"),
		WebBuildSlots: getEnvInt("WEB_BUILD_SLOTS", 2),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func defaultDBPath() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		cwd, _ := os.Getwd()
		return filepath.Join(cwd, "data", "runs.db")
	}
	return filepath.Join(cache, "cmdjob", "runs.db")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
