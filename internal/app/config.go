package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DBPath               string
	SchedulerBuffer      int
	DesktopNotifications bool
	DueSoonHorizon       time.Duration
	UpcomingHorizon      time.Duration
}

func DefaultConfig() Config {
	return Config{
		DBPath:               defaultDBPath(),
		SchedulerBuffer:      64,
		DesktopNotifications: false,
		DueSoonHorizon:       24 * time.Hour,
		UpcomingHorizon:      7 * 24 * time.Hour,
	}
}

func ConfigFromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TODUE_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v, ok := getEnvInt("TODUE_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvBool("TODUE_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("TODUE_DUE_SOON_HOURS"); ok && v > 0 {
		cfg.DueSoonHorizon = time.Duration(v) * time.Hour
	}
	if v, ok := getEnvInt("TODUE_UPCOMING_DAYS"); ok && v > 0 {
		cfg.UpcomingHorizon = time.Duration(v) * 24 * time.Hour
	}
	return cfg
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "todue.db"
	}
	return filepath.Join(home, ".todue", "todue.db")
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
