package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"

	"pricetags/internal/query"
)

type Config struct {
	DBPath        string
	OutputDir     string
	RunLogEnabled bool

	// CSVDelimiter 0 means sniff it from the first line.
	CSVDelimiter  rune
	CSVLazyQuotes bool
	HasHeader     bool

	PageSize int

	BarcodeLengths     []int
	BarcodeStripGTIN14 bool

	WatchDir         string
	WatchIntervalSec int
	WatchAutoOutput  bool

	LogLevel  string
	LogFormat string
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:        getEnv("DB_PATH", filepath.Join(cwd, "data", "runs.db")),
		OutputDir:     getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		RunLogEnabled: getEnvBool("RUN_LOG_ENABLED", true),

		CSVDelimiter:  getEnvRune("CSV_DELIMITER", 0),
		CSVLazyQuotes: getEnvBool("CSV_LAZY_QUOTES", true),
		HasHeader:     getEnvBool("HAS_HEADER", false),

		PageSize: getEnvInt("PAGE_SIZE", query.DefaultPageSize),

		BarcodeLengths:     getEnvInts("BARCODE_LENGTHS", []int{8, 13}),
		BarcodeStripGTIN14: getEnvBool("BARCODE_STRIP_GTIN14", false),

		WatchDir:         getEnv("WATCH_DIR", filepath.Join(cwd, "inbox")),
		WatchIntervalSec: getEnvInt("WATCH_INTERVAL_SEC", 30),
		WatchAutoOutput:  getEnvBool("WATCH_AUTO_OUTPUT", true),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if cfg.PageSize <= 0 {
		return Config{}, fmt.Errorf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}

	return cfg, nil
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

func getEnvInts(key string, fallback []int) []int {
	value := strings.TrimSpace(getEnv(key, ""))
	if value == "" {
		return fallback
	}
	out := []int{}
	for _, part := range strings.Split(value, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return fallback
		}
		out = append(out, n)
	}
	return out
}

func getEnvRune(key string, fallback rune) rune {
	value := getEnv(key, "")
	switch value {
	case "":
		return fallback
	case `\t`, "tab":
		return '\t'
	}
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError || size != len(value) {
		return fallback
	}
	return r
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
