package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	HTTPAddr       string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	AllowedOrigins []string
	BaseURL        string

	DatabaseDriver string
	DatabaseURL    string
	DataDir        string

	RedisURL      string
	GuestCacheTTL time.Duration

	WhatsAppEnabled bool
	WhatsAppDataDir string
	CountryCode     string
	CouplePhones    []string

	AdminCLI bool

	Locale           string
	Location         *time.Location
	GuestPlaceholder string

	WeddingDate     time.Time
	WeddingLocation string
	BrideName       string
	GroomName       string
	Gallery         []string
}

var defaults = map[string]any{
	"HTTP_ADDR":         ":8080",
	"LOG_LEVEL":         "info",
	"LOG_FORMAT":        "json",
	"REQUEST_TIMEOUT":   "10s",
	"ALLOWED_ORIGINS":   "*",
	"BASE_URL":          "http://localhost:3000",
	"DATABASE_DRIVER":   "sqlite3",
	"DATABASE_URL":      "",
	"DATA_DIR":          "data",
	"REDIS_URL":         "",
	"GUEST_CACHE_TTL":   "1h",
	"WHATSAPP_ENABLED":  false,
	"WHATSAPP_DATA_DIR": "data",
	"COUNTRY_CODE":      "62",
	"COUPLE_PHONES":     "",
	"ADMIN_CLI":         false,
	"LOCALE":            "id-ID",
	"TIMEZONE":          "Asia/Jakarta",
	"GUEST_PLACEHOLDER": "Tamu Undangan",
	"WEDDING_DATE":      "2025-12-28T09:00:00",
	"WEDDING_LOCATION":  "Venue TBD",
	"BRIDE_NAME":        "Bride",
	"GROOM_NAME":        "Groom",
	"GALLERY":           "",
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LoadConfig loads .env (if present) and then reads configuration from environment variables or defaults
func LoadConfig(dotenvFiles ...string) (*Config, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	loc, err := time.LoadLocation(v.GetString("TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	weddingDate, err := parseDate(v.GetString("WEDDING_DATE"), loc)
	if err != nil {
		return nil, fmt.Errorf("invalid WEDDING_DATE: %w", err)
	}

	cfg := &Config{
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		BaseURL:        strings.TrimRight(v.GetString("BASE_URL"), "/"),

		DatabaseDriver: v.GetString("DATABASE_DRIVER"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		DataDir:        v.GetString("DATA_DIR"),

		RedisURL:      v.GetString("REDIS_URL"),
		GuestCacheTTL: v.GetDuration("GUEST_CACHE_TTL"),

		WhatsAppEnabled: v.GetBool("WHATSAPP_ENABLED"),
		WhatsAppDataDir: v.GetString("WHATSAPP_DATA_DIR"),
		CountryCode:     v.GetString("COUNTRY_CODE"),
		CouplePhones:    splitList(v.GetString("COUPLE_PHONES")),

		AdminCLI: v.GetBool("ADMIN_CLI"),

		Locale:           v.GetString("LOCALE"),
		Location:         loc,
		GuestPlaceholder: v.GetString("GUEST_PLACEHOLDER"),

		WeddingDate:     weddingDate,
		WeddingLocation: v.GetString("WEDDING_LOCATION"),
		BrideName:       v.GetString("BRIDE_NAME"),
		GroomName:       v.GetString("GROOM_NAME"),
		Gallery:         splitList(v.GetString("GALLERY")),
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return cfg, nil
}

func parseDate(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
