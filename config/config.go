// ABOUTME: Layered configuration from defaults, .env, config file, environment, and flags
// ABOUTME: Resolves store locations under XDG data home and validates backend settings
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "DEALDESK"
	AppName   = "dealdesk"

	SourceSQLite   = "sqlite"
	SourceSupabase = "supabase"
)

// Config is the resolved runtime configuration.
type Config struct {
	DBPath            string
	DismissalsPath    string
	MaxSuggestions    int
	ConversationLimit int
	Source            string
	SupabaseURL       string
	SupabaseKey       string
	LogLevel          string
}

// NewViper returns a viper instance with defaults and DEALDESK_* env binding.
func NewViper() *viper.Viper {
	v := viper.New()

	dataDir := filepath.Join(xdg.DataHome, AppName)
	v.SetDefault("db_path", filepath.Join(dataDir, AppName+".db"))
	v.SetDefault("dismissals_path", filepath.Join(dataDir, "dismissals"))
	v.SetDefault("max_suggestions", 5)
	v.SetDefault("conversation_limit", 10)
	v.SetDefault("source", SourceSQLite)
	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.key", "")
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadEnv loads a .env file from the working directory when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		Logger.Warn("Error loading .env file, will use environment variables instead: ", err)
	}
}

// Load reads the optional config file named by the "config" key and returns
// the validated configuration.
func Load(v *viper.Viper) (*Config, error) {
	if cfgFile := strings.TrimSpace(v.GetString("config")); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", cfgFile, err)
		}
	}

	cfg := &Config{
		DBPath:            v.GetString("db_path"),
		DismissalsPath:    v.GetString("dismissals_path"),
		MaxSuggestions:    v.GetInt("max_suggestions"),
		ConversationLimit: v.GetInt("conversation_limit"),
		Source:            strings.ToLower(strings.TrimSpace(v.GetString("source"))),
		SupabaseURL:       v.GetString("supabase.url"),
		SupabaseKey:       v.GetString("supabase.key"),
		LogLevel:          v.GetString("log_level"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Source {
	case SourceSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for the sqlite source")
		}
	case SourceSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("supabase.url and supabase.key are required for the supabase source")
		}
	default:
		return fmt.Errorf("unknown source %q (valid: sqlite, supabase)", c.Source)
	}

	if c.MaxSuggestions <= 0 {
		return fmt.Errorf("max_suggestions must be positive, got %d", c.MaxSuggestions)
	}
	if c.ConversationLimit <= 0 {
		return fmt.Errorf("conversation_limit must be positive, got %d", c.ConversationLimit)
	}
	return nil
}
