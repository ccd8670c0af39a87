package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config.yaml"
	PathEnv     = "CAMPUSBOT_CONFIG"
)

type Config struct {
	Log       Log       `yaml:"log"`
	HTTP      HTTP      `yaml:"http"`
	OpenAI    OpenAI    `yaml:"openai"`
	Fallback  Fallback  `yaml:"fallback"`
	Knowledge Knowledge `yaml:"knowledge"`
	DB        DB        `yaml:"db"`
	Uploads   Uploads   `yaml:"uploads"`
}

type Log struct {
	// Minimum level written to the console
	Level string `yaml:"level" example:"info" validate:"oneof=debug info warn error"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
	// Minimum level forwarded to telegram, records tagged "telegram" are always forwarded
	Level string `yaml:"level" example:"error" validate:"oneof=debug info warn error"`
}

type HTTP struct {
	// Listen address of the API server
	Addr string `yaml:"addr" example:":5000" validate:"required"`
	// Comma separated list of allowed CORS origins
	AllowOrigins string `yaml:"allow_origins" example:"http://localhost:3000" validate:"required"`
	// Max request body size in bytes
	BodyLimit int `yaml:"body_limit" example:"10485760" validate:"gt=0"`
	// Read timeout
	ReadTimeout time.Duration `yaml:"read_timeout" example:"30s"`
	// Write timeout
	WriteTimeout time.Duration `yaml:"write_timeout" example:"60s"`
}

type OpenAI struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1" validate:"required,url"`
	// OpenAI token, leave empty to answer from the local fallback only
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// OpenAI model
	Model string `yaml:"model" example:"gpt-4o-mini" validate:"required"`
	// Sampling temperature
	Temperature float32 `yaml:"temperature" example:"0.7" validate:"gte=0,lte=2"`
	// Max completion tokens
	MaxTokens int `yaml:"max_tokens" example:"500" validate:"gt=0"`
	// Frequency penalty
	FrequencyPenalty float32 `yaml:"frequency_penalty" example:"0.5" validate:"gte=-2,lte=2"`
	// Presence penalty
	PresencePenalty float32 `yaml:"presence_penalty" example:"0.5" validate:"gte=-2,lte=2"`
	// Upstream request timeout
	Timeout time.Duration `yaml:"timeout" example:"30s" validate:"gt=0"`
	// Number of trailing history messages sent upstream
	HistoryWindow int `yaml:"history_window" example:"10" validate:"gte=0"`
	// Upstream requests allowed per minute before falling back locally, 0 disables the limit
	RequestsPerMinute int `yaml:"requests_per_minute" example:"60" validate:"gte=0"`
}

type Fallback struct {
	// Number of trailing history messages scanned as context
	ContextWindow int `yaml:"context_window" example:"3" validate:"gte=0"`
	// Optional path to a response table overriding the built-in one
	ResponsesPath string `yaml:"responses_path" example:"app/service/fallback/responses.yaml"`
}

type Knowledge struct {
	// Optional path to a knowledge base overriding the built-in one
	Path string `yaml:"path" example:"app/service/knowledge/knowledge.jsonl"`
}

type DB struct {
	// SQLite database file
	Path string `yaml:"path" example:"data/campusbot.db" validate:"required"`
}

type Uploads struct {
	// Directory uploaded files are stored in
	Dir string `yaml:"dir" example:"data/uploads" validate:"required"`
	// Max size of a single uploaded file in bytes
	MaxSize int64 `yaml:"max_size" example:"5242880" validate:"gt=0"`
}

// Path returns the config file location, honouring the environment override.
func Path() string {
	if path := os.Getenv(PathEnv); path != "" {
		return path
	}

	return DefaultPath
}

// Default returns the config used for every field the YAML file leaves out.
func Default() Config {
	return Config{
		Log: Log{
			Level: "info",
			Telegram: TelegramLog{
				Level: "error",
			},
		},
		HTTP: HTTP{
			Addr:         ":5000",
			AllowOrigins: "*",
			BodyLimit:    10 * 1024 * 1024,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		OpenAI: OpenAI{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-3.5-turbo",
			Temperature:       0.7,
			MaxTokens:         500,
			FrequencyPenalty:  0.5,
			PresencePenalty:   0.5,
			Timeout:           30 * time.Second,
			HistoryWindow:     10,
			RequestsPerMinute: 60,
		},
		Fallback: Fallback{
			ContextWindow: 3,
		},
		DB: DB{
			Path: "data/campusbot.db",
		},
		Uploads: Uploads{
			Dir:     "data/uploads",
			MaxSize: 5 * 1024 * 1024,
		},
	}
}

func Load(path string) (*Config, error) {
	// unmarshalling over the defaults keeps explicit zero values from the file
	result := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.In("config").Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.In("config").Errorf("failed to parse YAML config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.In("config").Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
