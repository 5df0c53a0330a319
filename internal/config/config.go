package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default configuration values
const (
	DefaultPort            = 3000
	DefaultLogLevel        = "info"
	DefaultRoomIDStyle     = "uuid"
	DefaultSendBufferSize  = 256
	DefaultMaxMessageSize  = 64 * 1024 // 64 KB
	DefaultIOBufferSize    = 64 * 1024 // 64 KB
	DefaultPongWait        = 60 * time.Second
	DefaultWriteWait       = 10 * time.Second
	DefaultShutdownTimeout = 10 * time.Second

	DefaultRelayURL = "ws://localhost:3000/ws"
	DefaultCodec    = "json"
)

// ServerConfig holds relay process configuration
type ServerConfig struct {
	Host            string
	Port            int           `validate:"min=1,max=65535"`
	LogLevel        string        `validate:"oneof=debug dev development info warn warning error prod production"`
	RoomIDStyle     string        `validate:"oneof=uuid words"`
	AllowedOrigins  []string      `validate:"dive,required"`
	SendBufferSize  int           `validate:"gt=0"`
	MaxMessageSize  int64         `validate:"gt=0"`
	ReadBufferSize  int           `validate:"gt=0"`
	WriteBufferSize int           `validate:"gt=0"`
	PongWait        time.Duration `validate:"gt=0"`
	WriteWait       time.Duration `validate:"gt=0"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
}

// Addr is the listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ClientConfig holds configuration for the relay client commands
type ClientConfig struct {
	RelayURL string `validate:"required,url"`
	Codec    string `validate:"oneof=json msgpack"`
	LogLevel string `validate:"oneof=debug dev development info warn warning error prod production"`
}

// StatsURL derives the HTTP stats endpoint from the websocket URL.
func (c *ClientConfig) StatsURL() string {
	u := c.RelayURL
	switch {
	case strings.HasPrefix(u, "wss://"):
		u = "https://" + strings.TrimPrefix(u, "wss://")
	case strings.HasPrefix(u, "ws://"):
		u = "http://" + strings.TrimPrefix(u, "ws://")
	}
	return strings.TrimSuffix(strings.TrimSuffix(u, "/"), "/ws") + "/stats"
}

// ServerOptions carries CLI flag overrides. Zero values mean "not set".
type ServerOptions struct {
	ConfigFile     string
	Host           string
	Port           int
	LogLevel       string
	RoomIDStyle    string
	AllowedOrigins []string
}

// ClientOptions carries CLI flag overrides for client commands.
type ClientOptions struct {
	ConfigFile string
	RelayURL   string
	Codec      string
	LogLevel   string
}

// fileConfig is the YAML config file layout.
type fileConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	LogLevel        string        `yaml:"log_level"`
	RoomIDStyle     string        `yaml:"room_id_style"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	SendBufferSize  int           `yaml:"send_buffer_size"`
	MaxMessageSize  int64         `yaml:"max_message_size"`
	PongWait        time.Duration `yaml:"pong_wait"`
	WriteWait       time.Duration `yaml:"write_wait"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RelayURL        string        `yaml:"relay_url"`
	Codec           string        `yaml:"codec"`
}

var validate = validator.New()

// LoadServer reads relay configuration with the following priority:
// 1. CLI flags (passed via ServerOptions) - highest priority
// 2. Environment variables (a .env file in the working directory is loaded first)
// 3. YAML config file (--config or CONFIG_FILE)
// 4. Hardcoded defaults - lowest priority
func LoadServer(opts ServerOptions) (*ServerConfig, error) {
	file, err := loadSources(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := &ServerConfig{
		Host:            pickString(opts.Host, "HOST", file.Host, ""),
		LogLevel:        pickString(opts.LogLevel, "LOG_LEVEL", file.LogLevel, DefaultLogLevel),
		RoomIDStyle:     pickString(opts.RoomIDStyle, "ROOM_ID_STYLE", file.RoomIDStyle, DefaultRoomIDStyle),
		AllowedOrigins:  pickList(opts.AllowedOrigins, "ALLOWED_ORIGINS", file.AllowedOrigins),
		ReadBufferSize:  DefaultIOBufferSize,
		WriteBufferSize: DefaultIOBufferSize,
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg.Port, err = pickInt(opts.Port, "PORT", file.Port, DefaultPort)
	collect(err)
	cfg.SendBufferSize, err = pickInt(0, "SEND_BUFFER_SIZE", file.SendBufferSize, DefaultSendBufferSize)
	collect(err)
	size, err := pickInt(0, "MAX_MESSAGE_SIZE", int(file.MaxMessageSize), DefaultMaxMessageSize)
	collect(err)
	cfg.MaxMessageSize = int64(size)
	cfg.PongWait, err = pickDuration("PONG_WAIT", file.PongWait, DefaultPongWait)
	collect(err)
	cfg.WriteWait, err = pickDuration("WRITE_WAIT", file.WriteWait, DefaultWriteWait)
	collect(err)
	cfg.ShutdownTimeout, err = pickDuration("SHUTDOWN_TIMEOUT", file.ShutdownTimeout, DefaultShutdownTimeout)
	collect(err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	return cfg, nil
}

// LoadClient reads client configuration with the same priority as LoadServer.
func LoadClient(opts ClientOptions) (*ClientConfig, error) {
	file, err := loadSources(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		RelayURL: pickString(opts.RelayURL, "RELAY_URL", file.RelayURL, DefaultRelayURL),
		Codec:    pickString(opts.Codec, "RELAY_CODEC", file.Codec, DefaultCodec),
		LogLevel: pickString(opts.LogLevel, "LOG_LEVEL", file.LogLevel, "error"),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}

	return cfg, nil
}

// loadSources loads .env into the environment and parses the YAML file, if any.
func loadSources(path string) (*fileConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		return &fileConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &file, nil
}

func pickString(flag, envKey, file, def string) string {
	if flag != "" {
		return flag
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if file != "" {
		return file
	}
	return def
}

func pickInt(flag int, envKey string, file, def int) (int, error) {
	if flag != 0 {
		return flag, nil
	}
	if v := os.Getenv(envKey); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid integer %q", envKey, v)
		}
		return n, nil
	}
	if file != 0 {
		return file, nil
	}
	return def, nil
}

func pickDuration(envKey string, file, def time.Duration) (time.Duration, error) {
	if v := os.Getenv(envKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%s: invalid duration %q", envKey, v)
		}
		return d, nil
	}
	if file != 0 {
		return file, nil
	}
	return def, nil
}

func pickList(flag []string, envKey string, file []string) []string {
	if len(flag) > 0 {
		return flag
	}
	if v := os.Getenv(envKey); v != "" {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return file
}
