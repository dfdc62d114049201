package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/justinabrahms/chesscore/internal/chess"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Game        GameConfig        `mapstructure:"game"`
	Perft       PerftConfig       `mapstructure:"perft"`
	Development DevelopmentConfig `mapstructure:"development"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// StaticDir is served at / when set.
	StaticDir string `mapstructure:"static_dir"`
}

type GameConfig struct {
	StartFEN string `mapstructure:"start_fen"`
	// Clock values are in seconds; an initial time of 0 disables the clock.
	ClockInitial   int           `mapstructure:"clock_initial"`
	ClockIncrement int           `mapstructure:"clock_increment"`
	IdleTTL        time.Duration `mapstructure:"idle_ttl"`
}

type PerftConfig struct {
	Workers  int `mapstructure:"workers"`
	MaxDepth int `mapstructure:"max_depth"`
}

type DevelopmentConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// TimeControl returns the clock settings for new games.
func (g GameConfig) TimeControl() chess.TimeControl {
	tc := chess.TimeControl{
		Type:      "untimed",
		Initial:   g.ClockInitial,
		Increment: g.ClockIncrement,
	}
	if g.ClockInitial > 0 {
		tc.Type = "custom"
	}
	return tc
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func Load() (*Config, error) {
	return load(viper.New(), ".", "./config")
}

func load(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// Enable environment variables
	v.SetEnvPrefix("CHESSCORE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.static_dir", "")
	v.SetDefault("game.start_fen", chess.StartFEN)
	v.SetDefault("game.clock_initial", 0)
	v.SetDefault("game.clock_increment", 0)
	v.SetDefault("game.idle_ttl", 24*time.Hour)
	v.SetDefault("perft.workers", 4)
	v.SetDefault("perft.max_depth", 5)
	v.SetDefault("development.debug", false)
	v.SetDefault("development.log_level", "info")

	// Read config
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, defaults and environment still apply
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	// empty means the standard position
	if c.Game.StartFEN == "" {
		c.Game.StartFEN = chess.StartFEN
	}
	if _, err := chess.ParseFEN(c.Game.StartFEN); err != nil {
		return fmt.Errorf("game.start_fen: %w", err)
	}
	if c.Game.ClockInitial < 0 || c.Game.ClockIncrement < 0 {
		return fmt.Errorf("game clock values must not be negative")
	}
	if c.Perft.MaxDepth < 1 {
		return fmt.Errorf("perft.max_depth must be at least 1, got %d", c.Perft.MaxDepth)
	}
	return nil
}
