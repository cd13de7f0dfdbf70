package config

import (
	"strings"
	"time"

	. "github.com/cricklet/negachess/internal/helpers"
	"github.com/spf13/viper"
)

const EnvPrefix = "NEGACHESS"

type SearchConfig struct {
	Depth              int  `mapstructure:"depth"`
	MaxQuiescenceDepth int  `mapstructure:"max_quiescence_depth"`
	SortMoves          bool `mapstructure:"sort_moves"`
	Workers            int  `mapstructure:"workers"`
	EndgameKingTable   bool `mapstructure:"endgame_king_table"`
}

type BookConfig struct {
	Path string `mapstructure:"path"`
}

type StockfishConfig struct {
	Path     string        `mapstructure:"path"`
	MoveTime time.Duration `mapstructure:"move_time"`
	Elo      int           `mapstructure:"elo"`
}

type NeuralConfig struct {
	ModelPath string `mapstructure:"model_path"`
	Depth     int    `mapstructure:"depth"`
	CacheSize int    `mapstructure:"cache_size"`
}

type GameConfig struct {
	White    string `mapstructure:"white"`
	Black    string `mapstructure:"black"`
	MaxPlies int    `mapstructure:"max_plies"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type Config struct {
	Search    SearchConfig    `mapstructure:"search"`
	Book      BookConfig      `mapstructure:"book"`
	Stockfish StockfishConfig `mapstructure:"stockfish"`
	Neural    NeuralConfig    `mapstructure:"neural"`
	Game      GameConfig      `mapstructure:"game"`
	Server    ServerConfig    `mapstructure:"server"`
}

var _defaults = map[string]any{
	"search.depth":                2,
	"search.max_quiescence_depth": 32,
	"search.sort_moves":           true,
	"search.workers":              1,
	"search.endgame_king_table":   false,
	"book.path":                   "",
	"stockfish.path":              "stockfish",
	"stockfish.move_time":         "100ms",
	"stockfish.elo":               0,
	"neural.model_path":           "",
	"neural.depth":                1,
	"neural.cache_size":           1 << 16,
	"game.white":                  "human",
	"game.black":                  "negamax",
	"game.max_plies":              300,
	"server.port":                 8080,
}

func newViper(env bool) *viper.Viper {
	v := viper.New()
	for key, value := range _defaults {
		v.SetDefault(key, value)
	}
	if env {
		v.SetEnvPrefix(EnvPrefix)
		v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		v.AutomaticEnv()
	}
	return v
}

func decode(v *viper.Viper) (*Config, Error) {
	cfg := &Config{}
	err := v.Unmarshal(cfg)
	if err != nil {
		return nil, Wrap(err)
	}
	return cfg, NilError
}

// Default is the built-in configuration, ignoring files and environment.
func Default() *Config {
	cfg, err := decode(newViper(false))
	if !IsNil(err) {
		panic(err)
	}
	return cfg
}

// Load reads an optional yaml, json or toml file, then NEGACHESS_*
// environment variables such as NEGACHESS_SEARCH_DEPTH.
func Load(path string) (*Config, Error) {
	v := newViper(true)
	if path != "" {
		v.SetConfigFile(path)
		err := v.ReadInConfig()
		if err != nil {
			return nil, Errorf("reading config %v: %w", path, err)
		}
	}
	return decode(v)
}
