package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Default dataset locations.
const (
	DefaultTopologyURL  = "https://cdn.freecodecamp.org/testable-projects-fcc/data/choropleth_map/counties.json"
	DefaultEducationURL = "https://cdn.freecodecamp.org/testable-projects-fcc/data/choropleth_map/for_user_education.json"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Map     MapConfig     `yaml:"map" mapstructure:"map"`
	Legend  LegendConfig  `yaml:"legend" mapstructure:"legend"`
	Join    JoinConfig    `yaml:"join" mapstructure:"join"`
	Tooltip TooltipConfig `yaml:"tooltip" mapstructure:"tooltip"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig names the two input datasets. Values may be http(s) URLs,
// file:// URLs or plain filesystem paths.
type DataConfig struct {
	TopologyURL  string `yaml:"topology_url" mapstructure:"topology_url"`
	EducationURL string `yaml:"education_url" mapstructure:"education_url"`
}

// MapConfig configures the drawing surface and county geometry.
type MapConfig struct {
	Width       float64      `yaml:"width" mapstructure:"width"`
	Height      float64      `yaml:"height" mapstructure:"height"`
	Margin      MarginConfig `yaml:"margin" mapstructure:"margin"`
	Projection  string       `yaml:"projection" mapstructure:"projection"`
	Precision   int          `yaml:"precision" mapstructure:"precision"`
	NeutralFill string       `yaml:"neutral_fill" mapstructure:"neutral_fill"`
	StateStroke string       `yaml:"state_stroke" mapstructure:"state_stroke"`
}

// MarginConfig reserves space around the drawing area.
type MarginConfig struct {
	Top    float64 `yaml:"top" mapstructure:"top"`
	Right  float64 `yaml:"right" mapstructure:"right"`
	Bottom float64 `yaml:"bottom" mapstructure:"bottom"`
	Left   float64 `yaml:"left" mapstructure:"left"`
}

// LegendConfig configures the color legend.
type LegendConfig struct {
	Swatches int     `yaml:"swatches" mapstructure:"swatches"`
	Width    float64 `yaml:"width" mapstructure:"width"`
	Height   float64 `yaml:"height" mapstructure:"height"`
}

// JoinConfig configures how education records are indexed.
type JoinConfig struct {
	Duplicates string `yaml:"duplicates" mapstructure:"duplicates"`
}

// TooltipConfig configures tooltip placement.
type TooltipConfig struct {
	OffsetX float64 `yaml:"offset_x" mapstructure:"offset_x"`
	OffsetY float64 `yaml:"offset_y" mapstructure:"offset_y"`
	Clamp   bool    `yaml:"clamp" mapstructure:"clamp"`
}

// FetchConfig configures dataset downloads. A zero timeout means none.
type FetchConfig struct {
	UserAgent   string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts"`
}

// ServerConfig configures the map server.
type ServerConfig struct {
	Port      int           `yaml:"port" mapstructure:"port"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	CacheSize int           `yaml:"cache_size" mapstructure:"cache_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EDUMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.topology_url", DefaultTopologyURL)
	v.SetDefault("data.education_url", DefaultEducationURL)
	v.SetDefault("map.width", 960)
	v.SetDefault("map.height", 600)
	v.SetDefault("map.margin.top", 20)
	v.SetDefault("map.margin.right", 20)
	v.SetDefault("map.margin.bottom", 20)
	v.SetDefault("map.margin.left", 20)
	v.SetDefault("map.projection", "identity")
	v.SetDefault("map.precision", 3)
	v.SetDefault("map.neutral_fill", "gray")
	v.SetDefault("map.state_stroke", "#fff")
	v.SetDefault("legend.swatches", 8)
	v.SetDefault("legend.width", 300)
	v.SetDefault("legend.height", 20)
	v.SetDefault("join.duplicates", "last")
	v.SetDefault("tooltip.offset_x", 10)
	v.SetDefault("tooltip.offset_y", -28)
	v.SetDefault("tooltip.clamp", false)
	v.SetDefault("fetch.user_agent", "edumap/1.0")
	v.SetDefault("fetch.timeout", 0)
	v.SetDefault("fetch.max_attempts", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cache_ttl", time.Hour)
	v.SetDefault("server.cache_size", 16)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects settings the renderer cannot honor.
func (c *Config) Validate() error {
	if c.Data.TopologyURL == "" || c.Data.EducationURL == "" {
		return eris.New("config: data.topology_url and data.education_url are required")
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return eris.Errorf("config: invalid map size %gx%g", c.Map.Width, c.Map.Height)
	}
	switch c.Map.Projection {
	case "identity", "equirectangular":
	default:
		return eris.Errorf("config: unknown projection %q", c.Map.Projection)
	}
	switch c.Join.Duplicates {
	case "last", "first":
	default:
		return eris.Errorf("config: join.duplicates must be \"last\" or \"first\", got %q", c.Join.Duplicates)
	}
	if c.Legend.Swatches <= 0 {
		return eris.Errorf("config: legend.swatches must be positive, got %d", c.Legend.Swatches)
	}
	if c.Fetch.MaxAttempts < 1 {
		return eris.Errorf("config: fetch.max_attempts must be at least 1, got %d", c.Fetch.MaxAttempts)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
