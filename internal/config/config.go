// Package config loads application configuration from file and environment
// and initializes the global logger.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data    DataConfig    `yaml:"data" mapstructure:"data"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Model   ModelConfig   `yaml:"model" mapstructure:"model"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Plots   PlotsConfig   `yaml:"plots" mapstructure:"plots"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the input files.
type DataConfig struct {
	HousingCSV      string   `yaml:"housing_csv" mapstructure:"housing_csv"`
	NeighborhoodTSV string   `yaml:"neighborhood_tsv" mapstructure:"neighborhood_tsv"`
	OverridesYAML   string   `yaml:"overrides_yaml" mapstructure:"overrides_yaml"`
	FeatureColumns  []string `yaml:"feature_columns" mapstructure:"feature_columns"`
}

// GeocodeConfig configures the geocoding client.
type GeocodeConfig struct {
	APIKey    string  `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	Locality  string  `yaml:"locality" mapstructure:"locality"`
	UTMZone   int     `yaml:"utm_zone" mapstructure:"utm_zone"`
}

// ModelConfig holds the fixed training hyperparameters.
type ModelConfig struct {
	LearningRate float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	MaxDepth     int     `yaml:"max_depth" mapstructure:"max_depth"`
	MinLeaf      int     `yaml:"min_leaf" mapstructure:"min_leaf"`
	Subsample    float64 `yaml:"subsample" mapstructure:"subsample"`
	Rounds       int     `yaml:"rounds" mapstructure:"rounds"`
	Patience     int     `yaml:"patience" mapstructure:"patience"`
	Folds        int     `yaml:"folds" mapstructure:"folds"`
	HoldoutFrac  float64 `yaml:"holdout_frac" mapstructure:"holdout_frac"`
	Seed         int64   `yaml:"seed" mapstructure:"seed"`
}

// StoreConfig configures the optional SQLite results store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// PlotsConfig configures plot output.
type PlotsConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. The geocoding API key
// is usually supplied as AMESGEO_GEOCODE_API_KEY.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("AMESGEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	// Every key needs a default: viper only surfaces env-only keys through
	// Unmarshal when the key is already known.
	v.SetDefault("data.housing_csv", "data/housing.csv")
	v.SetDefault("data.neighborhood_tsv", "data/neighborhoods.tsv")
	v.SetDefault("data.overrides_yaml", "")
	v.SetDefault("data.feature_columns", []string{
		"LotArea", "OverallQual", "OverallCond", "YearBuilt",
		"TotalBsmtSF", "GrLivArea", "FullBath", "BedroomAbvGr",
		"TotRmsAbvGrd", "GarageCars",
	})
	v.SetDefault("geocode.api_key", "")
	v.SetDefault("geocode.base_url", "")
	v.SetDefault("geocode.rate_limit", 10.0)
	v.SetDefault("geocode.locality", "Ames, Iowa")
	v.SetDefault("geocode.utm_zone", 15)
	v.SetDefault("model.learning_rate", 0.1)
	v.SetDefault("model.max_depth", 4)
	v.SetDefault("model.min_leaf", 5)
	v.SetDefault("model.subsample", 0.8)
	v.SetDefault("model.rounds", 300)
	v.SetDefault("model.patience", 25)
	v.SetDefault("model.folds", 5)
	v.SetDefault("model.holdout_frac", 0.2)
	v.SetDefault("model.seed", 42)
	v.SetDefault("store.path", "amesgeo.db")
	v.SetDefault("plots.dir", "plots")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

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

	return &cfg, nil
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
