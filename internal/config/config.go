// Package config loads settings for the generator and the dashboard.
//
// Values come from defaults, then an optional YAML file, then REVIEWGEN_*
// environment variables. A dotenv file is read before the environment
// overrides so secrets can live outside the YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "REVIEWGEN_"

// Config holds all application configuration.
type Config struct {
	Seed      int64           `yaml:"seed"`
	EnvFile   string          `yaml:"env_file"`
	Customers CustomersConfig `yaml:"customers"`
	Reviews   ReviewsConfig   `yaml:"reviews"`
	TextGen   TextGenConfig   `yaml:"textgen"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

type CustomersConfig struct {
	Count int `yaml:"count"`
}

type ReviewsConfig struct {
	CompanyName string          `yaml:"company_name"`
	Count       int             `yaml:"count"`
	StartDate   Date            `yaml:"start_date"`
	EndDate     Date            `yaml:"end_date"`
	RatingMeans map[int]float64 `yaml:"rating_means"`
	StdDev      float64         `yaml:"std_dev"`
	PromptsPath string          `yaml:"prompts_path"`
	Concurrency int             `yaml:"concurrency"`
	OnError     string          `yaml:"on_error"`
}

type TextGenConfig struct {
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	MaxTokens  int           `yaml:"max_tokens"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	Mock       bool          `yaml:"mock"`
}

type OutputConfig struct {
	Dir    string      `yaml:"dir"`
	Format string      `yaml:"format"`
	Merged bool        `yaml:"merged"`
	S3     S3Config    `yaml:"s3"`
	Kafka  KafkaConfig `yaml:"kafka"`
}

// S3Config enables the S3 sink when Bucket is set.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// KafkaConfig enables the Kafka sink when Brokers and Topic are set.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

type DashboardConfig struct {
	Port           int           `yaml:"port"`
	DataPath       string        `yaml:"data_path"`
	APIKey         string        `yaml:"api_key"`
	RateLimit      int           `yaml:"rate_limit"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Date is a calendar day that accepts both 2006-01-02 and 1/2/2006.
type Date struct {
	time.Time
}

var dateLayouts = []string{time.DateOnly, "1/2/2006"}

// ParseDate parses s in any accepted layout as a UTC day.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return Date{t}, nil
		}
	}
	return Date{}, fmt.Errorf("config: invalid date %q (want YYYY-MM-DD or M/D/YYYY)", s)
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDate(node.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.Format(time.DateOnly), nil
}

func defaults() Config {
	return Config{
		Seed:      42,
		Customers: CustomersConfig{Count: 1000},
		Reviews: ReviewsConfig{
			CompanyName: "Aetna's health insurance service",
			Count:       5,
			StartDate:   Date{time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
			EndDate:     Date{time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)},
			RatingMeans: map[int]float64{2020: 1.5, 2021: 1.9, 2022: 2.4, 2023: 3.1, 2024: 4.2},
			StdDev:      2.0,
			Concurrency: 1,
			OnError:     "abort",
		},
		TextGen: TextGenConfig{
			Provider:   "openai",
			Model:      "gpt-4o",
			MaxTokens:  150,
			Timeout:    60 * time.Second,
			MaxRetries: 3,
		},
		Output: OutputConfig{
			Dir:    "data",
			Format: "csv",
			Merged: true,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSizeMB:  100,
			MaxBackups: 5,
		},
		Dashboard: DashboardConfig{
			Port:           8090,
			DataPath:       "data/merged.csv",
			RateLimit:      60,
			RequestTimeout: 30 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file (if path is non-empty), reads
// the dotenv file, then applies environment variable overrides.
func Load(path string) (Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse yaml: %w", err)
		}
	}

	if err := loadEnvFile(cfg.EnvFile); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadEnvFile reads name, or ./.env when name is empty. A missing default
// file is fine; a missing explicit one is not. Existing variables win.
func loadEnvFile(name string) error {
	explicit := name != ""
	if !explicit {
		name = ".env"
	}
	if err := godotenv.Load(name); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load env file %s: %w", name, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	var err error
	setInt64 := func(key string, dst *int64) {
		if v := os.Getenv(envPrefix + key); v != "" && err == nil {
			n, perr := strconv.ParseInt(v, 10, 64)
			if perr != nil {
				err = fmt.Errorf("config: invalid %s%s %q: %w", envPrefix, key, v, perr)
				return
			}
			*dst = n
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(envPrefix + key); v != "" && err == nil {
			n, perr := strconv.Atoi(v)
			if perr != nil {
				err = fmt.Errorf("config: invalid %s%s %q: %w", envPrefix, key, v, perr)
				return
			}
			*dst = n
		}
	}
	setString := func(key string, dst *string) {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := os.Getenv(envPrefix + key); v != "" && err == nil {
			f, perr := strconv.ParseFloat(v, 64)
			if perr != nil {
				err = fmt.Errorf("config: invalid %s%s %q: %w", envPrefix, key, v, perr)
				return
			}
			*dst = f
		}
	}
	setDate := func(key string, dst *Date) {
		if v := os.Getenv(envPrefix + key); v != "" && err == nil {
			d, perr := ParseDate(v)
			if perr != nil {
				err = perr
				return
			}
			*dst = d
		}
	}

	setInt64("SEED", &cfg.Seed)
	setInt("CUSTOMERS", &cfg.Customers.Count)
	setInt("REVIEWS", &cfg.Reviews.Count)
	setString("COMPANY_NAME", &cfg.Reviews.CompanyName)
	setDate("START_DATE", &cfg.Reviews.StartDate)
	setDate("END_DATE", &cfg.Reviews.EndDate)
	setFloat("STD_DEV", &cfg.Reviews.StdDev)
	if v := os.Getenv(envPrefix + "RATING_MEANS"); v != "" && err == nil {
		if cfg.Reviews.RatingMeans == nil {
			cfg.Reviews.RatingMeans = make(map[int]float64)
		}
		err = mergeRatingMeans(cfg.Reviews.RatingMeans, v)
	}
	setString("PROMPTS_PATH", &cfg.Reviews.PromptsPath)
	setInt("CONCURRENCY", &cfg.Reviews.Concurrency)
	setString("ON_ERROR", &cfg.Reviews.OnError)

	setString("PROVIDER", &cfg.TextGen.Provider)
	setString("MODEL", &cfg.TextGen.Model)
	setString("BASE_URL", &cfg.TextGen.BaseURL)
	setString("TEXTGEN_API_KEY", &cfg.TextGen.APIKey)
	if cfg.TextGen.APIKey == "" {
		cfg.TextGen.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	setString("OUTPUT_DIR", &cfg.Output.Dir)
	setString("OUTPUT_FORMAT", &cfg.Output.Format)
	setString("S3_BUCKET", &cfg.Output.S3.Bucket)
	setString("S3_ENDPOINT", &cfg.Output.S3.Endpoint)
	setString("KAFKA_TOPIC", &cfg.Output.Kafka.Topic)
	if v := os.Getenv(envPrefix + "KAFKA_BROKERS"); v != "" {
		cfg.Output.Kafka.Brokers = splitList(v)
	}

	setString("LOG_LEVEL", &cfg.Log.Level)
	setString("LOG_FORMAT", &cfg.Log.Format)
	setString("LOG_FILE", &cfg.Log.File)

	setInt("PORT", &cfg.Dashboard.Port)
	setString("DATA_PATH", &cfg.Dashboard.DataPath)
	setString("API_KEY", &cfg.Dashboard.APIKey)
	setInt("RATE_LIMIT", &cfg.Dashboard.RateLimit)

	return err
}

// mergeRatingMeans applies "2023:3.1,2024:4.2" on top of means; years not
// listed keep their current value.
func mergeRatingMeans(means map[int]float64, v string) error {
	for _, pair := range splitList(v) {
		year, mean, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("config: invalid %sRATING_MEANS entry %q (want YEAR:MEAN)", envPrefix, pair)
		}
		y, yerr := strconv.Atoi(strings.TrimSpace(year))
		m, merr := strconv.ParseFloat(strings.TrimSpace(mean), 64)
		if yerr != nil || merr != nil {
			return fmt.Errorf("config: invalid %sRATING_MEANS entry %q (want YEAR:MEAN)", envPrefix, pair)
		}
		means[y] = m
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks settings that are not owned by a domain package.
// Sampling parameters are validated by the samplers themselves.
func (c Config) Validate() error {
	switch c.Output.Format {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("config: output.format must be csv or xlsx, got %q", c.Output.Format)
	}
	switch c.Reviews.OnError {
	case "abort", "skip":
	default:
		return fmt.Errorf("config: reviews.on_error must be abort or skip, got %q", c.Reviews.OnError)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Dashboard.Port <= 0 || c.Dashboard.Port > 65535 {
		return fmt.Errorf("config: dashboard.port out of range: %d", c.Dashboard.Port)
	}
	if (len(c.Output.Kafka.Brokers) == 0) != (c.Output.Kafka.Topic == "") {
		return errors.New("config: output.kafka needs both brokers and topic")
	}
	return nil
}
