// Package config holds the single explicit configuration for a run and
// loads the stoplist and compound dictionary files that shape the
// tokenizer. Nothing here is process-global: callers pass Config values
// into each stage constructor.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/vntopic/pkg/vntopic/encode"
	"github.com/cognicore/vntopic/pkg/vntopic/internalerr"
	"github.com/cognicore/vntopic/pkg/vntopic/label"
	"github.com/cognicore/vntopic/pkg/vntopic/topic"
	"github.com/cognicore/vntopic/pkg/vntopic/vocab"
)

// EnvUserAgent overrides Crawler.UserAgent when set.
const EnvUserAgent = "VNTOPIC_USER_AGENT"

// Config is the whole run configuration.
type Config struct {
	Normalizer Normalizer    `yaml:"normalizer"`
	Vocabulary vocab.Params  `yaml:"vocabulary"`
	Encoder    Encoder       `yaml:"encoder"`
	Model      topic.Config  `yaml:"model"`
	Labeler    label.Options `yaml:"labeler"`
	Dataset    Dataset       `yaml:"dataset"`
	Crawler    Crawler       `yaml:"crawler"`
	Artifacts  Artifacts     `yaml:"artifacts"`
}

// Normalizer configures tokenization.
type Normalizer struct {
	StoplistPath string `yaml:"stoplist_path"`
	DictPath     string `yaml:"dict_path"`
	// ReplaceStopwords drops the built-in list when a stoplist file is given.
	ReplaceStopwords bool `yaml:"replace_stopwords"`
	Strict           bool `yaml:"strict"`
	Workers          int  `yaml:"workers"`
}

// Encoder configures the document-term matrix.
type Encoder struct {
	Weighting encode.Weighting `yaml:"weighting"`
}

// Settings returns the options that change normalized text, keyed by
// their YAML names. Workers is left out.
func (n Normalizer) Settings() map[string]any {
	return map[string]any{
		"stoplist_path":     n.StoplistPath,
		"dict_path":         n.DictPath,
		"replace_stopwords": n.ReplaceStopwords,
		"strict":            n.Strict,
	}
}

// Dataset names the tabular input and output.
type Dataset struct {
	Input             string `yaml:"input"`
	Output            string `yaml:"output"`
	TextColumn        string `yaml:"text_column"`
	DateColumn        string `yaml:"date_column"`
	TitleColumn       string `yaml:"title_column"`
	LinkColumn        string `yaml:"link_column"`
	DescriptionColumn string `yaml:"description_column"`
}

// Crawler configures the listing crawler.
type Crawler struct {
	BaseURL             string        `yaml:"base_url"`
	PageURLFormat       string        `yaml:"page_url_format"`
	TargetCount         int           `yaml:"target_count"`
	MaxPages            int           `yaml:"max_pages"`
	MaxConsecutiveEmpty int           `yaml:"max_consecutive_empty"`
	RequestsPerSecond   float64       `yaml:"requests_per_second"`
	Burst               int           `yaml:"burst"`
	MaxRetries          int           `yaml:"max_retries"`
	BackoffBase         time.Duration `yaml:"backoff_base"`
	BackoffMax          time.Duration `yaml:"backoff_max"`
	Timeout             time.Duration `yaml:"timeout"`
	UserAgent           string        `yaml:"user_agent"`
	SkipLinkPatterns    []string      `yaml:"skip_link_patterns"`
	FetchArticleDate    bool          `yaml:"fetch_article_date"`
	RequireDescription  bool          `yaml:"require_description"`
	RequireDate         bool          `yaml:"require_date"`
	Output              string        `yaml:"output"`
	SQLitePath          string        `yaml:"sqlite_path"`
}

// Artifacts selects where fitted artifacts live.
type Artifacts struct {
	Backend    string `yaml:"backend"` // file or sqlite
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Default returns the configuration of the reference pipeline.
func Default() Config {
	return Config{
		Normalizer: Normalizer{Strict: true, Workers: 4},
		Vocabulary: vocab.DefaultParams(),
		Encoder:    Encoder{Weighting: encode.Count},
		Model:      topic.DefaultConfig(),
		Labeler:    label.DefaultOptions(),
		Dataset: Dataset{
			Input:             "dataset.csv",
			Output:            "dataset_with_topics.csv",
			TextColumn:        "content_text",
			DateColumn:        "date",
			TitleColumn:       "title",
			LinkColumn:        "link",
			DescriptionColumn: "sapo",
		},
		Crawler: Crawler{
			BaseURL:             "https://vnexpress.net/the-thao",
			PageURLFormat:       "%s-p%d",
			TargetCount:         300,
			MaxPages:            50,
			MaxConsecutiveEmpty: 3,
			RequestsPerSecond:   10,
			Burst:               1,
			MaxRetries:          3,
			BackoffBase:         500 * time.Millisecond,
			BackoffMax:          10 * time.Second,
			Timeout:             10 * time.Second,
			UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			SkipLinkPatterns:    []string{"video", "podcast"},
			FetchArticleDate:    true,
			RequireDescription:  true,
			RequireDate:         true,
			Output:              "dataset.csv",
		},
		Artifacts: Artifacts{Backend: "file", Dir: "artifacts"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides using getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if ua := getenv(EnvUserAgent); ua != "" {
		c.Crawler.UserAgent = ua
	}
}

// Validate reports the first invalid key.
func (c Config) Validate() error {
	if c.Normalizer.Workers < 0 {
		return internalerr.Param("normalizer.workers", c.Normalizer.Workers, "must be >= 0")
	}
	if err := c.Vocabulary.Validate(); err != nil {
		return prefixed("vocabulary", err)
	}
	switch c.Encoder.Weighting {
	case encode.Count, encode.TFIDF:
	default:
		return internalerr.Param("encoder.weighting", c.Encoder.Weighting, "must be count or tfidf")
	}
	if err := c.Model.Validate(); err != nil {
		return prefixed("model", err)
	}
	if err := c.Labeler.Validate(); err != nil {
		return prefixed("labeler", err)
	}
	if c.Dataset.TextColumn == "" {
		return internalerr.Param("dataset.text_column", c.Dataset.TextColumn, "must not be empty")
	}
	switch c.Artifacts.Backend {
	case "file":
		if c.Artifacts.Dir == "" {
			return internalerr.Param("artifacts.dir", c.Artifacts.Dir, "must not be empty")
		}
	case "sqlite":
		if c.Artifacts.SQLitePath == "" {
			return internalerr.Param("artifacts.sqlite_path", c.Artifacts.SQLitePath, "must not be empty")
		}
	default:
		return internalerr.Param("artifacts.backend", c.Artifacts.Backend, "must be file or sqlite")
	}
	return c.Crawler.Validate()
}

// Validate checks the crawler section.
func (c Crawler) Validate() error {
	switch {
	case c.TargetCount <= 0:
		return internalerr.Param("crawler.target_count", c.TargetCount, "must be > 0")
	case c.MaxPages <= 0:
		return internalerr.Param("crawler.max_pages", c.MaxPages, "must be > 0")
	case c.MaxConsecutiveEmpty <= 0:
		return internalerr.Param("crawler.max_consecutive_empty", c.MaxConsecutiveEmpty, "must be > 0")
	case c.RequestsPerSecond <= 0:
		return internalerr.Param("crawler.requests_per_second", c.RequestsPerSecond, "must be > 0")
	case c.MaxRetries < 0:
		return internalerr.Param("crawler.max_retries", c.MaxRetries, "must be >= 0")
	}
	return nil
}

func prefixed(section string, err error) error {
	var pe *internalerr.ParamError
	if errors.As(err, &pe) {
		return internalerr.Param(section+"."+pe.Param, pe.Value, pe.Reason)
	}
	return err
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}
	return &sl, nil
}
