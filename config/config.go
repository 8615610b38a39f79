package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	Proxy     ProxyConfig
	Scheduler SchedulerConfig
	S3        S3Config
	Client    ClientConfig
	DBPath    string
	DBURL     string
	LogLevel  string
	LogFile   string
	Sites     map[string]*SiteConfig
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

type SearchConfig struct {
	SourceTimeout time.Duration
	DelayMS       int
}

type ProxyConfig struct {
	URL string
}

type SchedulerConfig struct {
	FollowUpCron string
	BackupCron   string
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

// Enabled reports whether lead backups have somewhere to go.
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// ClientConfig configures cmd/carfinder.
type ClientConfig struct {
	APIURL    string
	LeadStore string // local or remote
	LeadsDir  string
	Timeout   time.Duration
}

const (
	LeadStoreLocal  = "local"
	LeadStoreRemote = "remote"
)

type SiteConfig struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Handler     string            `yaml:"handler"`
	Enabled     bool              `yaml:"enabled"`
	RateLimitMS int               `yaml:"rate_limit_ms"`
	Endpoints   map[string]string `yaml:"endpoints"`
	Selectors   map[string]string `yaml:"selectors"`
	Locations   map[string]string `yaml:"locations"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Addr:           getEnv("LISTEN_ADDR", ":5000"),
			AllowedOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		},
		Search: SearchConfig{
			SourceTimeout: getEnvDuration("SEARCH_TIMEOUT", 12*time.Second),
			DelayMS:       getEnvInt("SCRAPE_DELAY_MS", 500),
		},
		Proxy: ProxyConfig{
			URL: os.Getenv("PROXY_URL"),
		},
		Scheduler: SchedulerConfig{
			FollowUpCron: getEnv("FOLLOWUP_CRON", "0 8 * * *"),
			BackupCron:   os.Getenv("BACKUP_CRON"),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			Prefix:          getEnv("S3_PREFIX", "carfinder/backups"),
		},
		Client: ClientConfig{
			APIURL:    getEnv("CARFINDER_API", "http://localhost:5000"),
			LeadStore: getEnv("LEAD_STORE", LeadStoreLocal),
			LeadsDir:  getEnv("LEADS_DIR", defaultLeadsDir()),
			Timeout:   getEnvDuration("CARFINDER_TIMEOUT", 90*time.Second),
		},
		DBPath:   getEnv("DB_PATH", "notes.db"),
		DBURL:    os.Getenv("DATABASE_URL"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", "carfinder.log"),
		Sites:    make(map[string]*SiteConfig),
	}

	if err := cfg.loadSiteConfigs(getEnv("SITES_DIR", "config/sites")); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSiteConfigs(configDir string) error {
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(configDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		site, err := ParseSiteConfig(data)
		if err != nil {
			return err
		}

		c.Sites[site.ID] = site
	}

	return nil
}

// ParseSiteConfig decodes one site YAML file.
func ParseSiteConfig(data []byte) (*SiteConfig, error) {
	var site SiteConfig
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, err
	}
	if site.Handler == "" {
		site.Handler = "html"
	}
	return &site, nil
}

// SiteIDs returns the configured site IDs in a stable order.
func (c *Config) SiteIDs() []string {
	ids := make([]string, 0, len(c.Sites))
	for id := range c.Sites {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func defaultLeadsDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".carfinder"
	}
	return filepath.Join(dir, "carfinder")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
