package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/AnuragC07/curatd/internal/relevance"
)

const (
	configPathEnv     = "CURATD_CONFIG"
	portEnv           = "PORT"
	emailAPIKeyEnv    = "BREVO_API_KEY"
	emailAPIKeyAlias  = "EMAIL_API_KEY"
	emailSenderEnv    = "EMAIL_SENDER"
	historyPathEnv    = "CURATD_HISTORY_PATH"
	historyBackendEnv = "CURATD_HISTORY_BACKEND"
	logLevelEnv       = "CURATD_LOG_LEVEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"

	// Scanner strategy names.
	ScannerPage    = "page"
	ScannerYouTube = "youtube"

	// History backends.
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server   ServerConfig  `yaml:"server"`
	Logging  LoggingConfig `yaml:"logging"`
	History  HistoryConfig `yaml:"history"`
	Fetch    FetchConfig   `yaml:"fetch"`
	Email    EmailConfig   `yaml:"email"`
	Digest   DigestConfig  `yaml:"digest"`
	Keywords []string      `yaml:"keywords"`
	Articles []Source      `yaml:"articles"`
	Videos   []Source      `yaml:"videos"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Port          string `yaml:"port"`
	CORSOrigin    string `yaml:"corsOrigin"`
	VerboseErrors bool   `yaml:"verboseErrors"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// HistoryConfig selects where selection history lives.
type HistoryConfig struct {
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	Window   int    `yaml:"window"`
	Capacity int    `yaml:"capacity"`
}

// FetchConfig tunes outbound requests to content sources.
type FetchConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	MinDelay      time.Duration `yaml:"minDelay"`
	MaxDelay      time.Duration `yaml:"maxDelay"`
	HostInterval  time.Duration `yaml:"hostInterval"`
	UserAgents    []string      `yaml:"userAgents"`
	ArticleLimit  int           `yaml:"articleLimit"`
	ArticleWindow int           `yaml:"articleWindow"`
	VideoLimit    int           `yaml:"videoLimit"`
	VideoWindow   int           `yaml:"videoWindow"`
	FeedBase      string        `yaml:"feedBase"`
}

// EmailConfig wires the transactional email provider.
type EmailConfig struct {
	Endpoint    string `yaml:"endpoint"`
	APIKey      string `yaml:"apiKey"`
	SenderEmail string `yaml:"senderEmail"`
	SenderName  string `yaml:"senderName"`
	Subject     string `yaml:"subject"`
}

// DigestConfig describes the optional periodic digest sent while serving.
type DigestConfig struct {
	Enabled    bool           `yaml:"enabled"`
	Interval   time.Duration  `yaml:"interval"`
	Recipients []string       `yaml:"recipients"`
	Articles   int            `yaml:"articles"`
	Videos     int            `yaml:"videos"`
	Telegram   TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Source describes one site or channel with its scanner strategy.
type Source struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	URL     string            `yaml:"url"`
	Options map[string]string `yaml:"options"`
}

// Load reads .env and YAML configuration (if present) and applies environment overrides.
// An empty path falls back to $CURATD_CONFIG.
func Load(path string) Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("config: cannot read .env: %v", err)
	}

	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.sanitize()

	return cfg
}

// EmailEnabled reports whether the email provider can be called.
func (c Config) EmailEnabled() bool {
	return c.Email.APIKey != "" && c.Email.Endpoint != "" && c.Email.SenderEmail != ""
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(portEnv); v != "" {
		c.Server.Port = v
	}

	if v := os.Getenv(emailAPIKeyEnv); v != "" {
		c.Email.APIKey = v
	} else if v := os.Getenv(emailAPIKeyAlias); v != "" {
		c.Email.APIKey = v
	}

	if v := os.Getenv(emailSenderEnv); v != "" {
		c.Email.SenderEmail = v
	}

	if v := os.Getenv(historyPathEnv); v != "" {
		c.History.Path = v
	}

	if v := os.Getenv(historyBackendEnv); v != "" {
		c.History.Backend = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Digest.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Digest.Telegram.ChatID = v
	}
}

// sanitize repairs values a merged file may have left inconsistent.
func (c *Config) sanitize() {
	def := defaultConfig()

	switch c.History.Backend {
	case BackendJSON, BackendSQLite:
	default:
		log.Printf("config: unknown history backend %q, reverting to %s", c.History.Backend, BackendJSON)
		c.History.Backend = BackendJSON
	}
	if c.History.Window <= 0 {
		c.History.Window = def.History.Window
	}
	if c.History.Capacity <= 0 {
		c.History.Capacity = def.History.Capacity
	}
	if c.History.Window > c.History.Capacity {
		c.History.Window = c.History.Capacity
	}

	if c.Fetch.MinDelay < 0 {
		c.Fetch.MinDelay = 0
	}
	if c.Fetch.MaxDelay < c.Fetch.MinDelay {
		c.Fetch.MaxDelay = c.Fetch.MinDelay
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = def.Fetch.Timeout
	}
	if len(c.Fetch.UserAgents) == 0 {
		c.Fetch.UserAgents = def.Fetch.UserAgents
	}

	if c.Digest.Interval <= 0 {
		c.Digest.Interval = def.Digest.Interval
	}

	if len(c.Keywords) == 0 {
		c.Keywords = def.Keywords
	}
	if len(c.Articles) == 0 {
		c.Articles = def.Articles
	}
	if len(c.Videos) == 0 {
		c.Videos = def.Videos
	}
	for i := range c.Articles {
		if c.Articles[i].Scanner == "" {
			c.Articles[i].Scanner = ScannerPage
		}
	}
	for i := range c.Videos {
		if c.Videos[i].Scanner == "" {
			c.Videos[i].Scanner = ScannerYouTube
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.CORSOrigin != "" {
		base.Server.CORSOrigin = override.Server.CORSOrigin
	}
	if override.Server.VerboseErrors {
		base.Server.VerboseErrors = true
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.History.Backend != "" {
		base.History.Backend = override.History.Backend
	}
	if override.History.Path != "" {
		base.History.Path = override.History.Path
	}
	if override.History.Window != 0 {
		base.History.Window = override.History.Window
	}
	if override.History.Capacity != 0 {
		base.History.Capacity = override.History.Capacity
	}

	if override.Fetch.Timeout != 0 {
		base.Fetch.Timeout = override.Fetch.Timeout
	}
	if override.Fetch.MinDelay != 0 {
		base.Fetch.MinDelay = override.Fetch.MinDelay
	}
	if override.Fetch.MaxDelay != 0 {
		base.Fetch.MaxDelay = override.Fetch.MaxDelay
	}
	if override.Fetch.HostInterval != 0 {
		base.Fetch.HostInterval = override.Fetch.HostInterval
	}
	if len(override.Fetch.UserAgents) > 0 {
		base.Fetch.UserAgents = override.Fetch.UserAgents
	}
	if override.Fetch.ArticleLimit != 0 {
		base.Fetch.ArticleLimit = override.Fetch.ArticleLimit
	}
	if override.Fetch.ArticleWindow != 0 {
		base.Fetch.ArticleWindow = override.Fetch.ArticleWindow
	}
	if override.Fetch.VideoLimit != 0 {
		base.Fetch.VideoLimit = override.Fetch.VideoLimit
	}
	if override.Fetch.VideoWindow != 0 {
		base.Fetch.VideoWindow = override.Fetch.VideoWindow
	}
	if override.Fetch.FeedBase != "" {
		base.Fetch.FeedBase = override.Fetch.FeedBase
	}

	if override.Email.Endpoint != "" {
		base.Email.Endpoint = override.Email.Endpoint
	}
	if override.Email.APIKey != "" {
		base.Email.APIKey = override.Email.APIKey
	}
	if override.Email.SenderEmail != "" {
		base.Email.SenderEmail = override.Email.SenderEmail
	}
	if override.Email.SenderName != "" {
		base.Email.SenderName = override.Email.SenderName
	}
	if override.Email.Subject != "" {
		base.Email.Subject = override.Email.Subject
	}

	if override.Digest.Enabled {
		base.Digest.Enabled = true
	}
	if override.Digest.Interval != 0 {
		base.Digest.Interval = override.Digest.Interval
	}
	if len(override.Digest.Recipients) > 0 {
		base.Digest.Recipients = override.Digest.Recipients
	}
	if override.Digest.Articles != 0 {
		base.Digest.Articles = override.Digest.Articles
	}
	if override.Digest.Videos != 0 {
		base.Digest.Videos = override.Digest.Videos
	}
	if override.Digest.Telegram.BotToken != "" {
		base.Digest.Telegram.BotToken = override.Digest.Telegram.BotToken
	}
	if override.Digest.Telegram.ChatID != "" {
		base.Digest.Telegram.ChatID = override.Digest.Telegram.ChatID
	}

	if len(override.Keywords) > 0 {
		base.Keywords = override.Keywords
	}
	if len(override.Articles) > 0 {
		base.Articles = override.Articles
	}
	if len(override.Videos) > 0 {
		base.Videos = override.Videos
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server:  ServerConfig{Port: "10000", CORSOrigin: "*"},
		Logging: LoggingConfig{Level: "info"},
		History: HistoryConfig{
			Backend:  BackendJSON,
			Path:     "content_history.json",
			Window:   50,
			Capacity: 100,
		},
		Fetch: FetchConfig{
			Timeout:      12 * time.Second,
			MinDelay:     1 * time.Second,
			MaxDelay:     4 * time.Second,
			HostInterval: 2 * time.Second,
			UserAgents: []string{
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
				"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
			},
			ArticleLimit:  5,
			ArticleWindow: 10,
			VideoLimit:    3,
			VideoWindow:   20,
			FeedBase:      "https://www.youtube.com/feeds/videos.xml",
		},
		Email: EmailConfig{
			Endpoint:   "https://api.brevo.com/v3/smtp/email",
			SenderName: "curatd",
			Subject:    "Your productivity newsletter",
		},
		Digest: DigestConfig{
			Interval: 24 * time.Hour,
			Articles: 2,
			Videos:   2,
		},
		Keywords: append([]string(nil), relevance.DefaultKeywords...),
		Articles: []Source{
			{Name: "zenhabits.net", Scanner: ScannerPage, URL: "https://zenhabits.net"},
			{Name: "lifehacker.com", Scanner: ScannerPage, URL: "https://www.lifehacker.com/tag/productivity"},
			{Name: "medium.com", Scanner: ScannerPage, URL: "https://medium.com/tag/productivity"},
			{Name: "fastcompany.com", Scanner: ScannerPage, URL: "https://www.fastcompany.com/section/work-life"},
			{Name: "hbr.org", Scanner: ScannerPage, URL: "https://hbr.org/topic/productivity"},
			{Name: "inc.com", Scanner: ScannerPage, URL: "https://www.inc.com/topic/productivity"},
		},
		Videos: []Source{
			{Name: "Ali Abdaal", Scanner: ScannerYouTube, URL: "https://www.youtube.com/@aliabdaal/videos"},
			{Name: "Thomas Frank", Scanner: ScannerYouTube, URL: "https://www.youtube.com/@thomasfrank/videos"},
			{Name: "Matt D'Avella", Scanner: ScannerYouTube, URL: "https://www.youtube.com/@mattdavella/videos"},
			{Name: "Better Ideas", Scanner: ScannerYouTube, URL: "https://www.youtube.com/@betterideas/videos"},
			{Name: "The Modern Healthspan", Scanner: ScannerYouTube, URL: "https://www.youtube.com/@TheModernHealthspan/videos"},
		},
	}
}
