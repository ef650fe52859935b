package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const DefaultPath = "jeeves.toml"

// Config represents the bot configuration file.
type Config struct {
	Discord DiscordConfig     `toml:"discord"`
	Catalog CatalogConfig     `toml:"catalog"`
	Search  SearchConfig      `toml:"search"`
	Server  ServerConfig      `toml:"server"`
	Log     LogConfig         `toml:"log"`
	Aliases map[string]string `toml:"aliases"`
	Symbols map[string]string `toml:"symbols"`
	Links   map[string]string `toml:"links"`
}

type DiscordConfig struct {
	Token            string  `toml:"token"`
	OwnerID          string  `toml:"owner_id"`
	Prefix           string  `toml:"prefix"`
	RepliesPerSecond float64 `toml:"replies_per_second"`
	ReplyBurst       int     `toml:"reply_burst"`
}

type CatalogConfig struct {
	APIBaseURL      string   `toml:"api_base_url"`
	CardURLBase     string   `toml:"card_url_base"`
	ImageURLBase    string   `toml:"image_url_base"`
	FetchTimeout    Duration `toml:"fetch_timeout"`
	RefreshInterval Duration `toml:"refresh_interval"`
}

type SearchConfig struct {
	MaxSearches int `toml:"max_searches"`
	CacheSize   int `toml:"cache_size"`
}

type ServerConfig struct {
	Addr             string   `toml:"addr"`
	DBPath           string   `toml:"db_path"`
	CORSOrigins      []string `toml:"cors_origins"`
	AdminToken       string   `toml:"admin_token"`
	HistoryRetention Duration `toml:"history_retention"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Duration decodes TOML strings such as "30s" or "12h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Discord: DiscordConfig{
			Prefix:           "!",
			RepliesPerSecond: 1,
			ReplyBurst:       5,
		},
		Catalog: CatalogConfig{
			APIBaseURL:   "https://netrunnerdb.com/api/2.0/public",
			CardURLBase:  "https://netrunnerdb.com/en/card",
			ImageURLBase: "https://netrunnerdb.com/card_image",
			FetchTimeout: Duration{30 * time.Second},
		},
		Search: SearchConfig{
			MaxSearches: 5,
			CacheSize:   512,
		},
		Server: ServerConfig{
			Addr:             ":8080",
			CORSOrigins:      []string{"http://localhost:5173", "http://localhost:3000"},
			HistoryRetention: Duration{30 * 24 * time.Hour},
		},
		Log: LogConfig{
			Level: "info",
		},
		Aliases: map[string]string{},
		Links: map[string]string{
			"trans_agenda": "https://cdn.discordapp.com/attachments/732385125039472692/866103176067547156/the_trans_agenda.png",
			"holy_hell":    "https://cdn.discordapp.com/attachments/732385125039472692/868392291696533504/holy_hell.png",
			"timing":       "https://cdn.discordapp.com/attachments/653990064207953921/837916163149135882/rulesRUNNNNNNN.png",
		},
	}
}

// Load reads the config file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		c.Discord.Token = token
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		c.Server.DBPath = dbPath
	}
	if adminToken := os.Getenv("JEEVES_ADMIN_TOKEN"); adminToken != "" {
		c.Server.AdminToken = adminToken
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = strings.Split(origins, ",")
	}
}

func (c *Config) Validate() error {
	if c.Search.MaxSearches <= 0 {
		return fmt.Errorf("search.max_searches must be positive, got %d", c.Search.MaxSearches)
	}
	if c.Discord.Prefix == "" {
		return fmt.Errorf("discord.prefix must not be empty")
	}
	if c.Catalog.FetchTimeout.Duration <= 0 {
		return fmt.Errorf("catalog.fetch_timeout must be positive")
	}
	if c.Catalog.RefreshInterval.Duration < 0 {
		return fmt.Errorf("catalog.refresh_interval must not be negative")
	}
	for alias, title := range c.Aliases {
		if strings.TrimSpace(alias) == "" || strings.TrimSpace(title) == "" {
			return fmt.Errorf("alias %q -> %q: both sides must be non-empty", alias, title)
		}
	}
	return nil
}
