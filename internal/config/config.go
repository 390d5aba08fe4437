package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/gcfg.v1"
)

const DefaultPath = "./config/config.ini"

type (
	Config struct {
		WOOCOMMERCE struct {
			URL      string
			Key      string
			Secret   string
			User     string // WordPress user for wp/v2 (media, brands)
			Password string // WordPress application password
			RPS      int
		}
		SYNC struct {
			UploadImages      int
			MaxImages         int
			RowDelay          int // ms
			VariantBatch      int
			VariantBatchDelay int // ms
			DefaultCategory   string
			RulesSheet        string
			MetaPrefix        string
		}
		FEED struct {
			Path  string
			Sheet string
		}
		DBSQLITE struct {
			DB string
		}
		SERVICE struct {
			PORT int
		}
		TELEGRAM struct {
			BotToken string
			ChatID   int64
			Report   int
		}
		LOG struct {
			Debug int
			Dir   string
		}
	}
)

// Load parses an INI file, applies .env/environment overrides and fills defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if err := gcfg.ReadFileInto(c, path); err != nil {
		return nil, errors.Wrapf(err, "failed in gcfg.ReadFileInto(%s)", path)
	}

	// .env is optional
	_ = godotenv.Load()
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	override := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	override(&c.WOOCOMMERCE.Key, "WOO_KEY")
	override(&c.WOOCOMMERCE.Secret, "WOO_SECRET")
	override(&c.WOOCOMMERCE.User, "WP_USER")
	override(&c.WOOCOMMERCE.Password, "WP_APP_PASSWORD")
	override(&c.TELEGRAM.BotToken, "TELEGRAM_TOKEN")
}

// Default returns the configuration used for keys the INI file leaves out.
func Default() *Config {
	c := new(Config)
	c.WOOCOMMERCE.RPS = 0
	c.SYNC.UploadImages = 1
	c.SYNC.MaxImages = 5
	c.SYNC.RowDelay = 150
	c.SYNC.VariantBatch = 100
	c.SYNC.VariantBatchDelay = 100
	c.SYNC.DefaultCategory = "Otros"
	c.SYNC.RulesSheet = "CATEGORÍAS"
	c.SYNC.MetaPrefix = "_feed_"
	c.FEED.Path = "feed.xlsx"
	c.DBSQLITE.DB = "db.db"
	c.SERVICE.PORT = 8080
	c.LOG.Dir = "logs"
	return c
}
