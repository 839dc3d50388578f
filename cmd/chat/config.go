package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config defines the client-side environment variables.
type Config struct {
	// CHAT_STORE_ADDR points at a remote store; the store is embedded in the data dir when empty
	StoreAddr string `envconfig:"CHAT_STORE_ADDR"`
	DataDir   string `envconfig:"CHAT_DATA_DIR" default:".chat-garden"`
	// CHAT_ACTOR overrides the remembered session, embedded store only
	Actor    string `envconfig:"CHAT_ACTOR"`
	LogLevel string `envconfig:"CHAT_LOG_LEVEL" default:"ERROR"`
	// CHAT_COLOURS enables colorized notices
	Colours         bool          `envconfig:"CHAT_COLOURS" default:"true"`
	CensoredWords   string        `envconfig:"CHAT_CENSORED_WORDS"`
	CharReplacement string        `envconfig:"CHAT_CHARACTER_REPLACEMENT" default:"*"`
	NoticeTTL       time.Duration `envconfig:"CHAT_NOTICE_TTL" default:"5s"`
	Timeout         time.Duration `envconfig:"CHAT_TIMEOUT" default:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func (c Config) Embedded() bool {
	return c.StoreAddr == ""
}
