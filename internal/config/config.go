package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"salon-chat-client/internal/env"
)

type (
	// Conf contains the widget runtime settings.
	Conf struct {
		API     API     `yaml:"api"`
		Chat    Chat    `yaml:"chat"`
		Session Session `yaml:"session"`
		Ops     Ops     `yaml:"ops"`
		Log     Log     `yaml:"log"`
	}

	API struct {
		BaseURL string `yaml:"base_url"`
	}

	Chat struct {
		WSBaseURL      string        `yaml:"ws_base_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		FAQCacheTTL    time.Duration `yaml:"faq_cache_ttl"`
	}

	Session struct {
		// Store selects where the session identifier lives: file or redis.
		Store     string `yaml:"store"`
		FilePath  string `yaml:"file_path"`
		RedisAddr string `yaml:"redis_addr"`
		RedisPass string `yaml:"redis_pass"`
	}

	Ops struct {
		ListenAddr string `yaml:"listen_addr"`
	}

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	}
)

func defaults() Conf {
	return Conf{
		API: API{BaseURL: "http://localhost:8000"},
		Chat: Chat{
			WSBaseURL:      "ws://localhost:8000",
			ReconnectDelay: 3 * time.Second,
			FAQCacheTTL:    5 * time.Minute,
		},
		Session: Session{Store: "file"},
		Ops:     Ops{ListenAddr: ""},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load reads the YAML file, then applies environment overrides. A missing
// path yields the defaults plus overrides so the widget runs with zero
// configuration.
func Load(path string) (Conf, error) {
	cnf := defaults()

	if path != "" {
		input, err := os.Open(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Conf{}, fmt.Errorf("open config: %w", err)
			}
		} else {
			defer input.Close()
			if err := yaml.NewDecoder(input).Decode(&cnf); err != nil {
				return Conf{}, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	applyEnv(&cnf)

	if cnf.Chat.ReconnectDelay <= 0 {
		cnf.Chat.ReconnectDelay = 3 * time.Second
	}
	if cnf.Session.Store != "file" && cnf.Session.Store != "redis" {
		return Conf{}, fmt.Errorf("config: unknown session store %q", cnf.Session.Store)
	}

	return cnf, nil
}

func applyEnv(cnf *Conf) {
	cnf.API.BaseURL = env.GetOrDefault(env.APIBaseURL, cnf.API.BaseURL)
	cnf.Chat.WSBaseURL = env.GetOrDefault(env.WSBaseURL, cnf.Chat.WSBaseURL)
	cnf.Session.Store = env.GetOrDefault(env.SessionStore, cnf.Session.Store)
	cnf.Session.FilePath = env.GetOrDefault(env.SessionFile, cnf.Session.FilePath)
	cnf.Session.RedisAddr = env.GetOrDefault(env.ChatRedisURL, cnf.Session.RedisAddr)
	cnf.Session.RedisPass = env.GetOrDefault(env.ChatRedisPass, cnf.Session.RedisPass)
	cnf.Ops.ListenAddr = env.GetOrDefault(env.OpsListenAddr, cnf.Ops.ListenAddr)
	cnf.Log.Level = env.GetOrDefault(env.LogLevel, cnf.Log.Level)

	if raw := env.Get(env.ReconnectDelay); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cnf.Chat.ReconnectDelay = d
		}
	}
}
