package env

import (
	"os"
)

const (
	APIBaseURL     = "SALON_API_URL"
	WSBaseURL      = "SALON_WS_URL"
	SessionStore   = "CHAT_SESSION_STORE"
	SessionFile    = "CHAT_SESSION_FILE"
	ChatRedisURL   = "CHAT_REDIS_URL"
	ChatRedisPass  = "CHAT_REDIS_PASS"
	OpsListenAddr  = "OPS_LISTEN_ADDR"
	LogLevel       = "LOG_LEVEL"
	ReconnectDelay = "CHAT_RECONNECT_DELAY"
)

func Get(key string) string {
	return os.Getenv(key)
}

func GetOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func MustGet(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("env: required environment variable not set: " + key)
	}
	return val
}
