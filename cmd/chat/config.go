package main

import "time"

type Config struct {
	// CHAT_SERVER_URL is the websocket endpoint of the chat relay.
	ServerURL string `env:"CHAT_SERVER_URL,required=true"`
	// CHAT_TOKEN carries the login token; when set, the local identity is
	// read from its claims and CHAT_USER_ID / CHAT_USERNAME are ignored.
	Token       string `env:"CHAT_TOKEN"`
	UserID      string `env:"CHAT_USER_ID"`
	Username    string `env:"CHAT_USERNAME"`
	OtherUserID string `env:"CHAT_OTHER_USER_ID,required=true"`

	LogLevel      string        `env:"LOG_LEVEL,default=info"`
	ReconnectWait time.Duration `env:"RECONNECT_WAIT,default=2s"`
	SinkTimeout   time.Duration `env:"SINK_TIMEOUT,default=1s"`
	StatsInterval time.Duration `env:"STATS_INTERVAL,default=30s"`
}
