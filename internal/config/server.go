package config

import (
	"net"
	"strings"
)

const DefaultListenAddr = ":8080"

func GetAppName() string {
	return GetEnvOrDefault("APP_NAME", "Rizzard")
}

func GetListenAddr() string {
	return GetEnvOrDefault("LISTEN_ADDR", DefaultListenAddr)
}

// GetWidgetAPIURL returns the proxy route the widget sessions stream from.
// By default it points back at this server's own /api/chat.
func GetWidgetAPIURL() string {
	if url := GetEnvOrDefault("WIDGET_API_URL", ""); url != "" {
		return url
	}
	return defaultWidgetAPIURL(GetListenAddr())
}

func defaultWidgetAPIURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		host, port = "", strings.TrimPrefix(listenAddr, ":")
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/api/chat"
}
