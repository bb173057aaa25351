package pkg

import (
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
)

var (
	localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1:\d{1,5}`)
)

// IPIsLocal reports whether ipAddr (host:port) is the loopback or a docker
// bridge gateway.
func IPIsLocal(ipAddr string) bool {
	if strings.HasPrefix(ipAddr, "127.0.0.1:") {
		return true
	}
	return localDockerIpRegex.MatchString(ipAddr)
}

// ReadUserIP returns the client address of r, preferring the proxy headers.
// Only the first (client) entry of X-Forwarded-For is used.
func ReadUserIP(r *http.Request) (string, error) {
	ipAddr := r.Header.Get("X-Real-Ip")
	if ipAddr == "" {
		if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
			ipAddr = strings.TrimSpace(strings.Split(forwarded, ",")[0])
		}
	}
	if ipAddr == "" {
		ipAddr = r.RemoteAddr
	}

	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}

	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}
	if net.ParseIP(ipAddr) == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}
	return ipAddr, nil
}
