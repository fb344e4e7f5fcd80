package pkg

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"regexp"
	"strings"
)

var (
	localDockerIpRegex = regexp.MustCompile(`^172\.\d{1,3}\.0\.1:\d{1,5}`)
)

func IPIsLocal(ipAddr string) bool {
	// used in local development ?
	if strings.HasPrefix(ipAddr, "127.0.0.1:") || strings.HasPrefix(ipAddr, "[::1]:") {
		return true
	}

	// user within docker container ?
	return localDockerIpRegex.MatchString(ipAddr)
}

// ReadUserIP returns the client IP. X-Real-Ip and X-Forwarded-For are read only
// when the direct peer is in trustedProxies; otherwise the peer address is used.
// Local and docker-bridge addresses collapse to "localhost".
func ReadUserIP(r *http.Request, trustedProxies []netip.Prefix) (string, error) {
	ipAddr := r.RemoteAddr
	if isTrustedProxy(r.RemoteAddr, trustedProxies) {
		if realIP := strings.TrimSpace(r.Header.Get("X-Real-Ip")); realIP != "" {
			ipAddr = realIP
		} else if forwarded := forwardedClient(r.Header.Values("X-Forwarded-For"), trustedProxies); forwarded != "" {
			ipAddr = forwarded
		}
	}

	if IPIsLocal(ipAddr) {
		return "localhost", nil
	}

	if host, _, err := net.SplitHostPort(ipAddr); err == nil {
		ipAddr = host
	}

	ip := net.ParseIP(ipAddr)
	if ip == nil {
		return "", fmt.Errorf("ip addr %s is invalid", ipAddr)
	}

	return ip.String(), nil
}

// forwardedClient walks X-Forwarded-For from the nearest hop back and returns
// the first address that is not one of our proxies.
func forwardedClient(headers []string, trustedProxies []netip.Prefix) string {
	var hops []string
	for _, h := range headers {
		for _, hop := range strings.Split(h, ",") {
			if hop = strings.TrimSpace(hop); hop != "" {
				hops = append(hops, hop)
			}
		}
	}
	for i := len(hops) - 1; i >= 0; i-- {
		if !isTrustedProxy(hops[i], trustedProxies) {
			return hops[i]
		}
	}
	return ""
}

func isTrustedProxy(addr string, trustedProxies []netip.Prefix) bool {
	if len(trustedProxies) == 0 {
		return false
	}
	ip, err := parseAddr(addr)
	if err != nil {
		return false
	}
	for _, prefix := range trustedProxies {
		if prefix.Contains(ip) {
			return true
		}
	}
	return false
}

func parseAddr(addr string) (netip.Addr, error) {
	if addrPort, err := netip.ParseAddrPort(addr); err == nil {
		return addrPort.Addr().Unmap(), nil
	}
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return netip.Addr{}, err
	}
	return ip.Unmap(), nil
}
