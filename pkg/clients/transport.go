package clients

import (
	"net"
	"net/http"
	"time"
)

// DefaultTransport returns an HTTP transport sized for a handful of metered
// upstream APIs. Connections per host are capped so a stalled upstream cannot
// pile up sockets while the fetch pool keeps issuing queries.
func DefaultTransport() *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxConnsPerHost:     16,
		MaxIdleConnsPerHost: 4,
		MaxIdleConns:        32,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
