// Package httpx holds the shared HTTP client used for outbound calls to the
// payment gateway and the Telegram Bot API.
package httpx

import (
	"net"
	"net/http"
	"time"
)

// Both gateways sit behind TLS load balancers; the pool is small because we
// only ever talk to two hosts.
var defaultClient = &http.Client{
	Timeout: 15 * time.Second,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	},
}

func Client() *http.Client { return defaultClient }
