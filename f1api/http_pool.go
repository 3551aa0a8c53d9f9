package f1api

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// sharedTransport backs every pooled client so keep-alive connections to the
// API host survive across tools and timeouts.
var sharedTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	DialContext:           (&net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
	ForceAttemptHTTP2:     true,
	MaxIdleConns:          32,
	MaxIdleConnsPerHost:   16,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
}

// pooledClients maps a timeout to its *http.Client.
var pooledClients sync.Map

func pooledClient(timeout time.Duration) *http.Client {
	if existing, ok := pooledClients.Load(timeout); ok {
		return existing.(*http.Client)
	}
	client, _ := pooledClients.LoadOrStore(timeout, &http.Client{
		Timeout:   timeout,
		Transport: sharedTransport,
	})
	return client.(*http.Client)
}

// CloseIdleConnections drops idle keep-alive connections held by pooled clients.
func CloseIdleConnections() {
	sharedTransport.CloseIdleConnections()
}
