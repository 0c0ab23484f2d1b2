// Package ratelimit provides per-client request limits for the API, backed
// either by in-process token buckets or by a shared Redis counter.
package ratelimit

import (
	"context"
	"time"
)

// Allower decides whether a client's request may proceed.
type Allower interface {
	Allow(ctx context.Context, clientID, path, method string) (bool, Info)
	Stop()
}

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig is used when no configuration is given.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       make(map[string]bool),
		Blacklist:       make(map[string]bool),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// rule is the limit that applies to one client and endpoint group.
type rule struct {
	key    string
	limit  int
	window time.Duration
	burst  int
}

// resolve picks the rule for a request. A non-nil Info means the request
// bypasses limiting and Info.Allowed is final.
func (c *Config) resolve(clientID, path, method string) (rule, *Info) {
	if !c.Enabled || c.Whitelist[clientID] {
		return rule{}, &Info{Allowed: true}
	}
	if c.Blacklist[clientID] {
		return rule{}, &Info{Allowed: false}
	}

	ep := MatchEndpoint(path, method, c.EndpointConfigs)
	if ep == nil {
		if c.DefaultLimit <= 0 {
			return rule{}, &Info{Allowed: true}
		}
		return rule{
			key:    clientID + ":default",
			limit:  c.DefaultLimit,
			window: c.DefaultWindow,
			burst:  c.DefaultLimit,
		}, nil
	}
	if ep.Limit <= 0 {
		return rule{}, &Info{Allowed: true}
	}

	burst := ep.Burst
	if burst <= 0 {
		burst = ep.Limit
	}
	return rule{
		key:    clientID + ":" + ep.Method + " " + ep.Path,
		limit:  ep.Limit,
		window: ep.Window,
		burst:  burst,
	}, nil
}
