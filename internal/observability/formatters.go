// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/jonathan/jobboard/internal/config"
	"github.com/jonathan/jobboard/internal/server/ratelimit"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintServeConfig outputs the resolved server configuration with credentials redacted.
func (p *Printer) PrintServeConfig(cfg config.Config) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Port:          %d\n", cfg.Port))
	sb.WriteString(fmt.Sprintf("Store:         %s\n", cfg.Store))
	if cfg.Store == config.StorePostgres {
		sb.WriteString(fmt.Sprintf("Database:      %s\n", RedactURL(cfg.DatabaseURL)))
		sb.WriteString(fmt.Sprintf("Auto-migrate:  %t\n", cfg.AutoMigrate))
	}
	if cfg.RedisURL != "" {
		sb.WriteString(fmt.Sprintf("Rate limits:   redis %s\n", RedactURL(cfg.RedisURL)))
	} else {
		sb.WriteString("Rate limits:   in-process\n")
	}

	if len(cfg.CORSOrigins) == 0 {
		sb.WriteString("CORS origins:  *")
	} else {
		sb.WriteString("CORS origins:\n")
		count := min(len(cfg.CORSOrigins), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", cfg.CORSOrigins[i]))
		}
		if len(cfg.CORSOrigins) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(cfg.CORSOrigins)-maxItemsToShow))
		}
	}

	p.printBox("SERVER CONFIGURATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRateLimits outputs the default and per-endpoint request limits.
func (p *Printer) PrintRateLimits(limits *ratelimit.Config) {
	if limits == nil {
		return
	}
	if !limits.Enabled {
		p.printBox("RATE LIMITS", "disabled")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Default: %d per %s\n", limits.DefaultLimit, limits.DefaultWindow))
	for _, ep := range limits.EndpointConfigs {
		path := ep.Path
		if strings.HasSuffix(path, "/") {
			path += "*"
		}
		sb.WriteString(fmt.Sprintf("  %-6s %-16s %d per %s", ep.Method, path, ep.Limit, ep.Window))
		if ep.Burst > 0 {
			sb.WriteString(fmt.Sprintf(", burst %d", ep.Burst))
		}
		sb.WriteString("\n")
	}
	if n := len(limits.Whitelist); n > 0 {
		sb.WriteString(fmt.Sprintf("Whitelisted clients: %d\n", n))
	}
	if n := len(limits.Blacklist); n > 0 {
		sb.WriteString(fmt.Sprintf("Blacklisted clients: %d\n", n))
	}

	p.printBox("RATE LIMITS", strings.TrimSuffix(sb.String(), "\n"))
}

// RedactURL hides the password of a connection URL.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(invalid url)"
	}
	return u.Redacted()
}
