package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Endpoint is a resolved PACS destination.
type Endpoint struct {
	AETitle string
	Host    string
	Port    int
}

// Validate checks configured values for internal consistency. Node triples are
// validated eagerly so a bad alias fails at startup rather than mid-send.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	for alias, triple := range c.Nodes {
		if _, err := parseNode(alias, triple); err != nil {
			return err
		}
	}
	return nil
}

// ResolveNode returns the endpoint configured under the given alias.
func (c *Config) ResolveNode(alias string) (Endpoint, error) {
	triple, ok := c.Nodes[alias]
	if !ok {
		return Endpoint{}, fmt.Errorf("alias %q not found in configuration", alias)
	}
	return parseNode(alias, triple)
}

func parseNode(alias, triple string) (Endpoint, error) {
	parts := strings.Split(triple, ",")
	if len(parts) != 3 {
		return Endpoint{}, fmt.Errorf("nodes.%s: expected format AE_TITLE,HOST,PORT, got %q", alias, triple)
	}
	aeTitle := strings.TrimSpace(parts[0])
	host := strings.TrimSpace(parts[1])
	portText := strings.TrimSpace(parts[2])
	if aeTitle == "" || host == "" {
		return Endpoint{}, fmt.Errorf("nodes.%s: AE title and host must be non-empty", alias)
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		return Endpoint{}, fmt.Errorf("nodes.%s: invalid port %q", alias, portText)
	}
	return Endpoint{AETitle: aeTitle, Host: host, Port: port}, nil
}
