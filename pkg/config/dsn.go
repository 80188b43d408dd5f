package config

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const defaultPostgresPort = 5432

// applyURL overwrites the discrete connection fields with the parts of URL.
// Both postgres:// and postgresql:// are accepted; query parameters other
// than sslmode are kept in Options.
func (c *DatabaseConfig) applyURL() error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("invalid database URL scheme %q", u.Scheme)
	}

	port := defaultPostgresPort
	if p := u.Port(); p != "" {
		if port, err = strconv.Atoi(p); err != nil {
			return fmt.Errorf("invalid database port %q", p)
		}
	}

	c.Host = u.Hostname()
	c.Port = port
	c.Database = strings.TrimPrefix(u.Path, "/")
	c.User, c.Password = "", ""
	if u.User != nil {
		c.User = u.User.Username()
		c.Password, _ = u.User.Password()
	}

	c.SSLMode = "disable"
	c.Options = nil
	for key, values := range u.Query() {
		if len(values) == 0 {
			continue
		}
		if key == "sslmode" {
			c.SSLMode = values[0]
			continue
		}
		if c.Options == nil {
			c.Options = make(map[string]string)
		}
		c.Options[key] = values[0]
	}
	return nil
}

// DSN returns the libpq key/value connection string. A parseable URL wins
// over the discrete fields.
func (c *DatabaseConfig) DSN() string {
	cfg := *c
	if cfg.URL != "" {
		if err := cfg.applyURL(); err != nil {
			cfg = *c
		}
	}

	pairs := []string{
		"host=" + dsnValue(cfg.Host),
		"port=" + strconv.Itoa(cfg.Port),
		"user=" + dsnValue(cfg.User),
		"password=" + dsnValue(cfg.Password),
		"dbname=" + dsnValue(cfg.Database),
		"sslmode=" + dsnValue(cfg.SSLMode),
	}

	keys := make([]string, 0, len(cfg.Options))
	for k := range cfg.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pairs = append(pairs, k+"="+dsnValue(cfg.Options[k]))
	}
	return strings.Join(pairs, " ")
}

// dsnValue quotes v when libpq would otherwise split or misread it.
func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
