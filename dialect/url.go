package dialect

import (
	"fmt"
	"net/url"
	"strings"
)

// URL is a parsed database URL of the form
//
//	backend+driver:///relative/path.db?isolation_level=DEFERRED
//	backend+driver:////absolute/path.db
//	backend+driver://                  (in-memory)
type URL struct {
	Scheme   string
	Database string // Empty means an in-memory database.
	Query    url.Values
}

// ParseURL parses raw. Host, port and credentials are meaningless for a file
// database and are rejected.
func ParseURL(raw string) (*URL, error) {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok || scheme == "" {
		return nil, fmt.Errorf("dialect: invalid URL %q: missing scheme", raw)
	}
	path, rawQuery, _ := strings.Cut(rest, "?")
	if path != "" && !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("dialect: invalid URL %q: unexpected host", raw)
	}
	database, err := url.PathUnescape(strings.TrimPrefix(path, "/"))
	if err != nil {
		return nil, fmt.Errorf("dialect: invalid URL %q: %w", raw, err)
	}
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("dialect: invalid URL %q: %w", raw, err)
	}
	return &URL{Scheme: scheme, Database: database, Query: query}, nil
}

// EntryPoint returns the registry name the URL resolves to: "sqlite+apsw"
// becomes "sqlite.apsw".
func (u *URL) EntryPoint() string {
	return strings.ReplaceAll(u.Scheme, "+", ".")
}

func (u *URL) String() string {
	s := u.Scheme + ":///" + u.Database
	if len(u.Query) > 0 {
		s += "?" + u.Query.Encode()
	}
	return s
}
