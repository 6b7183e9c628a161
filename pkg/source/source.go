// Package source provides the hierarchy data sources.
//
// A [Source] delivers the flat record list that the chart is built from,
// ordered by depth and then name. [Open] selects an implementation from a
// source URL:
//
//	sqlite:org.db                      SQLite file (modernc.org/sqlite)
//	postgres://user:pw@host/db         PostgreSQL (pgx)
//	mysql://user:pw@host:3306/db       MySQL (go-sql-driver/mysql)
//	mongodb://host/db?collection=units MongoDB collection
//	org.json, org.yaml, org.toml       record file
//
// [Cached] wraps any source with a [cache.Cache] so repeated runs skip the
// database round trip.
package source

import (
	"cmp"
	"context"
	"strings"
	"time"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/hierarchy"
	"github.com/matzehuels/organigram/pkg/io"
	"github.com/matzehuels/organigram/pkg/source/filesource"
	"github.com/matzehuels/organigram/pkg/source/mongosource"
	"github.com/matzehuels/organigram/pkg/source/sqlsource"
)

// Source delivers hierarchy records.
type Source interface {
	// Name is a short label for logs and reports ("sqlite", "file", ...).
	Name() string

	// Fetch returns all records, ordered by depth and then name.
	// An empty result is not an error.
	Fetch(ctx context.Context) ([]hierarchy.Record, error)

	// Close releases connections held by the source.
	Close() error
}

// Options tune how [Open] interprets a source URL.
type Options struct {
	// Schema names the table and columns for SQL sources.
	Schema sqlsource.Schema

	// ConnectAttempts bounds connection attempts to a database that is
	// unreachable. Zero means DefaultConnectAttempts.
	ConnectAttempts int

	// RetryDelay is the wait before the second attempt; it doubles after
	// each failure. Zero means DefaultRetryDelay.
	RetryDelay time.Duration
}

// Open returns the source for url.
func Open(ctx context.Context, url string, opts Options) (Source, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errs.New(errs.ErrCodeInvalidSource, "no source given")
	}

	attempts := cmp.Or(opts.ConnectAttempts, DefaultConnectAttempts)
	delay := cmp.Or(opts.RetryDelay, DefaultRetryDelay)

	switch Kind(url) {
	case KindMongo:
		cfg, err := mongosource.ConfigFromURI(url)
		if err != nil {
			return nil, err
		}
		return retryConnect(ctx, attempts, delay, func() (Source, error) {
			return mongosource.Open(ctx, cfg)
		})
	case KindSQL:
		dialect, dsn, err := sqlsource.ParseURL(url)
		if err != nil {
			return nil, err
		}
		return retryConnect(ctx, attempts, delay, func() (Source, error) {
			return sqlsource.Open(ctx, dialect, dsn, opts.Schema)
		})
	case KindFile:
		return filesource.New(url)
	default:
		return nil, errs.New(errs.ErrCodeInvalidSource,
			"cannot tell how to read %q (want sqlite:, postgres://, mysql://, mongodb:// or a .json/.yaml/.toml file)", Redact(url))
	}
}

// SourceKind classifies a source URL.
type SourceKind string

// Source kinds.
const (
	KindUnknown SourceKind = ""
	KindSQL     SourceKind = "sql"
	KindMongo   SourceKind = "mongo"
	KindFile    SourceKind = "file"
)

// Kind classifies url by scheme, falling back to the file extension.
func Kind(url string) SourceKind {
	lower := strings.ToLower(url)
	switch {
	case strings.HasPrefix(lower, "mongodb://"), strings.HasPrefix(lower, "mongodb+srv://"):
		return KindMongo
	case strings.HasPrefix(lower, "sqlite:"), strings.HasPrefix(lower, "sqlite3:"),
		strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"),
		strings.HasPrefix(lower, "mysql://"):
		return KindSQL
	}
	if _, err := io.FormatFromPath(url); err == nil {
		return KindFile
	}
	return KindUnknown
}

// Redact hides the password in a URL-style source for logging.
func Redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return url
	}
	userinfo := rest[:at]
	if user, _, hasPw := strings.Cut(userinfo, ":"); hasPw {
		return scheme + "://" + user + ":***@" + rest[at+1:]
	}
	return url
}
