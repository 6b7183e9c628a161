package sqlsource

import (
	"net/url"
	"strings"

	"github.com/go-sql-driver/mysql"

	errs "github.com/matzehuels/organigram/pkg/errors"
)

// ParseURL maps a source URL to a dialect and a driver DSN.
//
//	sqlite:org.db, sqlite:///var/lib/org.db   -> sqlite, file path
//	postgres://user:pw@host/db?sslmode=off    -> pgx, URL unchanged
//	mysql://user:pw@host:3306/db?tls=true     -> mysql, user:pw@tcp(host:3306)/db?tls=true
func ParseURL(raw string) (Dialect, string, error) {
	scheme, rest, ok := strings.Cut(raw, ":")
	if !ok {
		return "", "", errs.New(errs.ErrCodeInvalidSource, "source %q has no scheme", raw)
	}

	switch strings.ToLower(scheme) {
	case "sqlite", "sqlite3":
		path := strings.TrimPrefix(rest, "//")
		if path == "" {
			return "", "", errs.New(errs.ErrCodeInvalidSource, "sqlite source needs a file path")
		}
		return DialectSQLite, path, nil
	case "postgres", "postgresql":
		return DialectPostgres, raw, nil
	case "mysql":
		dsn, err := mysqlDSN(raw)
		if err != nil {
			return "", "", err
		}
		return DialectMySQL, dsn, nil
	default:
		return "", "", errs.New(errs.ErrCodeInvalidSource, "unsupported SQL scheme %q", scheme)
	}
}

// mysqlDSN converts a mysql:// URL into the driver's native DSN format.
func mysqlDSN(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidSource, err, "parse mysql URL")
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" && u.Host != "" {
		cfg.Addr = u.Host + ":3306"
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	if q := u.Query(); len(q) > 0 {
		cfg.Params = make(map[string]string, len(q))
		for k := range q {
			cfg.Params[k] = q.Get(k)
		}
	}
	if cfg.DBName == "" {
		return "", errs.New(errs.ErrCodeInvalidSource, "mysql URL needs a database name")
	}
	return cfg.FormatDSN(), nil
}
