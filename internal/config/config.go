package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	AppPort string
	AppEnv  string

	DBDriver      string
	DBAutoMigrate bool
	SQLitePath    string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	// RedisAddr empty disables idempotency.
	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	StrictDateFilter bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// Load reads the environment. Values from files (default ".env") fill in
// variables that are not already set; a missing file is not an error.
func Load(files ...string) *Config {
	_ = godotenv.Load(files...)

	c := &Config{
		AppPort: getenv("APP_PORT", "8080"),
		AppEnv:  getenv("APP_ENV", "dev"),

		DBDriver:      getenv("DB_DRIVER", DriverMySQL),
		DBAutoMigrate: getbool("DB_AUTO_MIGRATE", true),
		SQLitePath:    getenv("SQLITE_PATH", "contracts.db"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "gccp"),
		MySQLUser: getenv("MYSQL_USER", "gccp"),
		MySQLPass: getenv("MYSQL_PASS", "gccp"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		StrictDateFilter: getbool("STRICT_DATE_FILTER", true),
	}
	// REDIS_ADDR set but empty turns redis off
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok && v == "" {
		c.RedisAddr = ""
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverMySQL, DriverSQLite)
	}
	if c.RedisAddr != "" && c.IdempTTLSecs <= 0 {
		return fmt.Errorf("invalid IDEMPOTENCY_TTL_SECONDS %d", c.IdempTTLSecs)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATE/DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) SQLiteDSN() string {
	return "file:" + c.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000"
}
