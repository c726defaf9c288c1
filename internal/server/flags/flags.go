package flags

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// legacyDefaultSecret was shipped as a default once and is public knowledge
const legacyDefaultSecret = "your-secret-key"

// Settings struct
type Settings struct {
	Host                       string
	Port                       int
	MetricsPort                int
	LogLevel                   string
	Secret                     string
	Issuer                     string
	Driver                     string
	DSN                        string
	PairPassphrase             string
	AccessTokenDurationMinutes int
	TLSCert                    string
	TLSKey                     string
}

// NewSettings creates a new settings instance
func NewSettings() *Settings {
	return &Settings{}
}

// LoadConfig loads the configuration from environment variables, flags, and
// default values. args are the command line arguments without the program name.
func (s *Settings) LoadConfig(args []string) error {
	v := viper.New()

	// Установка значений по умолчанию
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 50051)
	v.SetDefault("metrics_port", 9090)
	v.SetDefault("log_level", "info")
	v.SetDefault("secret", "")
	v.SetDefault("issuer", "passkeeper")
	v.SetDefault("driver", "sqlite3")
	v.SetDefault("dsn", "passes.db")
	v.SetDefault("pair_passphrase", "")
	v.SetDefault("access_token_duration_minutes", 60*24*30)
	v.SetDefault("tls_cert", "")
	v.SetDefault("tls_key", "")

	// Определение флагов командной строки
	fs := pflag.NewFlagSet("passkeeper-server", pflag.ContinueOnError)
	fs.StringP("host", "H", "", "Server host")
	fs.IntP("port", "P", 0, "Server port")
	fs.IntP("metrics_port", "M", 0, "Prometheus metrics port, 0 or less disables the endpoint")
	fs.StringP("log_level", "L", "", "Log level")
	fs.StringP("secret", "S", "", "JWT secret key")
	fs.StringP("issuer", "I", "", "JWT issuer")
	fs.StringP("driver", "d", "", "Database driver: sqlite3, sqlite, postgres or pgx")
	fs.StringP("dsn", "D", "", "Data source name")
	fs.StringP("pair_passphrase", "p", "", "Passphrase devices present to pair")
	fs.IntP("access_token_duration_minutes", "A", 0, "Access token duration in minutes")
	fs.String("tls_cert", "", "TLS certificate file, plaintext when empty")
	fs.String("tls_key", "", "TLS key file")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	// Only flags that were set override defaults and environment
	var bindErr error
	fs.Visit(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil && bindErr == nil {
			bindErr = err
		}
	})
	if bindErr != nil {
		return fmt.Errorf("failed to bind flags: %w", bindErr)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Загрузка конфигурации
	s.Host = v.GetString("host")
	s.Port = v.GetInt("port")
	s.MetricsPort = v.GetInt("metrics_port")
	s.LogLevel = v.GetString("log_level")
	s.Secret = v.GetString("secret")
	s.Issuer = v.GetString("issuer")
	s.Driver = v.GetString("driver")
	s.DSN = v.GetString("dsn")
	s.PairPassphrase = v.GetString("pair_passphrase")
	s.AccessTokenDurationMinutes = v.GetInt("access_token_duration_minutes")
	s.TLSCert = v.GetString("tls_cert")
	s.TLSKey = v.GetString("tls_key")

	return s.validate()
}

func (s *Settings) validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.AccessTokenDurationMinutes <= 0 {
		return fmt.Errorf("invalid access token duration %d", s.AccessTokenDurationMinutes)
	}
	if s.PairPassphrase == "" {
		return fmt.Errorf("pair_passphrase is required")
	}
	// Ключ подписи токенов обязателен
	if s.Secret == "" || s.Secret == legacyDefaultSecret {
		return fmt.Errorf("secret is required and must not be %q", legacyDefaultSecret)
	}
	if (s.TLSCert == "") != (s.TLSKey == "") {
		return fmt.Errorf("tls_cert and tls_key must be set together")
	}
	return nil
}

// GetAccessTokenDuration returns how long an issued access token is valid
func (s *Settings) GetAccessTokenDuration() time.Duration {
	return time.Duration(s.AccessTokenDurationMinutes) * time.Minute
}

// GetHost returns the server host
func (s *Settings) GetHost() string {
	return s.Host
}

// GetAddress returns host:port of the gRPC listener
func (s *Settings) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// GetMetricsAddress returns host:port of the metrics listener, empty when disabled
func (s *Settings) GetMetricsAddress() string {
	if s.MetricsPort <= 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", s.Host, s.MetricsPort)
}

// TLSEnabled reports whether the gRPC listener serves TLS
func (s *Settings) TLSEnabled() bool {
	return s.TLSCert != "" && s.TLSKey != ""
}

// GetDriver returns the database driver name
func (s *Settings) GetDriver() string {
	return s.Driver
}

// GetDSN returns the data source name
func (s *Settings) GetDSN() string {
	return s.DSN
}

// GetLogLevel returns the log level
func (s *Settings) GetLogLevel() string {
	return s.LogLevel
}

// GetSecret returns the JWT secret key
func (s *Settings) GetSecret() string {
	return s.Secret
}

// GetIssuer returns the JWT issuer
func (s *Settings) GetIssuer() string {
	return s.Issuer
}
