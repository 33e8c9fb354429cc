package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// config is read from the config file, DBAPI_* environment variables and
// flags, in increasing order of precedence.
type config struct {
	IsolationLevel string `mapstructure:"isolation_level"`
	AuditDB        string `mapstructure:"audit_db"`
	LogLevel       string `mapstructure:"log_level"`
	History        string `mapstructure:"history"`
}

var (
	configFile string
	cfg        config
	logger     = slog.Default()
)

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"isolation-level": "isolation_level",
	"audit-db":        "audit_db",
	"log-level":       "log_level",
	"history":         "history",
}

var rootCmd = &cobra.Command{
	Use:   "dbapi",
	Short: "Run SQL against SQLite databases",
	Long: `dbapi opens SQLite databases through the dbapi client interface.

A database is a file path, :memory: or a URL such as
sqlite+apsw:///data.db?isolation_level=DEFERRED.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configFile, "config", "", "config file (yaml)")
	f.String("isolation-level", "", "word placed after BEGIN; empty for autocommit")
	f.String("audit-db", "", "record executed statements in this database")
	f.String("log-level", "warn", "log level: debug, info, warn or error")
	f.String("history", defaultHistoryPath(), "shell history file")
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := loadConfig(configFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	cfg = *loaded
	l, err := newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = l
	slog.SetDefault(logger)
	return nil
}

func loadConfig(path string, flags *pflag.FlagSet) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix("DBAPI")
	v.AutomaticEnv()
	if flags != nil {
		for name, key := range flagKeys {
			if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l})), nil
}
