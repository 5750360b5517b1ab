// Package config loads the file-based configuration and command-line
// overrides.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/danielledeleo/wikilite/wiki"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultFilename is the configuration file read when no --config is given.
const DefaultFilename = "config.yaml"

// Flag names that override configuration keys of the same name.
var overridable = []string{"host", "dbfile", "static_dir", "log_format", "log_level"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("dbfile", "wikilite.sqlite3")
	v.SetDefault("host", "0.0.0.0:8776")
	v.SetDefault("static_dir", "static")
	v.SetDefault("log_format", "pretty") // pretty, json, or text
	v.SetDefault("log_level", "info")    // debug, info, warn, error
	v.SetDefault("logs_dir", "logs")
	v.SetDefault("log_file_name", "wikilite.log")
	v.SetDefault("render_workers", 0) // 0 = runtime.NumCPU()
	v.SetDefault("max_upload_bytes", 32<<20)
	v.SetDefault("max_content_bytes", 1<<20)
	v.SetDefault("seed_help", true)
}

// RegisterFlags adds the configuration override flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("host", "", "address to listen on")
	flags.String("dbfile", "", "SQLite database file")
	flags.String("static_dir", "", "directory of static assets")
	flags.String("log_format", "", "log format: pretty, json or text")
	flags.String("log_level", "", "log level: debug, info, warn or error")
}

// Load reads the configuration file at path, falling back to defaults. When
// the file does not exist it is created with the effective configuration.
// Flags from RegisterFlags that were set on the command line take precedence.
func Load(path string, flags *pflag.FlagSet) (*wiki.Config, error) {
	if path == "" {
		path = DefaultFilename
	}

	v := viper.New()
	setDefaults(v)

	if flags != nil {
		for _, name := range overridable {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return nil, err
				}
			}
		}
	}

	v.SetConfigFile(path)
	err := v.ReadInConfig()

	createDefaultConfigFile := false
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		createDefaultConfigFile = true
	}

	config := &wiki.Config{
		DatabaseFile:    v.GetString("dbfile"),
		Host:            v.GetString("host"),
		StaticDir:       v.GetString("static_dir"),
		LogFormat:       v.GetString("log_format"),
		LogLevel:        v.GetString("log_level"),
		LogsDir:         v.GetString("logs_dir"),
		LogFileName:     v.GetString("log_file_name"),
		RenderWorkers:   v.GetInt("render_workers"),
		MaxUploadBytes:  v.GetInt64("max_upload_bytes"),
		MaxContentBytes: v.GetInt("max_content_bytes"),
		SeedHelp:        v.GetBool("seed_help"),
	}

	if createDefaultConfigFile {
		slog.Info("config not found, writing defaults", "category", "config", "file", path)
		if err := writeConfig(path, config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

func writeConfig(path string, config *wiki.Config) error {
	conf, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(conf)
	if err := enc.Encode(config); err != nil {
		conf.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		conf.Close()
		return err
	}
	return conf.Close()
}
