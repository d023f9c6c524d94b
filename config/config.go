package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"go.yaml.in/yaml/v3"

	"github.com/thisisjab/logview/eventlog"
	"github.com/thisisjab/logview/eventsource"
	"github.com/thisisjab/logview/eventsource/chatter"
	"github.com/thisisjab/logview/eventsource/docker"
	"github.com/thisisjab/logview/eventsource/file"
	"github.com/thisisjab/logview/fault"
	"github.com/thisisjab/logview/provider"
)

type Config struct {
	Logger    LoggerConfig     `yaml:"logger"`
	Receivers []ReceiverConfig `yaml:"receivers"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Type  string `yaml:"type"`
}

type ReceiverConfig struct {
	Backend string `yaml:"backend"`
	Log     string `yaml:"log"`
	Host    string `yaml:"host"`
	Source  string `yaml:"source"`
	Options any    `yaml:"options"`
}

func (cfg Config) Parse() ([]provider.Provider, *slog.Logger, error) {
	logger, err := parseLoggerConfig(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create logger: %w", err)
	}

	receivers := make([]provider.Provider, len(cfg.Receivers))
	for i, rc := range cfg.Receivers {
		r, err := parseReceiverConfig(logger, rc)
		if err != nil {
			return nil, logger, fmt.Errorf("cannot create receiver `%s`: %w", rc.Log, err)
		}
		receivers[i] = r
	}

	return receivers, logger, nil
}

func parseLoggerConfig(cfg LoggerConfig) (*slog.Logger, error) {
	var logger *slog.Logger
	var handler slog.Handler

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "", "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	w := os.Stdout
	switch cfg.Type {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "", "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text":
		handler = tint.NewHandler(w, &tint.Options{Level: level, AddSource: true})
	default:
		return nil, fmt.Errorf("invalid log type: %s", cfg.Type)
	}

	logger = slog.New(handler)

	return logger, nil
}

func parseReceiverConfig(logger *slog.Logger, cfg ReceiverConfig) (provider.Provider, error) {
	var open eventsource.Opener

	switch cfg.Backend {
	case "file":
		var fileOptions file.Options
		if err := remarshal(cfg.Options, &fileOptions); err != nil {
			return nil, fmt.Errorf("cannot parse file backend options: %w", err)
		}

		o, err := file.NewOpener(fileOptions)
		if err != nil {
			return nil, fmt.Errorf("cannot create file backend: %w", err)
		}

		open = o

	case "docker":
		open = docker.Open

	case "chatter":
		var chatterOptions chatter.Options
		if err := remarshal(cfg.Options, &chatterOptions); err != nil {
			return nil, fmt.Errorf("cannot parse chatter backend options: %w", err)
		}

		o, err := chatter.NewOpener(chatterOptions)
		if err != nil {
			return nil, fmt.Errorf("cannot create chatter backend: %w", err)
		}

		open = o

	default:
		return nil, fault.New(fault.NotFoundCode, fmt.Sprintf("invalid receiver backend: %s", cfg.Backend))
	}

	return eventlog.New(eventlog.Config{
		Log:    cfg.Log,
		Host:   cfg.Host,
		Source: cfg.Source,
	}, open, logger), nil
}

// remarshal takes an input value, marshals it to YAML, and then unmarshals it into a new value of the same type.
// This is useful for converting generic interfaces (like map[string]any) into concrete struct types.
// The output parameter must be a pointer to the target type.
func remarshal(input any, output any) error {
	// Marshal the input to YAML
	yamlBytes, err := yaml.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}

	// Unmarshal the YAML into the output
	if err := yaml.Unmarshal(yamlBytes, output); err != nil {
		return fmt.Errorf("failed to unmarshal from YAML: %w", err)
	}

	return nil
}
