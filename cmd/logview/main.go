package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"gopkg.in/yaml.v3"

	"github.com/thisisjab/logview/config"
	"github.com/thisisjab/logview/eventlog"
	"github.com/thisisjab/logview/handler"
	"github.com/thisisjab/logview/host"
)

const exportBufferSize = 10000

func main() {
	cfgPath := flag.String("config", "./.config.yaml", "path to config file")
	exportDir := flag.String("export", "", "directory to export collected messages as CSV on shutdown")
	flag.Parse()

	fileContent, err := os.ReadFile(*cfgPath)
	if err != nil {
		panic(fmt.Errorf("cannot read config file content: %w", err))
	}

	var cfg config.Config
	if err := yaml.Unmarshal(fileContent, &cfg); err != nil {
		panic(fmt.Errorf("cannot parse config file: %w", err))
	}

	receivers, logger, err := cfg.Parse()
	if err != nil {
		if logger != nil {
			logger.Error("cannot parse config file", "error", err)
			os.Exit(1)
		}
		panic(fmt.Errorf("cannot parse config file: %w", err))
	}

	manager := host.NewManager(logger)
	console := handler.NewConsole(os.Stdout)

	buffers := make(map[string]*handler.Buffer)
	for _, r := range receivers {
		if *exportDir == "" {
			manager.Register(r, console, host.Views{})
			continue
		}

		buf := handler.NewBuffer(exportBufferSize)
		buffers[r.ExportFileName()] = buf
		manager.Register(r, buf, host.Views{})
	}

	if err := manager.InitializeAll(); err != nil {
		logger.Error("some receivers failed to start.", "error", err)
	}

	// Wait for Ctrl+C (SIGINT) or Terminate (SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received signal. shutting down.", "signal", sig)

	manager.ShutdownAll()

	for name, buf := range buffers {
		if err := exportBuffer(*exportDir, name, buf); err != nil {
			logger.Error("cannot export messages.", "file", name, "error", err)
		}
	}

	logger.Info("stopped.")
}

func exportBuffer(dir, name string, buf *handler.Buffer) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}

	if err := buf.WriteCSV(f, eventlog.ExportHeader, eventlog.CSVRow); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
