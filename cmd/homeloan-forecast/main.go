package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ledgerline/homeloan-forecast/internal/config"
	"github.com/ledgerline/homeloan-forecast/internal/engine"
	"github.com/ledgerline/homeloan-forecast/internal/server"
	"github.com/ledgerline/homeloan-forecast/internal/store"
	"github.com/ledgerline/homeloan-forecast/pkg/constants"
	"github.com/ledgerline/homeloan-forecast/pkg/output"
	"github.com/ledgerline/homeloan-forecast/pkg/validation"
)

var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}
		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "start the HTTP API instead of running a one-shot forecast")
	addr := flag.String("addr", constants.DefaultServerAddress, "HTTP listen address for -serve")
	dbPath := flag.String("db", constants.DefaultDatabaseFile, "SQLite database path for -serve")
	flag.Parse()

	if *serve {
		runServer(*addr, *dbPath, *logLevel)
		return
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	params, disbursals, rateChanges, extraPayments, err := conf.SimulationInputs()
	if err != nil {
		logger.Fatal("failed to parse simulation inputs",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := validation.ValidateSimulationInputs(params, disbursals, rateChanges, extraPayments); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	for _, warning := range validation.SimulationWarnings(params, disbursals, rateChanges, extraPayments) {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	eng := engine.NewWithPolicy(logger, conf.AccrualPolicy())
	result := eng.Simulate(params, disbursals, rateChanges, extraPayments)
	if result.CapReached {
		logger.Warn("schedule hit the iteration cap; this loan configuration never pays off",
			zap.String("op", "main"),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(conf.Loan.Name, result)
	case constants.OutputFormatCSV:
		output.CsvFormat(result)
	}
}

func runServer(addr, dbPath, logLevel string) {
	logger, err := initializeLogger(config.LoggingConfig{Format: "json"}, logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	storage, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}
	defer storage.Close()

	handler := server.NewHandler(storage, logger, version)
	router := server.NewRouter(handler)

	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			zap.String("op", "main.runServer"),
			zap.String("addr", addr),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server", zap.String("op", "main.runServer"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
	}

	logger.Info("server stopped", zap.String("op", "main.runServer"))
}
