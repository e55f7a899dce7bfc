package main

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"cmemo/internal/logger"
	"cmemo/internal/manager"
	"cmemo/internal/shutdown"
)

const (
	AppName    = "CMEMO"
	AppVersion = "1.0.0"
)

func main() {
	log := logger.NewConsoleLogger(determineLogLevel())
	baseDir := resolveBaseDir()

	log.Info("Main", "starting", map[string]interface{}{
		"app":      AppName,
		"version":  AppVersion,
		"base_dir": baseDir,
	})

	mgr := manager.New(baseDir, nil, log)

	sd := shutdown.NewManager(log)
	// The final save runs on the manager's own loop goroutine once the
	// context is cancelled; the registered step only waits for the loop
	// to drain and exit.
	sd.Register("memo manager", shutdown.Func(func() { <-mgr.Done() }))
	sd.Listen()

	mgr.Run(sd.Context())
	<-sd.Done()

	log.Info("Main", "terminated", nil)
}

// resolveBaseDir places the storage and config files next to the executable,
// overridable with CMEMO_DATA_DIR.
func resolveBaseDir() string {
	if dir := os.Getenv("CMEMO_DATA_DIR"); dir != "" {
		return dir
	}
	exe, err := os.Executable()
	if err != nil {
		wd, _ := os.Getwd()
		return wd
	}
	return filepath.Dir(exe)
}

func determineLogLevel() zerolog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		if os.Getenv("CMEMO_DEBUG") == "1" {
			return zerolog.DebugLevel
		}
		return zerolog.InfoLevel
	}
}
