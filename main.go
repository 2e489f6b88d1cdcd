package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"coachtui/config"
	"coachtui/model"
	"coachtui/storage"
	"coachtui/ui"
)

const Version = "v0.01.00"

// showError displays a blocking error modal before the main UI starts.
func showError(title, message string) {
	p := tea.NewProgram(
		ui.NewErrorModal(title, message),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize debug logging after config is loaded
	config.InitDebugLog(cfg.DataDir())

	if err := cfg.Validate(); err != nil {
		showError("Configuration Error", err.Error())
		os.Exit(1)
	}

	// Clean up old tmp dir in cache directory (crash recovery)
	if err := config.CleanupTempDir(); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("Warning: failed to cleanup old temp directory: %v", err)
	}

	// Presence lives in the temp dir so it only lasts for this run
	if err := config.CreateTempDir(); err != nil {
		fmt.Printf("Failed to create temp directory: %v\n", err)
		os.Exit(1)
	}

	var presenceStore storage.PresenceStore
	sqliteStore, err := storage.NewSQLitePresenceStore(config.GetPresenceDBPath())
	if err != nil {
		if config.DebugLog != nil {
			config.DebugLog.Printf("Warning: presence db unavailable, keeping presence in memory: %v", err)
		}
		presenceStore = storage.NewMemoryPresenceStore()
	} else {
		presenceStore = sqliteStore
	}

	backend, err := model.NewBackend(cfg)
	if err != nil {
		showError("Configuration Error", err.Error())
		os.Exit(1)
	}

	dataModel := model.NewModel(cfg, backend, presenceStore, Version)

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	_, runErr := p.Run()

	dataModel.Shutdown()
	if sqliteStore != nil {
		if err := sqliteStore.Close(); err != nil && config.DebugLog != nil {
			config.DebugLog.Printf("Warning: failed to close presence db: %v", err)
		}
	}
	if err := config.CleanupTempDir(); err != nil && config.DebugLog != nil {
		config.DebugLog.Printf("Warning: failed to cleanup temp directory on exit: %v", err)
	}

	if runErr != nil {
		fmt.Printf("Error running coachtui: %v\n", runErr)
		os.Exit(1)
	}
}
