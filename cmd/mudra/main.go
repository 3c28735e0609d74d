package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

func main() {
	fmt.Println("Mudra - Hand Gesture Classifier")

	// Load .env if present. Environment variables override settings
	// stored in the database.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Initialize the store
	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	dbDir := filepath.Join(homeDir, ".mudra")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dbDir, "mudra.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	// Build the pipeline from persisted settings.
	settings := st.Settings()
	strategy := classify.Strategy(settings.GetDefault(store.SettingStrategy, string(classify.StrategyAngle)))
	if s := os.Getenv("MUDRA_STRATEGY"); s != "" {
		strategy = classify.Strategy(s)
	}

	a := app.New(app.Config{
		Store:    st,
		CameraID: settings.GetInt(store.SettingCameraID, 0),
		Classifier: classify.Config{
			Strategy:        strategy,
			SmoothingWindow: settings.GetInt(store.SettingSmoothingWindow, classify.DefaultSmoothingWindow),
		},
	})

	if err := a.LoadRules(); err != nil {
		log.Printf("Failed to load user rules: %v", err)
	}

	if err := a.Start(); err != nil {
		log.Printf("Pipeline not started (%v); API remains available", err)
	}
	defer a.Stop()

	// Find web directory
	webDir := findWebDir()
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start server
	cfg := server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
		Camera:    a.Camera(),
	}

	srv := server.New(cfg)

	addr := os.Getenv("MUDRA_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	go func() {
		fmt.Printf("Starting server on %s\n", addr)
		if err := srv.ListenAndServe(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// The tray owns the main goroutine; quitting it ends the process.
	tr := tray.New()
	tr.OnToggle(a.SetEnabled)
	a.Subscribe(tr.SetGesture)
	tr.Run()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.mudra/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".mudra", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
