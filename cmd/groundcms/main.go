package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"groundcms/internal/app"
	"groundcms/internal/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file if present, falling back to
// development defaults, and overlays environment variables. Hosted
// deployments typically have no config file at all.
func loadConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	var cfg *config.Config
	if _, err := os.Stat(defaults["config_path"]); err == nil {
		cfg, err = config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else {
		cfg = config.NewConfig(defaults["base_dir"])
	}

	cfg.ApplyEnv()
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "groundcms",
	Short: "Content backend for the company marketing site",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := app.NewApp(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		return a.Run(ctx)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check backend connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := context.Background()
		a, err := app.NewApp(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initializing app: %w", err)
		}
		defer a.Close()

		failed := false
		for _, s := range a.Status(ctx) {
			if s.Err != nil {
				failed = true
				fmt.Printf("%-8s %-12s FAIL  %v\n", s.Name, s.Backend, s.Err)
			} else {
				fmt.Printf("%-8s %-12s OK\n", s.Name, s.Backend)
			}
		}
		if failed {
			return fmt.Errorf("one or more backends unreachable")
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Set an admin password with `groundcms hash-password` before serving.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Listen Addr:  %s\n", cfg.ListenAddr)
		fmt.Printf("Environment:  %s\n", cfg.Environment)
		fmt.Printf("Log Dir:      %s\n", cfg.LogDir)
		fmt.Printf("Admin User:   %s\n", cfg.Admin.Username)
		fmt.Printf("Storage:      %s\n", cfg.Storage.Type)
		fmt.Printf("Blobs:        %s\n", cfg.Blob.Type)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Generate a bcrypt hash for the admin password",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Print("Password: ")
		first, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		fmt.Print("Confirm: ")
		second, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("reading confirmation: %w", err)
		}

		if string(first) != string(second) {
			return fmt.Errorf("passwords do not match")
		}
		if len(first) == 0 {
			return fmt.Errorf("password must not be empty")
		}

		hash, err := bcrypt.GenerateFromPassword(first, bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		fmt.Println(string(hash))
		fmt.Println("Set this as admin.password in the config file, or as ADMIN_PASSWORD.")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(hashPasswordCmd)
}
