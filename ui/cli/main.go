// Copyright (c) 2026 Devkeep Authors
// Devkeep - developer machine caretaker
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface (CLI) for Devkeep using the
// Cobra library. It defines the root command, subcommands (caches, envs,
// wsl, logs, backup, ...), flags, and the main entry point for execution.

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	log "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/devkeep/devkeep/buildvars"
	"github.com/devkeep/devkeep/internal/backend"
	"github.com/devkeep/devkeep/internal/backend/fake"
	"github.com/devkeep/devkeep/internal/backend/native"
	"github.com/devkeep/devkeep/internal/config"
	"github.com/devkeep/devkeep/internal/db"
	"github.com/devkeep/devkeep/internal/i18n"
	"github.com/devkeep/devkeep/internal/logging"
	"github.com/devkeep/devkeep/internal/state"
	"github.com/devkeep/devkeep/internal/tui"
)

var cfgFile string
var verbose bool
var demoMode bool
var showVersionFlag bool

var appConfig config.Config

// setupDefaultServices loads the configuration, initializes i18n, the local
// store and the backend. It runs before every command.
func setupDefaultServices(cmd *cobra.Command, args []string) error {
	configPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	appConfig, err = config.Load(cmd, configPath)
	if err != nil {
		if errors.As(err, &viper.ConfigFileNotFoundError{}) {
			// First run, or the config file was deleted. Persist the defaults
			// so subsequent runs have a file to inspect.
			if writeErr := config.Write(&appConfig, false); writeErr != nil {
				log.Warnf("could not write default config file: %v", writeErr)
			}
		} else {
			return fmt.Errorf("error loading config: %w", err)
		}
	}

	if demoMode {
		appConfig.Demo = true
	}
	config.SetCurrent(appConfig)

	logging.SetOutput(os.Stderr)
	if verbose || appConfig.Debug {
		logging.SetDebug(true)
		db.SetDebug(true)
	}

	i18n.Init(appConfig.Language)

	if !db.IsInitialized() {
		dsn := appConfig.DSN
		if dsn == "" && appConfig.DBType == "sqlite" {
			dir, derr := config.DataDir()
			if derr != nil {
				return fmt.Errorf("could not resolve data directory: %w", derr)
			}
			dsn = filepath.Join(dir, "devkeep.db")
		}
		if _, err := db.New(appConfig.DBType, dsn); err != nil {
			return errors.New(i18n.T("config.error_init_db", err))
		}
	}

	if done, err := db.GetSetting("onboarding_done"); err == nil {
		state.Onboarding.SetDone(done == "true")
	}

	if backend.Default() == nil {
		if appConfig.Demo {
			backend.SetDefault(fake.NewSeeded())
		} else {
			client, nerr := native.New(appConfig.HelperPath)
			if nerr != nil {
				// Run without a backend; views render their unavailable state.
				log.Warnf("helper not found: %v", nerr)
			} else {
				backend.SetDefault(client)
			}
		}
	}

	return nil
}

// Execute runs the CLI entrypoint. The cmd/devkeep main package should
// call this function and handle process exit.
func Execute() error {
	rootCmd := NewRootCmd()
	return rootCmd.Execute()
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	// Only proceed if the user has explicitly set the --config flag.
	if cmd.Flags().Changed("config") {
		path, err := cmd.Flags().GetString("config")
		if err != nil {
			return nil, fmt.Errorf("could not read --config flag: %w", err)
		}
		if path == "" {
			return nil, nil
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
		}
		return &path, nil
	}
	return nil, nil
}

// NewRootCmd creates and configures a new root cobra command. Tests create
// fresh instances for isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devkeep",
		Short: "Devkeep keeps a developer machine tidy.",
		Long: `Devkeep manages the build-up that accumulates on a developer machine:
tool caches, language runtimes, WSL distros, logs and backups. The heavy
lifting is done by a native helper process; this program is the interface.

Running without a subcommand will launch the interactive TUI.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if showVersionFlag {
				fmt.Println(resolveBuildVersion())
				os.Exit(0)
			}
			return setupDefaultServices(cmd, args)
		},
		Run: func(cmd *cobra.Command, args []string) {
			// Config, db and backend are already initialized by
			// PersistentPreRunE, so we can just run the TUI.
			tui.Run()
		},
	}

	cmd.Version = resolveBuildVersion()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVarP(&showVersionFlag, "version", "V", false, "Print version and exit")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "Run against a built-in fake helper with seeded data")
	cmd.PersistentFlags().String("language", "en", `UI language ("en", "de")`)
	cmd.PersistentFlags().String("db_type", "sqlite", "Local store type (sqlite, mysql, postgres)")
	cmd.PersistentFlags().String("dsn", "", "Local store connection string")
	cmd.PersistentFlags().String("helper_path", "", "Explicit path to the devkeep-helper binary")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newDBMaintainCmd())
	cmd.AddCommand(newCachesCmd())
	cmd.AddCommand(newEnvsCmd())
	cmd.AddCommand(newWslCmd())
	cmd.AddCommand(newLogsCmd())
	cmd.AddCommand(newBackupCmd())
	cmd.AddCommand(newDiagCmd())
	cmd.AddCommand(newFeedbackCmd())
	cmd.AddCommand(newUpdateCmd())

	return cmd
}

// resolveBuildVersion combines the linker-set version with VCS metadata
// from the build info when available.
func resolveBuildVersion() string {
	version := buildvars.VersionOrDefault("dev")
	commit, date := "", ""
	if info, ok := debug.ReadBuildInfo(); ok && info != nil {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if len(s.Value) >= 7 {
					commit = s.Value[:7]
				}
			case "vcs.time":
				date = s.Value
			}
		}
		if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			version = info.Main.Version
		}
	}
	out := version
	if commit != "" {
		out += " (" + commit + ")"
	}
	if date != "" {
		out += " built: " + date
	}
	return out
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(resolveBuildVersion())
		},
	}
}

func newDBMaintainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "db-maintain",
		Short: "Run database maintenance (VACUUM/OPTIMIZE) for the local store",
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := appConfig.DSN
			if dsn == "" && appConfig.DBType == "sqlite" {
				dir, err := config.DataDir()
				if err != nil {
					return err
				}
				dsn = filepath.Join(dir, "devkeep.db")
			}
			start := time.Now()
			if err := db.RunDBMaintenance(appConfig.DBType, dsn); err != nil {
				return err
			}
			fmt.Println(i18n.T("cli.db_maintain.done", time.Since(start).Round(time.Millisecond)))
			return nil
		},
	}
}
