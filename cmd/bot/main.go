package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/yourusername/ircbot/internal/bot"
	"github.com/yourusername/ircbot/internal/config"
	"github.com/yourusername/ircbot/internal/database"
	"github.com/yourusername/ircbot/internal/ident"
	"github.com/yourusername/ircbot/internal/irc"
	"github.com/yourusername/ircbot/internal/maintenance"
	"github.com/yourusername/ircbot/internal/output"
	"github.com/yourusername/ircbot/internal/shutdown"
	"github.com/yourusername/ircbot/internal/user"
)

// shutdownTimeout bounds the graceful shutdown before it is forced
const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "config/bot.toml", "Path to the TOML or YAML configuration file")
	rollbackFlag := flag.Bool("rollback", false, "Rollback the last applied database migration")
	setPassword := flag.String("set-password", "", "Prompt for and store the password of the given owner, then exit")
	flag.Parse()

	logger := output.NewColorLogger()
	logger.Info("IRC bot starting...")

	cfg, err := config.LoadOrCreate(*configPath)
	if err != nil {
		logger.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	logger.Success("Configuration loaded")

	db, err := database.New(cfg.Database.Path, cfg.Database.WALMode)
	if err != nil {
		logger.Error("Failed to initialize database: %v", err)
		os.Exit(1)
	}
	logger.Success("Database initialized")

	if *rollbackFlag {
		os.Exit(rollback(db, logger))
	}

	out, err := output.NewOutput(cfg.Logging.ErrorLogPath, cfg.Logging.MaxLogSizeMB, cfg.Logging.MaxLogFiles)
	if err != nil {
		logger.Error("Failed to initialize output: %v", err)
		_ = db.Close()
		os.Exit(1)
	}
	out.Logger = logger

	client := irc.NewClient(cfg, logger)
	if cfg.Ident.Enabled {
		responder := ident.New(cfg.Ident, cfg.Server.Nickname, logger)
		responder.OnSuccess(func(query, reply string) {
			logger.Info("Ident query %q answered", query)
		})
		client.SetIdentResponder(responder)
	}

	b, err := bot.New(cfg, client, db, out)
	if err != nil {
		logger.Error("Failed to initialize bot: %v", err)
		_ = db.Close()
		os.Exit(1)
	}

	if *setPassword != "" {
		os.Exit(storePassword(b.Users(), *setPassword, logger, db))
	}

	scheduler := maintenance.New(db, logger, cfg.Database.GetVacuumIntervalDuration(), cfg.Database.RetentionDays)
	if err := scheduler.Start(); err != nil {
		logger.Warning("Database maintenance not started: %v", err)
	}

	handler := shutdown.NewHandler(logger, shutdownTimeout)

	// Steps run in order once a signal arrives or the session ends
	handler.RegisterShutdownFunc("irc", func() error {
		client.Shutdown()
		client.Wait()
		return nil
	})
	handler.RegisterShutdownFunc("commands", func() error {
		b.Close()
		return nil
	})
	handler.RegisterShutdownFunc("maintenance", func() error {
		if scheduler.IsRunning() {
			return scheduler.Stop()
		}
		return nil
	})
	handler.RegisterShutdownFunc("database", func() error {
		if err := db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		return nil
	})

	runErr := make(chan error, 1)
	go func() {
		runErr <- b.Run(handler.Context())
		handler.Trigger("IRC session ended")
	}()

	handler.Wait()
	<-handler.Done()
	handler.Stop()

	exitCode := 0
	select {
	case err := <-runErr:
		if err != nil {
			logger.Error("IRC session failed: %v", err)
			exitCode = 1
		}
	default:
	}
	logger.Success("IRC bot has shut down. Goodbye!")
	os.Exit(exitCode)
}

func rollback(db *database.DB, logger output.Logger) int {
	defer func() { _ = db.Close() }()

	logger.Info("Rolling back last migration...")
	if err := db.Rollback(); err != nil {
		logger.Error("Rollback failed: %v", err)
		return 1
	}
	logger.Success("Migration rolled back successfully")
	return 0
}

func storePassword(users *user.Manager, nick string, logger output.Logger, db *database.DB) int {
	defer func() { _ = db.Close() }()

	if _, err := users.AddOwner(nick); err != nil {
		logger.Error("Failed to store owner %s: %v", nick, err)
		return 1
	}

	fmt.Printf("Enter password for owner %s: ", nick)
	var password string
	if _, err := fmt.Scanln(&password); err != nil || password == "" {
		logger.Error("Failed to read password or password is empty")
		return 1
	}

	if err := users.SetOwnerPassword(nick, password); err != nil {
		logger.Error("Failed to set owner password: %v", err)
		return 1
	}

	logger.Success("Password set for %s", nick)
	logger.Info("Authenticate by private message (NOT in a channel):")
	logger.Info("  /msg <bot> !verify <password>")
	return 0
}
