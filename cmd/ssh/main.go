package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"signal-sniper/internal/config"
	"signal-sniper/internal/tui"
	"signal-sniper/pkg/logger"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/joho/godotenv"
	gossh "golang.org/x/crypto/ssh"
)

// ctxKey is a typed context key to avoid collisions.
type ctxKey string

const sshUserKey ctxKey = "ssh_user"

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initLoggerFunc         = logger.Init
	loadAuthorizedKeysFunc = loadAuthorizedKeys
	newDataSourceFunc      = func(baseURL string) tui.DataSource { return tui.NewAPIClient(baseURL) }
	newWishServerFunc      = wish.NewServer
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	if err := initLoggerFunc(cfg.LogLevel, cfg.AppEnv); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
	}
	log := logger.Get().With("component", "ssh")
	defer logger.Sync()

	keys, err := loadAuthorizedKeysFunc(cfg.SSHAuthorizedKeys)
	if err != nil {
		log.Warnw("no authorized keys loaded, all logins will be denied", "path", cfg.SSHAuthorizedKeys, "error", err)
	} else {
		log.Infow("authorized keys loaded", "path", cfg.SSHAuthorizedKeys, "count", len(keys))
	}

	source := newDataSourceFunc(cfg.SniperAPIURL)
	addr := fmt.Sprintf("0.0.0.0:%d", cfg.SSHPort)

	srv, err := newWishServerFunc(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			fingerprint := gossh.FingerprintSHA256(key)
			comment, ok := matchKey(keys, key)
			if !ok {
				log.Warnw("SSH auth denied", "user", ctx.User(), "fingerprint", fingerprint)
				return false
			}
			name := comment
			if name == "" {
				name = ctx.User()
			}
			ctx.SetValue(sshUserKey, name)
			log.Infow("SSH auth accepted", "user", name, "fingerprint", fingerprint)
			return true
		}),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				username, _ := s.Context().Value(sshUserKey).(string)
				model := tui.NewModel(source, username)
				pty, _, _ := s.Pty()
				model.SetSize(pty.Window.Width, pty.Window.Height)

				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
			logging.Middleware(),
		),
	)
	if err != nil {
		log.Fatalw("failed to create SSH server", "error", err)
	}

	if srv != nil {
		go func() {
			log.Infow("SSH server listening", "addr", addr, "api", cfg.SniperAPIURL)
			if err := srv.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
				log.Errorw("SSH server stopped", "error", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info("Shutting down SSH server...")

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Errorw("SSH server shutdown error", "error", err)
		}
	}

	log.Info("SSH server exited")
}
