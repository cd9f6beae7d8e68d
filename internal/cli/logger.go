package cli

import (
	"io"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/inkwell/inkwell/internal/config"
	"github.com/inkwell/inkwell/internal/storage"
)

// newLogger builds the slog logger described by cfg and installs it as default.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level, _ := cfg.SlogLevel()
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// sanitizeError removes connection secrets from driver error messages.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, secret, storage.Redact(secret))
		if u, parseErr := url.Parse(secret); parseErr == nil && u.User != nil {
			if pw, ok := u.User.Password(); ok && pw != "" {
				msg = strings.ReplaceAll(msg, pw, "xxxxx")
			}
		}
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
