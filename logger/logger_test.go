// SPDX-License-Identifier: GPL-3.0-or-later

package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	defer Level.Set(slog.LevelInfo)

	tests := map[string]struct {
		level     string
		log       func(l *Logger)
		wantEmpty bool
		wantLevel string
	}{
		"info passes at info": {
			level:     "info",
			log:       func(l *Logger) { l.Infof("hello %d", 1) },
			wantLevel: "level=info",
		},
		"debug dropped at info": {
			level:     "info",
			log:       func(l *Logger) { l.Debug("hidden") },
			wantEmpty: true,
		},
		"notice uses custom name": {
			level:     "notice",
			log:       func(l *Logger) { l.Noticef("n") },
			wantLevel: "level=notice",
		},
		"warning dropped at error": {
			level:     "err",
			log:       func(l *Logger) { l.Warning("w") },
			wantEmpty: true,
		},
		"everything dropped when off": {
			level:     "off",
			log:       func(l *Logger) { l.Error("e") },
			wantEmpty: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			Level.SetByName(test.level)
			var buf bytes.Buffer

			test.log(NewWithWriter(&buf))

			if test.wantEmpty {
				assert.Empty(t, buf.String())
			} else {
				assert.Contains(t, buf.String(), test.wantLevel)
			}
		})
	}
}

func TestLogger_WithAndMute(t *testing.T) {
	defer Level.Set(slog.LevelInfo)
	Level.Set(slog.LevelInfo)

	var buf bytes.Buffer
	l := NewWithWriter(&buf).With("component", "registry")

	l.Info("first")
	assert.Contains(t, buf.String(), "component=registry")

	buf.Reset()
	l.Mute()
	l.With("child", true).Info("muted child")
	assert.Empty(t, buf.String())

	l.Unmute()
	l.Info("back")
	assert.Contains(t, buf.String(), "back")
}

func TestLogger_NilIsUsable(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Mute()
		l.With("k", "v").Debug("x")
	})
}
