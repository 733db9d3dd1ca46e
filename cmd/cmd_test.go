package cmd

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestVersionCmd_Output(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)

	versionCmd.Run(versionCmd, nil)

	got := out.String()
	for _, want := range []string{"beneflow", "Build Time:", "Git Commit:"} {
		if !strings.Contains(got, want) {
			t.Errorf("version output missing %q, got: %s", want, got)
		}
	}
}

func TestInitLogger_LevelFromEnv(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		debug bool
	}{
		{name: "default info", env: "", debug: false},
		{name: "debug env", env: "debug", debug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BENEFLOW_LOG_LEVEL", tt.env)

			logger := initLogger()
			if logger == nil {
				t.Fatal("initLogger() = nil")
			}
			if got := logger.Enabled(t.Context(), slog.LevelDebug); got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
		})
	}
}

func TestRootCmd_RegisteredSubcommands(t *testing.T) {
	want := map[string]bool{
		"serve":   false,
		"ask":     false,
		"migrate": false,
		"tenant":  false,
		"version": false,
	}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
