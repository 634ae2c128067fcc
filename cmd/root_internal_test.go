package cmd

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func TestStoreAndGetAppContext(t *testing.T) {
	original := globalAppContext
	defer func() {
		globalAppContext = original
	}()

	cmd := &cobra.Command{Use: "root"}
	appCtx := &AppContext{Logger: zap.NewNop(), Config: newCLIConfig()}

	storeAppContext(cmd, appCtx)

	got := getAppContext(cmd)
	if got != appCtx {
		t.Fatalf("expected stored app context to be returned")
	}
}

func TestGetAppContextFallsBackToGlobal(t *testing.T) {
	original := globalAppContext
	defer func() {
		globalAppContext = original
	}()

	globalAppContext = &AppContext{Config: newCLIConfig()}

	cmd := &cobra.Command{Use: "child"}
	cmd.SetContext(context.Background())
	if got := getAppContext(cmd); got != globalAppContext {
		t.Fatalf("expected global app context when command carries none")
	}
}

func TestCommandContextNeverNil(t *testing.T) {
	cmd := &cobra.Command{Use: "bare"}
	if commandContext(cmd) == nil {
		t.Fatal("expected a background context for a command without one")
	}
}

func TestRootRegistersSubcommands(t *testing.T) {
	want := []string{"evaluate", "quick", "probe", "capability", "serve", "mcp", "version"}
	for _, name := range want {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}
}

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{false, true} {
		logger, err := newLogger(debug)
		if err != nil {
			t.Fatalf("newLogger(%v) returned error: %v", debug, err)
		}
		if got := logger.Core().Enabled(zap.DebugLevel); got != debug {
			t.Errorf("newLogger(%v): debug enabled = %v", debug, got)
		}
	}
}
