package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/perimetra/detwatch/internal/detect"
	"github.com/perimetra/detwatch/internal/history"
)

// executeWatch runs the interactive dashboard until the user quits.
func executeWatch() error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	return runDashboard(deps)
}

// executeStatus prints the detection state once.
func executeStatus() error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	ctx, cancel := signalContext()
	defer cancel()

	st, err := deps.client.Status(ctx)
	if err != nil {
		return err
	}

	if st.Running {
		fmt.Println("Detection is running")
	} else {
		fmt.Println("Detection is not running")
	}
	return nil
}

// executeStart issues the start action and prints the server's message.
func executeStart() error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	ctx, cancel := signalContext()
	defer cancel()

	msg, err := deps.client.Start(ctx)
	if err != nil {
		var serverErr *detect.ServerError
		if errors.As(err, &serverErr) {
			return fmt.Errorf("server: %s", serverErr.Message)
		}
		return err
	}

	deps.record(history.KindStarted, msg)
	fmt.Println(msg)
	return nil
}

// executeStop issues the stop action.
func executeStop() error {
	deps, err := buildDeps()
	if err != nil {
		return err
	}
	defer deps.close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := deps.client.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop detection: %w", err)
	}

	deps.record(history.KindStopped, "")
	fmt.Println("Detection stopped")
	return nil
}

// executeHistory prints recorded controller events, oldest first.
func executeHistory(limit int) error {
	dir, err := stateDir()
	if err != nil {
		return err
	}

	events, err := history.Read(dir, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No history recorded yet.")
		return nil
	}

	for _, e := range events {
		fmt.Println(formatHistoryLine(e))
	}
	return nil
}

// formatHistoryLine renders one history event for terminal output.
func formatHistoryLine(e history.Event) string {
	line := fmt.Sprintf("%s  %-12s", e.Time.Format("2006-01-02 15:04:05"), e.Kind)
	if e.Message != "" {
		line += "  " + e.Message
	}
	return line
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	return ctx, cancel
}
