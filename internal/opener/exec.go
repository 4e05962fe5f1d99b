package opener

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Exec opens URLs through the platform's URL-handler command. The launch
// is fire-and-forget: once the command has started, a timeout produces a
// failure outcome but never kills the child, since the browser launch is
// external to this process.
type Exec struct {
	logger  zerolog.Logger
	goos    string
	browser string
	timeout time.Duration
}

// NewExec builds the production opener. browser names a specific browser
// application where the platform supports it ("" = system default).
func NewExec(logger zerolog.Logger, browser string, timeout time.Duration) *Exec {
	return &Exec{
		logger:  logger.With().Str("component", "opener").Logger(),
		goos:    runtime.GOOS,
		browser: browser,
		timeout: timeout,
	}
}

func (e *Exec) Open(ctx context.Context, url string) Outcome {
	start := time.Now()

	name, args, err := launchArgs(e.goos, e.browser, url)
	if err != nil {
		return Outcome{Detail: err.Error(), Elapsed: time.Since(start)}
	}

	var stderr bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Outcome{
			Detail:  fmt.Sprintf("launch %s: %v", name, err),
			Elapsed: time.Since(start),
		}
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			detail := strings.TrimSpace(stderr.String())
			if detail == "" {
				detail = err.Error()
			}
			return Outcome{Detail: detail, Elapsed: time.Since(start)}
		}
		return Outcome{Launched: true, Detail: "opened", Elapsed: time.Since(start)}
	case <-time.After(e.timeout):
		e.logger.Warn().Str("command", name).Dur("timeout", e.timeout).
			Msg("launch command still running at timeout, not killing it")
		return Outcome{
			Detail:  fmt.Sprintf("%s did not finish within %s", name, e.timeout),
			Elapsed: time.Since(start),
		}
	case <-ctx.Done():
		return Outcome{Detail: ctx.Err().Error(), Elapsed: time.Since(start)}
	}
}

// launchArgs picks the platform URL-handler command line.
func launchArgs(goos, browser, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		if browser != "" {
			return "/usr/bin/open", []string{"-a", browser, url}, nil
		}
		return "/usr/bin/open", []string{url}, nil
	case "linux":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32.exe", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
