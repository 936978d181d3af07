package tui

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"

	"cachemaker/internal/importer"
)

// clipboardProvider reads the system clipboard as plain text when an import
// is resolved, not when it is dropped. The text is passed on as the host
// returned it.
type clipboardProvider struct {
	read func(context.Context) (string, error)
}

func (c clipboardProvider) Load(ctx context.Context) (importer.Representation, error) {
	read := c.read
	if read == nil {
		read = readClipboard
	}
	s, err := read(ctx)
	if err != nil {
		return importer.Representation{}, err
	}
	return importer.Representation{MediaType: importer.MediaTypeText + "; charset=utf-8", Data: []byte(s)}, nil
}

func readClipboard(ctx context.Context) (string, error) {
	var (
		out string
		err error
	)
	switch runtime.GOOS {
	case "darwin":
		out, err = runClipboardCmd(ctx, "pbpaste", nil)
	case "windows":
		out, err = runClipboardCmd(ctx, "powershell", []string{"-NoProfile", "-Command", "Get-Clipboard"})
	default:
		// Prefer Wayland if available, then X11 fallbacks.
		if out, err = runClipboardCmd(ctx, "wl-paste", []string{"--no-newline"}); err != nil {
			if out, err = runClipboardCmd(ctx, "xclip", []string{"-selection", "clipboard", "-o"}); err != nil {
				out, err = runClipboardCmd(ctx, "xsel", []string{"--clipboard", "--output"})
			}
		}
	}
	return out, err
}

func runClipboardCmd(ctx context.Context, name string, args []string) (string, error) {
	if _, err := exec.LookPath(name); err != nil {
		return "", err
	}
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", errors.New(name + ": " + err.Error())
	}
	return stdout.String(), nil
}
