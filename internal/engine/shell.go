package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"github.com/dshills/quill/internal/engine/buffer"
)

// PipeThroughCommand feeds the byte range r to a shell command's stdin
// and substitutes the command's stdout for the range as a single undo
// group. A non-zero exit surfaces the child's stderr and leaves the
// document unchanged.
func (d *Document) PipeThroughCommand(ctx context.Context, cmdline string, r buffer.Range) error {
	if cmdline == "" {
		return newError(KindInvalidArgument, "empty command")
	}

	in, err := d.NewInputStream(r)
	if err != nil {
		return err
	}
	defer in.Close()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", cmdline)
	cmd.Stdin = in
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return newError(KindShellCommand, "%s: %s", cmdline, bytes.TrimSpace(stderr.Bytes()))
		}
		return wrapError(KindShellCommand, err, "run %s", cmdline)
	}

	// The child only reads the range and the document is not edited while
	// it runs, so the original range is replaced with the output.
	out := d.convertNewlines(stdout.String())
	start := d.cursor
	start.AdvanceToOffset(r.Start.Offset)
	end := d.cursor
	end.AdvanceToOffset(r.End.Offset)

	d.selectionReset()
	return d.ReplaceRange(buffer.NewRange(start, end), out)
}

// RunShellCommand runs a shell command with no document input and
// returns its stdout. A non-zero exit surfaces the child's stderr.
func RunShellCommand(ctx context.Context, cmdline string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", cmdline)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			return "", newError(KindShellCommand, "%s: %s", cmdline, bytes.TrimSpace(stderr.Bytes()))
		}
		return "", wrapError(KindShellCommand, err, "run %s", cmdline)
	}

	return stdout.String(), nil
}
