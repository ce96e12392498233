package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
)

// terminalBrowser hands the payment URL to the system browser and blocks
// until the shopper says they are done. Closing the browser tells us nothing
// about the payment outcome; the flow resolves that separately.
type terminalBrowser struct {
	in  *bufio.Reader
	out io.Writer
}

func (b *terminalBrowser) Open(ctx context.Context, url string) error {
	if cmd := openCommand(ctx, url); cmd != nil {
		if err := cmd.Start(); err == nil {
			fmt.Fprintf(b.out, "Opened the payment page in your browser:\n  %s\n", url)
		} else {
			fmt.Fprintf(b.out, "Open this URL in your browser:\n  %s\n", url)
		}
	} else {
		fmt.Fprintf(b.out, "Open this URL in your browser:\n  %s\n", url)
	}

	fmt.Fprint(b.out, "Press Enter when you have finished in the browser... ")
	_, err := b.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

func openCommand(ctx context.Context, url string) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.CommandContext(ctx, "open", url)
	case "linux":
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return nil
		}
		return exec.CommandContext(ctx, "xdg-open", url)
	default:
		return nil
	}
}

// terminalConfirmer asks the shopper whether they completed payment. Used
// only when the authoritative status check cannot resolve the outcome.
type terminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (c *terminalConfirmer) ConfirmPayment(context.Context) bool {
	fmt.Fprint(c.out, "We could not verify the payment automatically. Did you complete it? [y/N] ")
	line, err := c.in.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
