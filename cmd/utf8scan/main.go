// utf8scan - UTF-8 stream validator
//
// Usage:
//
//	utf8scan [flags] [file ...]   Validate files ("-" or none reads stdin)
//	utf8scan version              Print version info
//
// On success prints
//
//	Found <n> ASCII and <m> multi-byte UTF-8 characters.
//
// and exits 0. The first malformed sequence stops the scan with a one-line
// diagnostic on stderr and exit status 1 (header byte), 2 (tail byte),
// 3 (code point, including truncated input) or 4 (overlong encoding).
// Exit status 5 covers I/O, limit and usage failures.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

const libVersion = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
