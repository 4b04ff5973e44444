// Package output renders validation results.
package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/Neumenon/utf8scan/internal/runner"
	"github.com/Neumenon/utf8scan/utf8scan"
)

// Format is an output format.
type Format string

const (
	// FormatText prints the report line on stdout or the diagnostic on stderr.
	FormatText Format = "text"
	// FormatJSON prints one JSON object per input.
	FormatJSON Format = "json"
	// FormatTable prints a table of all inputs.
	FormatTable Format = "table"
)

// Formatter writes results to out and diagnostics to errOut.
type Formatter struct {
	format Format
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

// NewFormatter creates a formatter. Nil writers default to stdout and stderr.
func NewFormatter(format Format, out, errOut io.Writer) *Formatter {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &Formatter{format: format, out: out, errOut: errOut}
}

// SetQuiet suppresses success reports. Failures are always printed.
func (f *Formatter) SetQuiet(quiet bool) {
	f.quiet = quiet
}

// Render writes all results.
func (f *Formatter) Render(results []runner.Result) error {
	switch f.format {
	case FormatJSON:
		return f.renderJSON(results)
	case FormatTable:
		return f.renderTable(results)
	default:
		return f.renderText(results)
	}
}

// ============================================================
// Text
// ============================================================

func (f *Formatter) renderText(results []runner.Result) error {
	multi := len(results) > 1
	for _, r := range results {
		w, line := f.out, r.Tally.String()
		if !r.OK() {
			w, line = f.errOut, r.Err.Error()
		} else if f.quiet {
			continue
		}
		// Non-decode failures always name the input.
		if multi || (r.Err != nil && !isDecodeError(r.Err)) {
			line = r.Input + ": " + line
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ============================================================
// JSON
// ============================================================

type jsonResult struct {
	Input     string     `json:"input"`
	OK        bool       `json:"ok"`
	ASCII     uint64     `json:"ascii"`
	MultiByte uint64     `json:"multibyte"`
	Bytes     int64      `json:"bytes"`
	Error     *jsonError `json:"error,omitempty"`
	CRC32     string     `json:"crc32,omitempty"`
	SHA256    string     `json:"sha256,omitempty"`
}

type jsonError struct {
	Kind     string `json:"kind"`
	Message  string `json:"message"`
	Offset   *int64 `json:"offset,omitempty"`
	ExitCode int    `json:"exit_code"`
}

func (f *Formatter) renderJSON(results []runner.Result) error {
	enc := json.NewEncoder(f.out)
	for _, r := range results {
		if r.OK() && f.quiet {
			continue
		}
		if err := enc.Encode(toJSON(r)); err != nil {
			return err
		}
	}
	return nil
}

func toJSON(r runner.Result) jsonResult {
	jr := jsonResult{
		Input:     r.Input,
		OK:        r.OK(),
		ASCII:     r.Tally.ASCII,
		MultiByte: r.Tally.MultiByte,
		Bytes:     r.Consumed,
	}
	if r.Digest != nil {
		jr.CRC32 = r.Digest.CRCHex()
		jr.SHA256 = r.Digest.SHA256Hex()
	}
	if r.Err != nil {
		je := &jsonError{Kind: "io", Message: r.Err.Error(), ExitCode: r.ExitCode()}
		var de *utf8scan.DecodeError
		if errors.As(r.Err, &de) {
			je.Kind = de.Kind.String()
			je.Offset = &de.Offset
		}
		jr.Error = je
	}
	return jr
}

// ============================================================
// Table
// ============================================================

func (f *Formatter) renderTable(results []runner.Result) error {
	if !isTerminal(f.out) && pterm.PrintColor {
		pterm.DisableColor()
		defer pterm.EnableColor()
	}

	data := pterm.TableData{{"Input", "Result", "ASCII", "Multi-byte", "Bytes", "Offset", "CRC-32"}}
	for _, r := range results {
		if r.OK() && f.quiet {
			continue
		}
		row := []string{r.Input, pterm.Green("valid"), u64(r.Tally.ASCII), u64(r.Tally.MultiByte), strconv.FormatInt(r.Consumed, 10), "", ""}
		if r.Err != nil {
			row[1] = pterm.Red(r.Err.Error())
			var de *utf8scan.DecodeError
			if errors.As(r.Err, &de) {
				row[5] = strconv.FormatInt(de.Offset, 10)
			}
		}
		if r.Digest != nil {
			row[6] = r.Digest.CRCHex()
		}
		data = append(data, row)
	}
	if len(data) == 1 {
		return nil
	}

	s, err := pterm.DefaultTable.WithHasHeader(true).WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f.out, s)
	return err
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func isDecodeError(err error) bool {
	var de *utf8scan.DecodeError
	return errors.As(err, &de)
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}
