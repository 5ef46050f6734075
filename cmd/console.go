// File: cmd/console.go
package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	infoColor    = color.New(color.FgCyan)
	successColor = color.New(color.FgGreen, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
)

// console prints user facing messages. Lines go colored to out and, when a
// mirror is set, uncolored to the mirror (the session log).
type console struct {
	out    io.Writer
	mirror io.Writer
}

func (c console) print(col *color.Color, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	col.Fprintln(c.out, msg)
	if c.mirror != nil {
		fmt.Fprintln(c.mirror, msg)
	}
}

func (c console) Info(format string, args ...any)    { c.print(infoColor, format, args...) }
func (c console) Success(format string, args ...any) { c.print(successColor, format, args...) }
func (c console) Warn(format string, args ...any)    { c.print(warnColor, format, args...) }
func (c console) Error(format string, args ...any)   { c.print(errorColor, format, args...) }

// withMirror returns a copy that also writes to w.
func (c console) withMirror(w io.Writer) console {
	c.mirror = w
	return c
}
