package diag

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/colorstring"
)

// ShowError writes err to w. Errors that implement Shower are shown with their
// source excerpt and others are passed to Complain. Each error of a
// *multierror.Error is shown on its own.
func ShowError(w io.Writer, err error) {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, e := range merr.Errors {
			ShowError(w, e)
		}
		return
	}
	if shower, ok := err.(Shower); ok {
		fmt.Fprintln(w, shower.Show(""))
	} else {
		Complain(w, err.Error())
	}
}

var colorize = colorstring.Colorize{Colors: colorstring.DefaultColors}

// Complain prints a message to w in bold and red, adding a trailing newline.
func Complain(w io.Writer, msg string) {
	// The message itself is not colorized; it may contain brackets.
	fmt.Fprintln(w, colorize.Color("[bold][red]")+msg+colorize.Color("[reset]"))
}
