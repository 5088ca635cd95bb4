package report

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Sink renders diagnostics.  The default sink writes to the terminal; tests
// install a CaptureSink instead.
type Sink interface {
	// Message renders an error or warning.  The label is "error" or
	// "warning"; pos may be nil.
	Message(label string, pos *TextPosition, msg string)

	// InternalError renders an internal compiler error.
	InternalError(msg string)

	// FatalError renders a fatal configuration error.
	FatalError(msg string)
}

// -----------------------------------------------------------------------------

var (
	errorPrinter = pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Text:  "error",
			Style: pterm.NewStyle(pterm.BgRed, pterm.FgWhite),
		},
	}

	warnPrinter = pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Text:  "warning",
			Style: pterm.NewStyle(pterm.BgYellow, pterm.FgBlack),
		},
	}
)

// terminalSink is the default sink: pterm prefix printers on stdout.
type terminalSink struct{}

func (terminalSink) Message(label string, pos *TextPosition, msg string) {
	printer := &errorPrinter
	if label == "warning" {
		printer = &warnPrinter
	}

	if pos == nil {
		printer.Println(msg)
	} else {
		printer.Printfln("%s: %s", pos, msg)
	}
}

func (terminalSink) InternalError(msg string) {
	pterm.Error.Println("internal compiler error: " + msg)
	fmt.Println("This error was not supposed to happen: please open an issue with the source that triggered it.")
}

func (terminalSink) FatalError(msg string) {
	pterm.Error.Println("fatal error: " + msg)
}

// -----------------------------------------------------------------------------

// Diagnostic is one captured diagnostic message.
type Diagnostic struct {
	Label   string
	Pos     *TextPosition
	Message string
}

// CaptureSink collects diagnostics in memory for inspection by tests.
type CaptureSink struct {
	Diags []Diagnostic
}

func (cs *CaptureSink) Message(label string, pos *TextPosition, msg string) {
	cs.Diags = append(cs.Diags, Diagnostic{Label: label, Pos: pos, Message: msg})
}

func (cs *CaptureSink) InternalError(msg string) {
	cs.Diags = append(cs.Diags, Diagnostic{Label: "ice", Message: msg})
}

func (cs *CaptureSink) FatalError(msg string) {
	cs.Diags = append(cs.Diags, Diagnostic{Label: "fatal", Message: msg})
}

// Warnings returns the captured warning messages.
func (cs *CaptureSink) Warnings() []string {
	var msgs []string
	for _, d := range cs.Diags {
		if d.Label == "warning" {
			msgs = append(msgs, d.Message)
		}
	}
	return msgs
}

// ErrorMessages returns the captured error messages.
func (cs *CaptureSink) ErrorMessages() []string {
	var msgs []string
	for _, d := range cs.Diags {
		if d.Label == "error" {
			msgs = append(msgs, d.Message)
		}
	}
	return msgs
}
