// Package repl drives the read-eval-print loop: it reads one line at a
// time, dispatches meta-commands and statements, and prints the fixed
// outcome strings the rest of the system is evaluated against.
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"flatdb/internal/catalog"
	"flatdb/internal/engine"
	"flatdb/internal/errcode"
	"flatdb/internal/statement"
)

// Repl reads statements from In, writes prompts and outcomes to Out,
// and executes them against Catalog.
type Repl struct {
	Catalog *catalog.Catalog
	In      io.Reader
	Out     io.Writer
}

// New returns a Repl bound to cat, reading from in and writing to out.
func New(cat *catalog.Catalog, in io.Reader, out io.Writer) *Repl {
	return &Repl{Catalog: cat, In: in, Out: out}
}

// Run serves the loop until '.exit' or end of input. It returns nil in
// both cases; a non-nil error means reading from In failed. Only '.exit'
// closes (and so flushes) the catalog; reaching end of input does not.
func (r *Repl) Run() error {
	scanner := bufio.NewScanner(r.In)

	for {
		fmt.Fprint(r.Out, "db > ")

		if !scanner.Scan() {
			return scanner.Err()
		}
		line := scanner.Text()

		if strings.HasPrefix(line, ".") {
			exit, err := r.handleMeta(line)
			if err != nil {
				return err
			}
			if exit {
				return nil
			}
			continue
		}

		r.handleStatement(line)
	}
}

// handleMeta dispatches a '.'-prefixed line. It reports exit=true only
// for '.exit'.
func (r *Repl) handleMeta(line string) (exit bool, err error) {
	if line == ".exit" {
		if closeErr := r.Catalog.Close(); closeErr != nil {
			logrus.WithError(closeErr).Fatal("repl: closing catalog")
		}
		return true, nil
	}

	fmt.Fprintf(r.Out, "Unrecognized command '%s'\n", line)
	return false, nil
}

// handleStatement parses and executes one statement line, printing
// exactly one outcome string. Fatal I/O or invariant-violation errors
// bypass the outcome-string taxonomy entirely: they are logged and the
// process exits, per the tier-3 rule that the system has no journaling
// to recover from a torn write.
func (r *Repl) handleStatement(line string) {
	stmt, err := statement.Parse(line, r.Catalog)
	if err != nil {
		fmt.Fprintln(r.Out, outcomeMessage(err, line))
		return
	}

	if err := engine.Execute(stmt, r.Out); err != nil {
		if ce, ok := err.(*errcode.Error); ok {
			fmt.Fprintln(r.Out, outcomeMessage(ce, line))
			return
		}
		logrus.WithError(err).Fatal("repl: executing statement")
	}

	fmt.Fprintln(r.Out, "Executed.")
}

// outcomeMessage maps a *errcode.Error to the fixed outcome string the
// system promises on stdout. Any other error shape is a programming
// error in the caller, not a user-facing outcome.
func outcomeMessage(err error, line string) string {
	ce, ok := err.(*errcode.Error)
	if !ok {
		return "Internal error."
	}

	switch ce.Code {
	case errcode.TableFull:
		return "Error: Table full."
	case errcode.NegativeID:
		return "ID must be positive."
	case errcode.StringTooLong:
		return "String is too long."
	case errcode.UnrecognizedStatement:
		return fmt.Sprintf("Unrecognized keyword at start of '%s'.", line)
	case errcode.SyntaxError:
		return "Syntax error."
	case errcode.TableNotFound:
		return "Table not found."
	default:
		return "Internal error."
	}
}
