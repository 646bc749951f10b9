// Package repl is the interactive line-oriented front end of the calculator.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"go-decimal-calculator/internal/calculation"
	"go-decimal-calculator/internal/calculator"
	"go-decimal-calculator/internal/observability"
	"go-decimal-calculator/internal/validation"
)

const prompt = "> "

var helpText = `Available commands:
  add, subtract, multiply, divide, power, root <a> <b> - perform a calculation
  history - show calculation history
  clear   - clear calculation history
  undo    - undo the last calculation
  redo    - redo the last undone calculation
  save    - save history to file
  load    - load history from file
  help    - show this message
  exit    - save history and exit
`

// Run reads commands from in until exit, EOF or ctx cancellation and writes
// all output to out. Only failures writing to out or reading from in are
// returned; calculator errors are reported on out and the loop continues.
func Run(ctx context.Context, calc *calculator.Calculator, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s := &session{calc: calc, out: out, logger: observability.Logger}

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				readErr <- nil
				return
			}
		}
		readErr <- scanner.Err()
	}()

	s.printf("Calculator started. Type 'help' for commands.\n")
	for {
		s.printf(prompt)

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			s.printf("\n")
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			s.printf("\n")
			if err := <-readErr; err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			return s.err
		}

		if stop := s.handle(ctx, line); stop || s.err != nil {
			return s.err
		}
	}
}

type session struct {
	calc   *calculator.Calculator
	out    io.Writer
	logger *zap.Logger

	// err is the first write failure; once set all output is dropped.
	err error
}

func (s *session) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	if _, err := fmt.Fprintf(s.out, format, args...); err != nil {
		s.err = fmt.Errorf("write output: %w", err)
	}
}

// handle executes one input line and reports whether the loop should stop.
func (s *session) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) == 0 {
		return false
	}

	switch cmd := fields[0]; cmd {
	case "help":
		s.printf("%s", helpText)
	case "exit":
		if err := s.calc.SaveHistory(); err != nil {
			s.printf("Warning: Could not save history: %v\n", err)
		} else {
			s.printf("History saved successfully.\n")
		}
		s.printf("Goodbye!\n")
		return true
	case "history":
		s.history()
	case "clear":
		s.calc.ClearHistory()
		s.printf("History cleared\n")
	case "undo":
		if err := s.calc.Undo(); err != nil {
			s.printf("Nothing to undo\n")
		} else {
			s.printf("Operation undone\n")
		}
	case "redo":
		if err := s.calc.Redo(); err != nil {
			s.printf("Nothing to redo\n")
		} else {
			s.printf("Operation redone\n")
		}
	case "save":
		if err := s.calc.SaveHistory(); err != nil {
			s.printf("Error saving history: %v\n", err)
		} else {
			s.printf("History saved successfully\n")
		}
	case "load":
		if err := s.calc.LoadHistory(); err != nil {
			s.printf("Error loading history: %v\n", err)
		} else {
			s.printf("History loaded successfully\n")
		}
	default:
		op, ok := calculation.ParseCommand(cmd)
		if !ok {
			s.printf("Unknown command: '%s'. Type 'help' for available commands.\n", cmd)
			return false
		}
		s.perform(ctx, op, fields[1:])
	}
	return false
}

func (s *session) perform(ctx context.Context, op calculation.Operation, args []string) {
	if len(args) != 2 {
		s.printf("Usage: %s <a> <b>\n", op.Command())
		return
	}

	calc, err := s.calc.PerformContext(ctx, string(op), args[0], args[1])
	if calc != nil {
		s.printf("Result: %s\n", calc.FormatResult(s.calc.Config().Precision))
	}
	if err == nil {
		return
	}

	var verr *validation.ValidationError
	var operr *calculation.OperationError
	switch {
	case errors.As(err, &verr), errors.As(err, &operr):
		s.printf("Error: %s\n", err)
	default:
		s.logger.Error("calculation failed", zap.String("operation", string(op)), zap.Error(err))
		s.printf("Unexpected error: %s\n", err)
	}
}

func (s *session) history() {
	calcs := s.calc.History()
	if len(calcs) == 0 {
		s.printf("No calculations in history\n")
		return
	}
	s.printf("Calculation History:\n")
	for i, c := range calcs {
		s.printf("%d. %s\n", i+1, c)
	}
}
