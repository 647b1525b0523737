package command

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmynk/paypals/internal/ledger"
	"github.com/mmynk/paypals/internal/session"
)

const prompt = "> "

// Run reads commands from in until "exit" or end of input. Errors from a
// single command are printed and the loop carries on.
func Run(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Welcome to PayPals! Group: %s\n", s.Group())
	if n := s.Skipped(); n > 0 {
		fmt.Fprintf(out, "%d corrupted activities were skipped while loading.\n", n)
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		cmd, err := Parse(line)
		if err == nil {
			err = cmd.Execute(ctx, s, out)
		}
		if err != nil {
			report(out, err)
			continue
		}
		if _, ok := cmd.(*Exit); ok {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	// End of input without "exit" still saves.
	return s.Save(ctx)
}

func report(out io.Writer, err error) {
	var fe *FormatError
	switch {
	case errors.As(err, &fe):
		fmt.Fprintln(out, fe.Error())
	case ledger.KindOf(err) == ledger.KindValidation || ledger.KindOf(err) == ledger.KindBounds:
		fmt.Fprintf(out, "INPUT ERROR: %v\n", err)
	case ledger.KindOf(err) != 0:
		fmt.Fprintf(out, "LOGIC ERROR: %v\n", err)
	default:
		slog.Error("Command failed", "error", err)
		fmt.Fprintf(out, "ERROR: %v\n", err)
	}
}
