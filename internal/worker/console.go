package worker

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Exec applies one console line to the roster:
//
//	tag <uid>      toggle attendance for the tag holder
//	done <worker>  press the completion button of worker
func (r *Roster) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	if len(fields) != 2 {
		return fmt.Errorf("expected '<tag|done> <arg>', got %q", line)
	}

	switch strings.ToLower(fields[0]) {
	case "tag":
		_, _, err := r.ToggleAttendance(fields[1])
		return err
	case "done":
		_, err := r.Complete(fields[1])
		return err
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

// ReadCommands runs Exec for every line of in until EOF. Errors are reported
// to errOut and do not stop the loop.
func (r *Roster) ReadCommands(in io.Reader, errOut io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := r.Exec(scanner.Text()); err != nil {
			fmt.Fprintf(errOut, "%v\n", err)
		}
	}
	return scanner.Err()
}
