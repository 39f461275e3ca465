package sorter

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Decision is the outcome of resolving a pre-existing destination tree.
type Decision int

const (
	// DecisionAppend keeps existing destination contents and writes new
	// files alongside them.
	DecisionAppend Decision = iota
	// DecisionDelete removes all existing destination contents first.
	DecisionDelete
	// DecisionCancel aborts the whole operation.
	DecisionCancel
)

// ConflictResolver decides what to do when the destination already exists.
// The engine resolves the conflict fully before any per-file work begins.
type ConflictResolver interface {
	Resolve(destination string) (Decision, error)
}

// FixedResolver always returns the same decision. The auto-confirm mode uses
// FixedResolver{DecisionDelete} to force a fresh start without prompting.
type FixedResolver struct {
	Decision Decision
}

func (r FixedResolver) Resolve(string) (Decision, error) {
	return r.Decision, nil
}

// TerminalResolver prompts the operator on the attached streams. Deleting
// requires a second explicit confirmation; anything but "yes" cancels.
// Invalid menu input falls back to appending.
type TerminalResolver struct {
	In  io.Reader
	Out io.Writer
}

func (r *TerminalResolver) Resolve(destination string) (Decision, error) {
	reader := bufio.NewReader(r.In)

	fmt.Fprintf(r.Out, "Destination %q already exists.\n", destination)
	fmt.Fprint(r.Out, "Choose an option: (a) Append new files - default, (d) Delete destination contents, (c) Cancel operation: ")
	choice, err := readLine(reader)
	if err != nil {
		return DecisionCancel, fmt.Errorf("read conflict choice: %w", err)
	}

	switch choice {
	case "d":
		fmt.Fprint(r.Out, "All folders and files in the destination directory will be deleted, use with caution. Do you want to delete all contents? (yes/no): ")
		confirm, err := readLine(reader)
		if err != nil {
			return DecisionCancel, fmt.Errorf("read delete confirmation: %w", err)
		}
		if confirm != "yes" {
			fmt.Fprintln(r.Out, "Operation cancelled.")
			return DecisionCancel, nil
		}
		return DecisionDelete, nil
	case "c":
		fmt.Fprintln(r.Out, "Copy operation cancelled.")
		return DecisionCancel, nil
	case "a":
		fmt.Fprintln(r.Out, "Appending to existing directory.")
		return DecisionAppend, nil
	default:
		fmt.Fprintln(r.Out, "Invalid choice. Appending to existing directory by default.")
		return DecisionAppend, nil
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}
