package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/parkinglot/pkg/types"
)

// errUsage marks malformed commands and flag values.
var errUsage = errors.New("usage")

// errQuit is returned by Exec for quit and exit.
var errQuit = errors.New("quit")

const helpText = `commands:
  add <id> public|private   register a free space
  remove <id>               delete a space
  occupy <id>               mark a space occupied
  vacate <id>               mark a space free
  find <id>                 show a space
  public <id>               show a space through the public-access path
  snapshot                  show the occupancy of every space
  list [public|private] [occupied|free]
                            show spaces ordered by id
  help                      show this text
  quit                      end the session
`

// Interpreter executes text commands against one SpaceRegistry.
type Interpreter struct {
	reg      types.SpaceRegistry
	out      io.Writer
	jsonMode bool
	log      *slog.Logger
}

// InterpreterOption configures an Interpreter.
type InterpreterOption func(*Interpreter)

// WithJSON switches output to one JSON document per command.
func WithJSON(on bool) InterpreterOption {
	return func(in *Interpreter) { in.jsonMode = on }
}

// WithInterpreterLogger sets the logger for executed commands.
func WithInterpreterLogger(l *slog.Logger) InterpreterOption {
	return func(in *Interpreter) {
		if l != nil {
			in.log = l
		}
	}
}

// NewInterpreter returns an Interpreter writing results to out.
func NewInterpreter(reg types.SpaceRegistry, out io.Writer, opts ...InterpreterOption) *Interpreter {
	in := &Interpreter{
		reg: reg,
		out: out,
		log: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run reads commands from r line by line. Blank lines and lines starting
// with # are skipped. When keepGoing is false the first failing command
// stops the run and its error is returned with the line number; otherwise
// failures are reported to errOut and the run continues. prompt, when
// non-empty, is written to errOut before each line is read. Lines have no
// length limit.
func (in *Interpreter) Run(r io.Reader, errOut io.Writer, prompt string, keepGoing bool) error {
	br := bufio.NewReader(r)
	lineNo := 0
	for {
		if prompt != "" {
			fmt.Fprint(errOut, prompt)
		}
		line, readErr := br.ReadString('\n')
		if line == "" && readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
		lineNo++
		err := in.Exec(strings.TrimRight(line, "\r\n"))
		switch {
		case err == nil:
		case errors.Is(err, errQuit):
			return nil
		case keepGoing:
			fmt.Fprintln(errOut, "error:", err)
		default:
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil
			}
			return readErr
		}
	}
}

// Exec runs one command line.
func (in *Interpreter) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	in.log.Debug("exec", "command", name, "args", args)

	switch name {
	case "add":
		return in.add(args)
	case "remove", "rm":
		return in.remove(args)
	case "occupy":
		return in.setOccupancy(args, true)
	case "vacate", "free":
		return in.setOccupancy(args, false)
	case "find", "get":
		return in.find("find", args, in.reg.Find)
	case "public":
		return in.find("public", args, in.reg.AccessPublic)
	case "snapshot":
		return in.snapshot(args)
	case "list", "ls":
		return in.list(args)
	case "help":
		_, err := io.WriteString(in.out, helpText)
		return err
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("%w: unknown command %q (try help)", errUsage, name)
	}
}

func (in *Interpreter) add(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: add <id> public|private", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	var public bool
	switch strings.ToLower(args[1]) {
	case "public":
		public = true
	case "private":
	default:
		return fmt.Errorf("%w: add <id> public|private", errUsage)
	}
	if err := in.reg.Add(id, public); err != nil {
		return err
	}
	return in.printSpace(types.ParkingSpace{SpaceID: id, IsPublic: public}, "added ")
}

func (in *Interpreter) remove(args []string) error {
	id, err := singleID("remove", args)
	if err != nil {
		return err
	}
	if err := in.reg.Remove(id); err != nil {
		return err
	}
	if in.jsonMode {
		return in.printJSON(map[string]int{"removed": id})
	}
	_, err = fmt.Fprintf(in.out, "removed space %d\n", id)
	return err
}

func (in *Interpreter) setOccupancy(args []string, occupied bool) error {
	verb := "vacate"
	if occupied {
		verb = "occupy"
	}
	id, err := singleID(verb, args)
	if err != nil {
		return err
	}
	if err := in.reg.UpdateOccupancy(id, occupied); err != nil {
		return err
	}
	s, err := in.reg.Find(id)
	if err != nil {
		return err
	}
	return in.printSpace(s, "")
}

func (in *Interpreter) find(verb string, args []string, lookup func(int) (types.ParkingSpace, error)) error {
	id, err := singleID(verb, args)
	if err != nil {
		return err
	}
	s, err := lookup(id)
	if err != nil {
		return err
	}
	return in.printSpace(s, "")
}

func (in *Interpreter) snapshot(args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: snapshot takes no arguments", errUsage)
	}
	snap, err := in.reg.Snapshot()
	if err != nil {
		return err
	}
	if in.jsonMode {
		return in.printJSON(snap)
	}
	ids := make([]int, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if _, err := fmt.Fprintf(in.out, "%d: %s\n", id, occupancyWord(snap[id])); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) list(args []string) error {
	var filter types.SpaceFilter
	for _, a := range args {
		switch strings.ToLower(a) {
		case "public":
			filter.Public = types.Bool(true)
		case "private":
			filter.Public = types.Bool(false)
		case "occupied":
			filter.Occupied = types.Bool(true)
		case "free":
			filter.Occupied = types.Bool(false)
		default:
			return fmt.Errorf("%w: list [public|private] [occupied|free]", errUsage)
		}
	}
	spaces, err := in.reg.List(filter)
	if err != nil {
		return err
	}
	if in.jsonMode {
		return in.printJSON(spaces)
	}
	for _, s := range spaces {
		if _, err := fmt.Fprintln(in.out, describe(s)); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) printSpace(s types.ParkingSpace, prefix string) error {
	if in.jsonMode {
		return in.printJSON(s)
	}
	_, err := fmt.Fprintf(in.out, "%s%s\n", prefix, describe(s))
	return err
}

func (in *Interpreter) printJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(in.out, string(data))
	return err
}

// describe renders a space as "space 1: public, free".
func describe(s types.ParkingSpace) string {
	visibility := "private"
	if s.IsPublic {
		visibility = "public"
	}
	return fmt.Sprintf("space %d: %s, %s", s.SpaceID, visibility, occupancyWord(s.IsOccupied))
}

func occupancyWord(occupied bool) string {
	if occupied {
		return "occupied"
	}
	return "free"
}

func singleID(verb string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s <id>", errUsage, verb)
	}
	return parseID(args[0])
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: space id %q is not an integer", errUsage, s)
	}
	return id, nil
}
