// Package scenario replays scripted editing sessions against a scene.
//
// A scenario is a TOML document with an ordered list of steps, each one a
// single user gesture: place an element, move or rotate it, wire two gates,
// change a bus width, step into a composite. The [Player] applies the steps
// through the scene's public mutation surface, exactly as an interactive
// editor would, and forwards committed elements and wires to the simulation
// engine.
//
//	name = "inverter chain"
//
//	[[step]]
//	op = "place"
//	kind = "not"
//	id = 1
//
//	[[step]]
//	op = "tie"
//	from = "1.out0"
//	to = "2.in0"
package scenario

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/logicview/pkg/errors"
)

// Op names a step.
type Op string

const (
	OpPlace  Op = "place"
	OpMove   Op = "move"
	OpRotate Op = "rotate"
	OpTie    Op = "tie"
	OpUntie  Op = "untie"
	OpWidth  Op = "width"
	OpCheck  Op = "check"
	OpRemove Op = "remove"
	OpEnter  Op = "enter"
	OpExit   Op = "exit"
	OpRoot   Op = "root"
	OpName   Op = "name"
	OpState  Op = "state"
)

var ops = map[Op]bool{
	OpPlace: true, OpMove: true, OpRotate: true, OpTie: true, OpUntie: true,
	OpWidth: true, OpCheck: true, OpRemove: true, OpEnter: true, OpExit: true,
	OpRoot: true, OpName: true, OpState: true,
}

// Scenario is a parsed script.
type Scenario struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Steps       []Step `toml:"step"`
}

// Step is one gesture. Which fields matter depends on Op.
type Step struct {
	Op Op `toml:"op"`

	// Element fields (place, move, rotate, remove, enter, name, state).
	ID      uint64 `toml:"id"`
	Kind    string `toml:"kind"`
	Name    string `toml:"name"`
	X       int    `toml:"x"`
	Y       int    `toml:"y"`
	Dir     string `toml:"dir"`
	Inputs  *int   `toml:"inputs"`
	Outputs *int   `toml:"outputs"`
	State   string `toml:"state"`

	// Gate fields (tie, untie, width). Gate references look like "3.in0".
	From  string `toml:"from"`
	To    string `toml:"to"`
	Gate  string `toml:"gate"`
	Width int    `toml:"width"`
	Force bool   `toml:"force"`
}

func (s Step) String() string {
	switch s.Op {
	case OpTie:
		return fmt.Sprintf("%s %s -> %s", s.Op, s.From, s.To)
	case OpUntie, OpCheck:
		if s.Gate == "" {
			return string(s.Op)
		}
		return fmt.Sprintf("%s %s", s.Op, s.Gate)
	case OpWidth:
		if s.Gate != "" {
			return fmt.Sprintf("%s %s=%d", s.Op, s.Gate, s.Width)
		}
		return fmt.Sprintf("%s %d=%d", s.Op, s.ID, s.Width)
	case OpExit, OpRoot:
		return string(s.Op)
	default:
		return fmt.Sprintf("%s %d", s.Op, s.ID)
	}
}

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// Parse decodes a scenario and checks every step names a known op with the
// fields that op needs.
func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	md, err := toml.Decode(string(data), &sc)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode scenario")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidFormat, "unknown scenario keys %s", strings.Join(keys, ", "))
	}
	for i, st := range sc.Steps {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &sc, nil
}

func (s Step) validate() error {
	if !ops[s.Op] {
		return errs.New(errs.ErrCodeInvalidFormat, "unknown op %q", s.Op)
	}
	switch s.Op {
	case OpPlace:
		if s.Kind == "" {
			return errs.New(errs.ErrCodeInvalidFormat, "place needs a kind")
		}
	case OpTie:
		if s.From == "" || s.To == "" {
			return errs.New(errs.ErrCodeInvalidFormat, "tie needs from and to")
		}
	case OpUntie:
		if s.Gate == "" {
			return errs.New(errs.ErrCodeInvalidFormat, "untie needs a gate")
		}
	case OpWidth:
		if s.Width == 0 {
			return errs.New(errs.ErrCodeInvalidFormat, "width needs a width")
		}
	case OpRotate:
		if s.Dir == "" {
			return errs.New(errs.ErrCodeInvalidFormat, "rotate needs a dir")
		}
	case OpState:
		if s.State == "" {
			return errs.New(errs.ErrCodeInvalidFormat, "state needs a state")
		}
	}
	return nil
}

// GateRef addresses a gate of a child of the current scope.
type GateRef struct {
	Element uint64
	Output  bool
	Index   int
}

func (r GateRef) String() string {
	dir := "in"
	if r.Output {
		dir = "out"
	}
	return fmt.Sprintf("%d.%s%d", r.Element, dir, r.Index)
}

// ParseGateRef parses "<element>.in<i>" or "<element>.out<i>".
func ParseGateRef(s string) (GateRef, error) {
	id, pin, ok := strings.Cut(s, ".")
	if !ok {
		return GateRef{}, errs.New(errs.ErrCodeInvalidFormat, "gate reference %q must look like 3.in0", s)
	}
	el, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return GateRef{}, errs.New(errs.ErrCodeInvalidFormat, "gate reference %q: bad element id", s)
	}

	var ref GateRef
	ref.Element = el
	switch {
	case strings.HasPrefix(pin, "out"):
		ref.Output = true
		pin = strings.TrimPrefix(pin, "out")
	case strings.HasPrefix(pin, "in"):
		pin = strings.TrimPrefix(pin, "in")
	default:
		return GateRef{}, errs.New(errs.ErrCodeInvalidFormat, "gate reference %q: pin must start with in or out", s)
	}
	idx, err := strconv.Atoi(pin)
	if err != nil || idx < 0 {
		return GateRef{}, errs.New(errs.ErrCodeInvalidFormat, "gate reference %q: bad pin index", s)
	}
	ref.Index = idx
	return ref, nil
}
