package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Torchwoods/znp-host-framework/pkg/mt"
)

//go:embed commands.yaml
var commandsYAML []byte

// Registry errors.
var (
	// ErrNotFound indicates no command or event has the requested name.
	ErrNotFound = errors.New("not found")

	// ErrInvalid indicates the registry data failed validation.
	ErrInvalid = errors.New("invalid registry")
)

// Field limits.
const (
	MinFieldSize = 1
	MaxFieldSize = 16
)

// ResponseKind tells the dispatcher how to present a synchronous response.
type ResponseKind string

const (
	// ResponseStatus responses carry a single status byte worth naming.
	ResponseStatus ResponseKind = "status"
	// ResponseRaw responses carry data and are printed as hex.
	ResponseRaw ResponseKind = "raw"
	// ResponseNone marks asynchronous requests, which get no response.
	ResponseNone ResponseKind = ""
)

// Field describes one typed input of a command.
type Field struct {
	Name string `yaml:"name"`
	// Size is the width of one value in bytes.
	Size int `yaml:"size"`
	// List is 0 for a scalar field, or the maximum element count of a list
	// whose actual count is read from the preceding field.
	List int `yaml:"list"`
}

// IsList reports whether the field is a variable-length list.
func (f Field) IsList() bool {
	return f.List > 0
}

// Capacity returns the largest number of bytes the field can occupy.
func (f Field) Capacity() int {
	if f.List > 0 {
		return f.Size * f.List
	}
	return f.Size
}

// Command describes one operator command.
type Command struct {
	// Index is the registration position, stable for the process lifetime.
	Index       int
	Name        string
	Description string
	MT          mt.Command
	Response    ResponseKind
	Fields      []Field
}

// Async reports whether the command is fire-and-forget.
func (c *Command) Async() bool {
	return c.MT.Type == mt.TypeAREQ
}

// Capacity returns the buffer size needed to encode any valid input.
func (c *Command) Capacity() int {
	n := 0
	for _, f := range c.Fields {
		n += f.Capacity()
	}
	return n
}

// Event describes an asynchronous indication from the coprocessor.
type Event struct {
	Name string
	Key  mt.Key
}

// Registry is the immutable set of commands and events. It is safe for
// concurrent use.
type Registry struct {
	commands []*Command
	byName   map[string]*Command
	byKey    map[mt.Key]*Command
	events   []*Event
	eventKey map[mt.Key]*Event
}

type fileFormat struct {
	Commands []struct {
		Name        string  `yaml:"name"`
		Subsystem   string  `yaml:"subsystem"`
		ID          uint8   `yaml:"id"`
		Type        string  `yaml:"type"`
		Response    string  `yaml:"response"`
		Description string  `yaml:"description"`
		Fields      []Field `yaml:"fields"`
	} `yaml:"commands"`
	Events []struct {
		Name      string `yaml:"name"`
		Subsystem string `yaml:"subsystem"`
		ID        uint8  `yaml:"id"`
	} `yaml:"events"`
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the registry built from the embedded command table.
// The table is parsed once per process.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		defaultReg, defaultErr = Load(commandsYAML)
	})
	return defaultReg, defaultErr
}

// Load parses and validates a registry document.
func Load(data []byte) (*Registry, error) {
	var doc fileFormat
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	r := &Registry{
		byName:   make(map[string]*Command, len(doc.Commands)),
		byKey:    make(map[mt.Key]*Command, len(doc.Commands)),
		eventKey: make(map[mt.Key]*Event, len(doc.Events)),
	}

	for i, dc := range doc.Commands {
		if dc.Name == "" {
			return nil, fmt.Errorf("%w: command %d has no name", ErrInvalid, i)
		}
		if _, dup := r.byName[dc.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate command %s", ErrInvalid, dc.Name)
		}
		sub, err := mt.ParseSubsystem(dc.Subsystem)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalid, dc.Name, err)
		}

		cmd := &Command{
			Index:       i,
			Name:        dc.Name,
			Description: strings.TrimRight(dc.Description, "\n"),
			MT:          mt.Command{Subsystem: sub, ID: dc.ID},
			Fields:      dc.Fields,
		}

		switch dc.Type {
		case "sreq":
			cmd.MT.Type = mt.TypeSREQ
			switch ResponseKind(dc.Response) {
			case ResponseStatus, ResponseRaw:
				cmd.Response = ResponseKind(dc.Response)
			default:
				return nil, fmt.Errorf("%w: %s: unknown response kind %q", ErrInvalid, dc.Name, dc.Response)
			}
		case "areq":
			cmd.MT.Type = mt.TypeAREQ
			if dc.Response != "" {
				return nil, fmt.Errorf("%w: %s: asynchronous command declares a response", ErrInvalid, dc.Name)
			}
		default:
			return nil, fmt.Errorf("%w: %s: unknown type %q", ErrInvalid, dc.Name, dc.Type)
		}

		if err := validateFields(cmd); err != nil {
			return nil, err
		}

		r.commands = append(r.commands, cmd)
		r.byName[cmd.Name] = cmd
		r.byKey[cmd.MT.Key()] = cmd
	}

	for _, de := range doc.Events {
		sub, err := mt.ParseSubsystem(de.Subsystem)
		if err != nil {
			return nil, fmt.Errorf("%w: event %s: %v", ErrInvalid, de.Name, err)
		}
		ev := &Event{Name: de.Name, Key: mt.Key{Subsystem: sub, ID: de.ID}}
		if _, dup := r.eventKey[ev.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate event %s", ErrInvalid, de.Name)
		}
		r.events = append(r.events, ev)
		r.eventKey[ev.Key] = ev
	}

	return r, nil
}

func validateFields(cmd *Command) error {
	for i, f := range cmd.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: %s: field %d has no name", ErrInvalid, cmd.Name, i)
		}
		if f.Size < MinFieldSize || f.Size > MaxFieldSize {
			return fmt.Errorf("%w: %s.%s: size %d out of range", ErrInvalid, cmd.Name, f.Name, f.Size)
		}
		if f.List < 0 {
			return fmt.Errorf("%w: %s.%s: negative list bound", ErrInvalid, cmd.Name, f.Name)
		}
		if f.IsList() && (i == 0 || cmd.Fields[i-1].IsList()) {
			return fmt.Errorf("%w: %s.%s: list field must follow a scalar count field", ErrInvalid, cmd.Name, f.Name)
		}
	}
	return nil
}

// Len returns the number of commands.
func (r *Registry) Len() int {
	return len(r.commands)
}

// At returns the command at the given registration index.
func (r *Registry) At(index int) (*Command, bool) {
	if index < 0 || index >= len(r.commands) {
		return nil, false
	}
	return r.commands[index], true
}

// Lookup returns the command with the exact name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// ByPrefix returns every command whose name starts with prefix, in
// registration order. Matching is case-sensitive.
func (r *Registry) ByPrefix(prefix string) []*Command {
	var out []*Command
	for _, c := range r.commands {
		if strings.HasPrefix(c.Name, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// Commands returns all commands in registration order.
func (r *Registry) Commands() []*Command {
	out := make([]*Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// CommandFor returns the command whose request shares the key of an
// incoming frame, used to name synchronous responses.
func (r *Registry) CommandFor(key mt.Key) (*Command, bool) {
	c, ok := r.byKey[key]
	return c, ok
}

// Event returns the asynchronous indication registered under key.
func (r *Registry) Event(key mt.Key) (*Event, bool) {
	e, ok := r.eventKey[key]
	return e, ok
}

// EventByName returns the asynchronous indication with the given name.
func (r *Registry) EventByName(name string) (*Event, error) {
	for _, e := range r.events {
		if e.Name == name {
			return e, nil
		}
	}
	return nil, fmt.Errorf("event %s: %w", name, ErrNotFound)
}

// Events returns all events in declaration order.
func (r *Registry) Events() []*Event {
	out := make([]*Event, len(r.events))
	copy(out, r.events)
	return out
}
