package wm

import (
	"fmt"
	"strconv"
	"strings"
)

// CommandKind names an operation that bindings, IPC and MCP can trigger.
type CommandKind string

const (
	CmdView             CommandKind = "view"
	CmdViewPrevious     CommandKind = "view_prev"
	CmdToggleView       CommandKind = "toggle_view"
	CmdTag              CommandKind = "tag"
	CmdToggleTag        CommandKind = "toggle_tag"
	CmdFocusStack       CommandKind = "focus_stack"
	CmdIncNmaster       CommandKind = "inc_nmaster"
	CmdSetMfact         CommandKind = "set_mfact"
	CmdToggleFullscreen CommandKind = "toggle_fullscreen"
	CmdToggleFloating   CommandKind = "toggle_floating"
	CmdKill             CommandKind = "kill"
	CmdFocusMonitor     CommandKind = "focus_monitor"
	CmdTagMonitor       CommandKind = "tag_monitor"
	CmdMove             CommandKind = "move"
	CmdResize           CommandKind = "resize"
)

// Command is a parsed operation with its argument.
type Command struct {
	Kind  CommandKind
	Tags  uint32
	Int   int
	Float float64
	Dir   Direction
}

func (c Command) String() string {
	switch c.Kind {
	case CmdView, CmdToggleView, CmdTag, CmdToggleTag:
		return fmt.Sprintf("%s 0x%x", c.Kind, c.Tags)
	case CmdFocusStack, CmdIncNmaster:
		return fmt.Sprintf("%s %+d", c.Kind, c.Int)
	case CmdSetMfact:
		return fmt.Sprintf("%s %g", c.Kind, c.Float)
	case CmdFocusMonitor, CmdTagMonitor:
		return fmt.Sprintf("%s %s", c.Kind, c.Dir)
	default:
		return string(c.Kind)
	}
}

// ParseCommand parses a binding action such as "view 3", "focus_stack next",
// "set_mfact +0.05" or "focus_monitor left". Tag arguments are 1-based
// tag numbers, or "all".
func ParseCommand(s string) (Command, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty action", ErrUnknownCommand)
	}
	cmd := Command{Kind: CommandKind(strings.ToLower(fields[0]))}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	needArg := func() error {
		if arg == "" {
			return fmt.Errorf("action %q needs an argument", cmd.Kind)
		}
		return nil
	}

	switch cmd.Kind {
	case CmdView, CmdToggleView, CmdTag, CmdToggleTag:
		if err := needArg(); err != nil {
			return Command{}, err
		}
		tags, err := parseTagArg(arg)
		if err != nil {
			return Command{}, err
		}
		cmd.Tags = tags
	case CmdFocusStack, CmdIncNmaster:
		if err := needArg(); err != nil {
			return Command{}, err
		}
		switch strings.ToLower(arg) {
		case "next":
			cmd.Int = 1
		case "prev", "previous":
			cmd.Int = -1
		default:
			n, err := strconv.Atoi(arg)
			if err != nil {
				return Command{}, fmt.Errorf("invalid %s argument %q: %w", cmd.Kind, arg, err)
			}
			cmd.Int = n
		}
	case CmdSetMfact:
		if err := needArg(); err != nil {
			return Command{}, err
		}
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return Command{}, fmt.Errorf("invalid set_mfact argument %q: %w", arg, err)
		}
		cmd.Float = f
	case CmdFocusMonitor, CmdTagMonitor:
		if err := needArg(); err != nil {
			return Command{}, err
		}
		dir, err := ParseDirection(arg)
		if err != nil {
			return Command{}, err
		}
		cmd.Dir = dir
	case CmdViewPrevious, CmdToggleFullscreen, CmdToggleFloating, CmdKill, CmdMove, CmdResize:
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, fields[0])
	}
	return cmd, nil
}

func parseTagArg(arg string) (uint32, error) {
	if strings.EqualFold(arg, "all") {
		return ^uint32(0), nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid tag %q: %w", arg, err)
	}
	if n < 1 || n > MaxTags {
		return 0, fmt.Errorf("tag %d out of range 1..%d", n, MaxTags)
	}
	return 1 << uint(n-1), nil
}

// Dispatch runs a command against the server.
func (s *Server) Dispatch(cmd Command) error {
	switch cmd.Kind {
	case CmdView:
		s.View(cmd.Tags)
	case CmdViewPrevious:
		s.ViewPrevious()
	case CmdToggleView:
		s.ToggleView(cmd.Tags)
	case CmdTag:
		return s.Tag(cmd.Tags)
	case CmdToggleTag:
		return s.ToggleTag(cmd.Tags)
	case CmdFocusStack:
		return s.FocusStack(cmd.Int)
	case CmdIncNmaster:
		return s.IncNmaster(cmd.Int)
	case CmdSetMfact:
		return s.SetMfact(cmd.Float)
	case CmdToggleFullscreen:
		return s.ToggleFullscreen()
	case CmdToggleFloating:
		return s.ToggleFloating()
	case CmdKill:
		return s.KillClient()
	case CmdFocusMonitor:
		return s.FocusMonitor(cmd.Dir)
	case CmdTagMonitor:
		return s.TagMonitor(cmd.Dir)
	case CmdMove:
		return s.BeginGrab(CursorMove)
	case CmdResize:
		return s.BeginGrab(CursorResize)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
	return nil
}
