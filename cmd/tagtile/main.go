package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/tagtile/internal/config"
	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/tui"
	"github.com/1broseidon/tagtile/internal/wm"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "view", "tag":
		os.Exit(runTags(os.Args[1], os.Args[2:]))
	case "focus":
		os.Exit(runFocus(os.Args[2:]))
	case "mfact":
		os.Exit(runMfact(os.Args[2:]))
	case "nmaster":
		os.Exit(runNmaster(os.Args[2:]))
	case "fullscreen", "floating", "kill", "lock", "unlock", "reload":
		os.Exit(runSimple(os.Args[1], os.Args[2:]))
	case "monitor":
		os.Exit(runMonitor(os.Args[2:]))
	case "dispatch":
		os.Exit(runDispatch(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "tui":
		os.Exit(runTUI(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tagtile <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the tagtile daemon (foreground)")
	fmt.Fprintln(w, "  status              Show monitors, tags and clients")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  view <tags|prev>    Show tags on the selected monitor")
	fmt.Fprintln(w, "  tag <tags>          Move the focused client to tags")
	fmt.Fprintln(w, "  focus <next|prev>   Cycle focus through the visible clients")
	fmt.Fprintln(w, "  mfact <value>       Adjust (<1.0) or set (>=1.0, minus 1.0) the master ratio")
	fmt.Fprintln(w, "  nmaster <delta>     Adjust the master count")
	fmt.Fprintln(w, "  fullscreen          Toggle fullscreen for the focused client")
	fmt.Fprintln(w, "  floating            Toggle floating for the focused client")
	fmt.Fprintln(w, "  kill                Close the focused client")
	fmt.Fprintln(w, "  monitor focus <dir> Select the monitor in a direction")
	fmt.Fprintln(w, "  monitor tag <dir>   Send the focused client to the monitor in a direction")
	fmt.Fprintln(w, "  dispatch <action>   Run a binding action, e.g. \"view 3\"")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  lock                Lock the session")
	fmt.Fprintln(w, "  unlock              Unlock the session")
	fmt.Fprintln(w, "  reload              Reload configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "  config init         Create a config interactively")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  tui                 Open the interactive dashboard")
	fmt.Fprintln(w, "  mcp serve|tools     Serve or list the MCP tools (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Tags are 1-based and comma separated (\"1,3\") or \"all\".")
	fmt.Fprintln(w, "Run 'tagtile <command> --help' for command-specific options.")
}

// newFlagSet returns a flag set whose usage prints usage and description.
func newFlagSet(name, usage, description string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, description)
		hasFlags := false
		fs.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	return fs
}

// parseArgs parses args and reports the exit code to use when parsing did
// not succeed.
func parseArgs(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func report(err error) int {
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := newFlagSet("status", "tagtile status [--json]", "Show daemon status via IPC.")
	jsonOut := fs.Bool("json", false, "Print the raw status snapshot as JSON")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		return report(err)
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return report(enc.Encode(status))
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "daemon_running: %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "uptime_seconds: %d\n", status.UptimeSeconds)
	fmt.Fprintf(w, "locked:         %v\n", status.Locked)
	fmt.Fprintf(w, "tags:           %d\n", status.TagCount)
	for _, m := range status.Monitors {
		sel := " "
		if m.Selected {
			sel = "*"
		}
		fmt.Fprintf(w, "%s %s %s %dx%d+%d+%d mfact=%.2f nmaster=%d tags=%s occupied=%s",
			sel, m.Name, m.Layout,
			m.Geometry.Width, m.Geometry.Height, m.Geometry.X, m.Geometry.Y,
			m.Mfact, m.Nmaster, formatTags(m.Active), formatTags(m.Occupied))
		if m.Urgent != 0 {
			fmt.Fprintf(w, " urgent=%s", formatTags(m.Urgent))
		}
		if m.HasFocus {
			fmt.Fprintf(w, " focused=%q", m.Title)
		}
		fmt.Fprintln(w)
	}
	for _, c := range status.Clients {
		flags := ""
		if c.Focused {
			flags += "*"
		}
		if c.Fullscreen {
			flags += "F"
		}
		if c.Floating {
			flags += "~"
		}
		if c.Urgent {
			flags += "!"
		}
		fmt.Fprintf(w, "  [%d] %-3s %s tags=%s %s %q\n", c.Surface, flags, c.Monitor, formatTags(c.Tags), c.AppID, c.Title)
	}
}

// parseTags converts "1,3" or "all" into a tag bit mask.
func parseTags(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return ^uint32(0), nil
	}
	var mask uint32
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, fmt.Errorf("invalid tag %q", part)
		}
		if n < 1 || n > wm.MaxTags {
			return 0, fmt.Errorf("tag %d is not between 1 and %d", n, wm.MaxTags)
		}
		mask |= 1 << uint(n-1)
	}
	return mask, nil
}

func formatTags(mask uint32) string {
	if mask == 0 {
		return "-"
	}
	var parts []string
	for i := 0; i < 32; i++ {
		if mask&(1<<uint(i)) != 0 {
			parts = append(parts, strconv.Itoa(i+1))
		}
	}
	return strings.Join(parts, ",")
}

func runTags(name string, args []string) int {
	usage := "tagtile " + name + " [--toggle] <tags>"
	desc := "Replace the tags of the focused client."
	if name == "view" {
		usage = "tagtile view [--toggle] <tags|prev>"
		desc = "Show tags on the selected monitor; prev returns to the previous tag set."
	}
	fs := newFlagSet(name, usage, desc)
	toggle := fs.Bool("toggle", false, "Toggle the tags instead of replacing them")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires <tags>\n", name)
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if name == "view" && fs.Arg(0) == "prev" {
		return report(client.ViewPrevious())
	}
	mask, err := parseTags(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	switch {
	case name == "view" && *toggle:
		return report(client.ToggleView(mask))
	case name == "view":
		return report(client.View(mask))
	case *toggle:
		return report(client.ToggleTag(mask))
	default:
		return report(client.Tag(mask))
	}
}

func runFocus(args []string) int {
	fs := newFlagSet("focus", "tagtile focus <next|prev>", "Move focus through the visible clients of the selected monitor.")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	var dir int
	switch fs.Arg(0) {
	case "next", "+1":
		dir = 1
	case "prev", "-1":
		dir = -1
	default:
		fmt.Fprintf(os.Stderr, "focus direction must be next or prev, got %q\n", fs.Arg(0))
		return 2
	}
	return report(ipc.NewClient().FocusStack(dir))
}

func runMfact(args []string) int {
	fs := newFlagSet("mfact", "tagtile mfact <value>", "Add value to the master ratio when below 1.0, or set it to value-1.0.")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	v, err := strconv.ParseFloat(fs.Arg(0), 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid mfact %q\n", fs.Arg(0))
		return 2
	}
	return report(ipc.NewClient().SetMfact(v))
}

func runNmaster(args []string) int {
	fs := newFlagSet("nmaster", "tagtile nmaster <delta>", "Adjust the number of clients in the master area.")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}
	delta, err := strconv.Atoi(strings.TrimPrefix(fs.Arg(0), "+"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid nmaster delta %q\n", fs.Arg(0))
		return 2
	}
	return report(ipc.NewClient().IncNmaster(delta))
}

func runSimple(name string, args []string) int {
	descriptions := map[string]string{
		"fullscreen": "Toggle fullscreen for the focused client.",
		"floating":   "Toggle floating for the focused client.",
		"kill":       "Ask the focused client to close.",
		"lock":       "Lock the session.",
		"unlock":     "Unlock a session locked with 'tagtile lock'.",
		"reload":     "Reload the daemon configuration.",
	}
	fs := newFlagSet(name, "tagtile "+name, descriptions[name])
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	switch name {
	case "fullscreen":
		return report(client.ToggleFullscreen())
	case "floating":
		return report(client.ToggleFloating())
	case "kill":
		return report(client.Kill())
	case "lock":
		return report(client.Lock())
	case "unlock":
		return report(client.Unlock())
	default:
		return report(client.Reload())
	}
}

func runMonitor(args []string) int {
	fs := newFlagSet("monitor", "tagtile monitor <focus|tag> <left|right|up|down>", "Select a neighbouring monitor or send the focused client to it.")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	dir, err := wm.ParseDirection(fs.Arg(1))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	client := ipc.NewClient()
	switch fs.Arg(0) {
	case "focus":
		return report(client.FocusMonitor(dir))
	case "tag":
		return report(client.TagMonitor(dir))
	default:
		fmt.Fprintf(os.Stderr, "Unknown monitor command: %s\n", fs.Arg(0))
		return 2
	}
}

func runDispatch(args []string) int {
	fs := newFlagSet("dispatch", "tagtile dispatch <action>", "Run a binding action such as \"view 3\" or \"focus_stack next\".")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}
	action := strings.Join(fs.Args(), " ")
	if _, err := wm.ParseCommand(action); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	return report(ipc.NewClient().Dispatch(action))
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  tagtile config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  tagtile config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  tagtile config explain [--path PATH] <yaml.path>")
		fmt.Fprintln(os.Stderr, "  tagtile config init [--path PATH] [--force]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tagtile/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res, err := loadConfig(*path)
		if err == nil {
			_, err = res.Config.Settings()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tagtile/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if *printDefaults {
			data, err := yaml.Marshal(config.DefaultConfig())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			fmt.Print(string(data))
			return 0
		}

		_ = printEffective // default
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, f := range res.Files {
			fmt.Printf("# loaded: %s\n", f)
		}
		data, err := yaml.Marshal(res.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tagtile/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/tagtile/config.yaml)")
		force := fs.Bool("force", false, "Overwrite an existing config file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		target := *path
		if target == "" {
			var err error
			target, err = config.DefaultConfigPath()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		if _, err := tui.RunInit(target, *force); err != nil {
			if errors.Is(err, tui.ErrAborted) {
				return 1
			}
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config written to %s\n", target)
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func runTUI(args []string) int {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/tagtile/config.yaml)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: tagtile tui [--path PATH]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive dashboard for the running daemon and the config file.")
		fmt.Fprintln(os.Stderr, "Works as an offline config editor when the daemon is not running.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, shift+tab  Switch tabs")
		fmt.Fprintln(os.Stderr, "  m/c/g           Monitors, clients and general tabs")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓        Move through rows")
		fmt.Fprintln(os.Stderr, "  1-9             View a tag on the selected monitor (daemon)")
		fmt.Fprintln(os.Stderr, "  r               Refresh now")
		fmt.Fprintln(os.Stderr, "  e               Edit settings (general tab)")
		fmt.Fprintln(os.Stderr, "  Ctrl+S          Save config and reload the daemon")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C       Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := tui.Run(*path); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceBuiltin:
		if src.Name != "" {
			return "builtin:" + src.Name
		}
		return "builtin"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
