package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/1broseidon/tagtile/internal/ipc"
	"github.com/1broseidon/tagtile/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tagtile mcp <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Expose the window manager to MCP clients. Every tool is a request")
	fmt.Fprintln(w, "to the running daemon, so 'tagtile daemon' must be up.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve    Serve the tagtile tools on stdin/stdout")
	fmt.Fprintln(w, "  tools    List the tools and what they do")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		return runMCPServe(args[1:])
	case "tools":
		return runMCPTools(args[1:])
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}
}

func runMCPServe(args []string) int {
	fs := newFlagSet("mcp serve", "tagtile mcp serve [--socket PATH]",
		"Serve get_status, view_tags, tag_client and the other tagtile tools\nover the stdio transport until stdin closes or a signal arrives.")
	socket := fs.String("socket", "", "Daemon IPC socket (default: $XDG_RUNTIME_DIR/tagtile/tagtile.sock)")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "mcp serve takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	if *socket != "" {
		client = ipc.NewClientWithPath(*socket)
	}
	// Fail early with a readable message instead of on the first tool call.
	if err := client.Ping(); err != nil {
		return report(fmt.Errorf("tagtile daemon unreachable: %w", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer(client).Run(ctx); err != nil && ctx.Err() == nil {
		return report(fmt.Errorf("mcp server: %w", err))
	}
	return 0
}

func runMCPTools(args []string) int {
	fs := newFlagSet("mcp tools", "tagtile mcp tools", "List the MCP tools served by 'tagtile mcp serve'.")
	if code, ok := parseArgs(fs, args); !ok {
		return code
	}
	printTools(os.Stdout)
	return 0
}

// printTools writes one line per tool: its name and the first sentence of
// its description.
func printTools(w io.Writer) {
	for _, tool := range mcp.Tools() {
		desc := tool.Description
		if i := strings.Index(desc, ". "); i >= 0 {
			desc = desc[:i+1]
		}
		fmt.Fprintf(w, "  %-18s %s\n", tool.Name, desc)
	}
}
