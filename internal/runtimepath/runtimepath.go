package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
)

// SocketEnv overrides the IPC socket location.
const SocketEnv = "TAGTILE_SOCKET"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) $XDG_RUNTIME_DIR/tagtile (if XDG_RUNTIME_DIR is set)
// 2) /run/user/<uid>/tagtile (if /run/user/<uid> is present)
// 3) /tmp/tagtile-runtime-<uid>
//
// The directory is created with mode 0700.
func Dir() (string, error) {
	var dir string
	uid := os.Getuid()
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		dir = filepath.Join(runtimeDir, "tagtile")
	} else if info, err := os.Stat(fmt.Sprintf("/run/user/%d", uid)); err == nil && info.IsDir() {
		dir = filepath.Join(fmt.Sprintf("/run/user/%d", uid), "tagtile")
	} else {
		dir = fmt.Sprintf("/tmp/tagtile-runtime-%d", uid)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return dir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	if path := os.Getenv(SocketEnv); path != "" {
		return path, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "tagtile.sock"), nil
}
