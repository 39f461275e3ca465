package config

import (
	"os"
	"path/filepath"
)

const defaultOwnAETitle = "DCMSORT"

// Default returns the built-in configuration used when no file is present.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir(),
		},
		DCMTK: DCMTK{
			OwnAETitle: defaultOwnAETitle,
		},
		Nodes: map[string]string{},
		Logging: Logging{
			Format: "console",
			Level:  "info",
		},
		Sorting: Sorting{
			Journal: true,
		},
	}
}

func defaultLogDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && base != "" {
		return filepath.Join(base, "dcmsort")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "dcmsort")
}
