// Package games bundles a few small game descriptions used by tests, the
// demo and the command line tool.
package games

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gitrdm/goggp/pkg/gdl"
)

//go:embed *.kif
var files embed.FS

// Bundled game names.
const (
	TicTacToe = "tictactoe"
	Buttons   = "buttons"
	RPS       = "rps"
)

// Names returns the bundled game names in lexical order.
func Names() []string {
	entries, err := files.ReadDir(".")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".kif"))
	}
	sort.Strings(names)
	return names
}

// Source returns the KIF text of a bundled game.
func Source(name string) (string, error) {
	data, err := files.ReadFile(name + ".kif")
	if err != nil {
		return "", fmt.Errorf("games: unknown game %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return string(data), nil
}

// Load parses a bundled game.
func Load(name string) (*gdl.Database, error) {
	src, err := Source(name)
	if err != nil {
		return nil, err
	}
	return gdl.ParseDatabase(src)
}

// MustLoad is Load for names known to exist; it panics on error.
func MustLoad(name string) *gdl.Database {
	db, err := Load(name)
	if err != nil {
		panic(err)
	}
	return db
}

// Resolve loads a game by bundled name or, failing that, from a file path.
func Resolve(nameOrPath string) (*gdl.Database, error) {
	if src, err := Source(nameOrPath); err == nil {
		return gdl.ParseDatabase(src)
	}
	data, err := os.ReadFile(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("games: %s is neither a bundled game nor a readable file: %w", nameOrPath, err)
	}
	return gdl.ParseDatabase(string(data))
}
