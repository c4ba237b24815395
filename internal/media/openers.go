package media

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed openers.toml
var openersTOML []byte

// OpenerDefinition describes how to hand a URL to an external program.
type OpenerDefinition struct {
	Description string   `toml:"description"`
	Platforms   []string `toml:"platforms"`
	Kinds       []string `toml:"kinds"`
	Command     string   `toml:"command,omitempty"`
	Args        []string `toml:"args,omitempty"`
}

type kindConfig struct {
	Extensions []string `toml:"extensions"`
}

type openersFile struct {
	Kinds   map[string]kindConfig       `toml:"kinds"`
	Openers map[string]OpenerDefinition `toml:"openers"`
}

// Registry holds opener definitions and image extensions.
type Registry struct {
	openers         map[string]OpenerDefinition
	imageExtensions map[string]bool
}

// NewRegistry parses the built-in definitions and merges any user file.
func NewRegistry(userFiles ...string) (*Registry, error) {
	var file openersFile
	if err := toml.Unmarshal(openersTOML, &file); err != nil {
		return nil, fmt.Errorf("parsing openers.toml: %w", err)
	}

	r := &Registry{
		openers:         file.Openers,
		imageExtensions: map[string]bool{},
	}
	for _, ext := range file.Kinds["image"].Extensions {
		r.imageExtensions[ext] = true
	}

	if len(userFiles) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			userFiles = []string{filepath.Join(home, ".config", "newsdesk", "openers.toml")}
		}
	}
	for _, path := range userFiles {
		r.merge(path)
	}

	return r, nil
}

// merge overlays definitions from path; unreadable files are ignored.
func (r *Registry) merge(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var user openersFile
	if err := toml.Unmarshal(data, &user); err != nil {
		return
	}
	for name, def := range user.Openers {
		r.openers[name] = def
	}
	for _, ext := range user.Kinds["image"].Extensions {
		r.imageExtensions[ext] = true
	}
}

// Command returns the program and arguments that open url as kind with the
// named opener on goos. Unknown openers are invoked as "name url".
func (r *Registry) Command(name string, kind Kind, goos, url string) (string, []string, error) {
	def, ok := r.openers[name]
	if !ok {
		return name, []string{url}, nil
	}

	if !contains(def.Platforms, goos) {
		return "", nil, fmt.Errorf("%s not supported on %s", name, goos)
	}
	if !contains(def.Kinds, kind.String()) {
		return "", nil, fmt.Errorf("%s cannot open %s", name, kind)
	}

	program := name
	if def.Command != "" {
		program = def.Command
	}

	out := make([]string, 0, len(def.Args)+1)
	out = append(out, def.Args...)
	out = append(out, url)
	return program, out, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
