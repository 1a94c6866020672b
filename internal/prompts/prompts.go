// Package prompts holds the text-generation prompt templates.
// Defaults are embedded; a TOML file with the same layout overrides them.
package prompts

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed keywords.toml
var defaultKeywordsTOML []byte

// KeywordPrompt is the keyword-expansion template
type KeywordPrompt struct {
	Instruction string  `toml:"instruction"`
	Examples    string  `toml:"examples"`
	Temperature float32 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
}

// Set is the full collection of prompts
type Set struct {
	Keywords KeywordPrompt `toml:"keywords"`
}

// Default returns the embedded prompt set
func Default() Set {
	set, err := parse(defaultKeywordsTOML)
	if err != nil {
		// The embedded file is part of the build.
		panic(fmt.Sprintf("prompts: embedded defaults are invalid: %v", err))
	}
	return set
}

// Load reads a prompt set from path. Empty fields fall back to the defaults.
// An empty path returns the defaults.
func Load(path string) (Set, error) {
	def := Default()
	if path == "" {
		return def, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("failed to read prompts file '%s': %w", path, err)
	}

	set, err := parse(data)
	if err != nil {
		return Set{}, err
	}

	if strings.TrimSpace(set.Keywords.Instruction) == "" {
		set.Keywords.Instruction = def.Keywords.Instruction
	}
	if strings.TrimSpace(set.Keywords.Examples) == "" {
		set.Keywords.Examples = def.Keywords.Examples
	}
	if set.Keywords.Temperature <= 0 {
		set.Keywords.Temperature = def.Keywords.Temperature
	}
	if set.Keywords.MaxTokens <= 0 {
		set.Keywords.MaxTokens = def.Keywords.MaxTokens
	}

	return set, nil
}

func parse(data []byte) (Set, error) {
	var set Set
	if err := toml.Unmarshal(data, &set); err != nil {
		return Set{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return set, nil
}

// Render fills the instruction template with the shopper message
func (p KeywordPrompt) Render(message string) string {
	if strings.Contains(p.Instruction, "%s") {
		return strings.Replace(p.Instruction, "%s", message, 1)
	}
	return p.Instruction + "\n\nShopper request: " + message
}
