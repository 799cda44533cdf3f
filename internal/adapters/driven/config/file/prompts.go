package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/docqa-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docqa-cli/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// promptSpec describes one customisable prompt file.
type promptSpec struct {
	name         string
	about        string
	placeholders int // number of %s verbs the template must keep
	content      string
}

// builtinPrompts are written to disk on first use and returned whenever the
// user's copy is missing, empty or has the wrong placeholders.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var builtinPrompts = []promptSpec{
	{
		name:    driven.PromptAnswerSystem,
		about:   "System prompt that grounds answers in retrieved chunks",
		content: `You are a precise document assistant. Answer the user's query using only the retrieved chunks. Quote figures, limits and conditions exactly as they appear. If the retrieved chunks say "No relevant context found.", answer from general knowledge and say that the document did not cover the question. Keep answers to one or two sentences.`,
	},
	{
		name:         driven.PromptAnswerUser,
		about:        "Combines the retrieved chunks (first %s) and the question (second %s)",
		placeholders: 2,
		content:      "Retrieved Chunks: %s.\nUser Query: %s.",
	},
	{
		name:    driven.PromptChunkTitle,
		about:   "Asks for a JSON title and summary per chunk",
		content: `Read the document excerpt and return a JSON object with exactly two keys: "title" (at most eight words) and "summary" (one sentence). Return only the JSON object.`,
	},
	{
		name:  driven.PromptImageDescribe,
		about: "Describes images found in slides and image uploads",
		content: `Describe this image for a document search index.
Transcribe any visible text exactly, then summarise charts, tables and diagrams.
Return plain text only.`,
	},
}

func lookupSpec(name string) (promptSpec, bool) {
	for _, spec := range builtinPrompts {
		if spec.name == name {
			return spec, true
		}
	}
	return promptSpec{}, false
}

// PromptStore serves LLM prompts from <dir>/<name>.txt, falling back to the
// built-in text. The directory is seeded lazily on the first Load.
type PromptStore struct {
	dir string

	seedOnce sync.Once
	seedErr  error

	mu    sync.RWMutex
	cache map[string]string
}

// NewPromptStore creates a prompt store rooted at dir, or ~/.docqa/prompts
// when dir is empty. No files are touched until the first Load.
func NewPromptStore(dir string) (*PromptStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		dir = filepath.Join(home, ".docqa", "prompts")
	}
	return &PromptStore{dir: dir, cache: make(map[string]string)}, nil
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.dir
}

// Load returns the template for name. Only known prompt names resolve.
func (s *PromptStore) Load(name string) (string, error) {
	spec, ok := lookupSpec(name)
	if !ok {
		return "", fmt.Errorf("load prompt %q: unknown prompt", name)
	}

	s.seedOnce.Do(s.seed)
	if s.seedErr != nil {
		logger.Debug("prompts: %v", s.seedErr)
		return spec.content, nil
	}

	s.mu.RLock()
	prompt, cached := s.cache[name]
	s.mu.RUnlock()
	if cached {
		return prompt, nil
	}

	prompt = s.read(spec)

	s.mu.Lock()
	if existing, ok := s.cache[name]; ok {
		prompt = existing
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload drops cached templates so edits on disk are picked up.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// read loads the user's copy of a prompt, or the built-in text when the
// copy is unusable.
func (s *PromptStore) read(spec promptSpec) string {
	data, err := os.ReadFile(s.path(spec.name))
	if err != nil {
		return spec.content
	}

	prompt := strings.TrimSpace(string(data))
	switch {
	case prompt == "":
		return spec.content
	case strings.Count(prompt, "%s") != spec.placeholders:
		logger.Warn("prompts: %s needs %d %%s placeholder(s), using built-in", s.path(spec.name), spec.placeholders)
		return spec.content
	}
	return prompt
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// seed creates the directory, any missing prompt files and the README.
// Existing files are never overwritten.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		s.seedErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	files := map[string]string{"README.md": readme()}
	for _, spec := range builtinPrompts {
		files[spec.name+".txt"] = spec.content
	}

	for file, content := range files {
		path := filepath.Join(s.dir, file)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			s.seedErr = fmt.Errorf("write %s: %w", file, err)
			return
		}
	}
}

// readme documents the prompt files, generated from builtinPrompts.
func readme() string {
	var b strings.Builder
	b.WriteString("# docqa Prompts\n\n")
	b.WriteString("Edit these files to change what docqa sends to the language model.\n")
	b.WriteString("Edits apply to the next command, or after restarting `docqa serve`.\n\n")
	b.WriteString("## Files\n\n")
	for _, spec := range builtinPrompts {
		fmt.Fprintf(&b, "- `%s.txt` - %s\n", spec.name, spec.about)
	}
	b.WriteString("\nA file that is empty, or whose `%s` count differs from the built-in\n")
	b.WriteString("prompt, is ignored and the built-in prompt is used instead.\n")
	return b.String()
}
