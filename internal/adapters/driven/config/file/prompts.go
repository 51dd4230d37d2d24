package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/scanprep-labs/scanprep/internal/core/ports/driven"
	"github.com/scanprep-labs/scanprep/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// defaultPrompts holds the built-in prompt templates written to disk on
// first use. Users can then edit the .txt files to customise behaviour.
// The %s placeholders are positional and must be preserved when editing.
var defaultPrompts = map[string]string{
	driven.PromptSegmentation: `You are given raw OCR text from a photographed worksheet that may contain several problems. Split it into the individual problems.

Respond with a JSON array and nothing else. Each element must be an object with exactly these fields:
  "problem_number": the printed problem number, or the 1-based position if none is printed,
  "text": the complete problem statement,
  "confidence": a number between 0 and 1.

Do not merge separate problems and do not invent text that is not present in the input.

OCR text:
%s`,

	driven.PromptRanking: `Rate how well each stored problem matches the input problem.

Respond with a JSON array and nothing else. Each element must be an object with exactly these fields:
  "problem_id": the candidate id exactly as listed,
  "similarity_score": a number between 0 and 1,
  "match_type": one of "exact", "similar" or "partial",
  "reasoning": one short sentence.

Only include candidates that are plausibly the same or a related problem.

Input problem:
%s

Candidates:
%s`,
}

// PromptStore loads prompt templates from text files in the prompts
// directory, writing the defaults on first use so they can be edited.
// Loaded prompts are cached; Reload or an fsnotify event clears the cache.
type PromptStore struct {
	mu        sync.RWMutex
	dir       string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

// NewPromptStore creates a prompt store rooted at configDir/prompts.
// If configDir is empty, defaults to ~/.scanprep.
// Initialisation is lazy: the directory and default files are only created
// on first Load.
func NewPromptStore(configDir string) (*PromptStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".scanprep")
	}

	return &PromptStore{
		dir:   filepath.Join(configDir, "prompts"),
		cache: make(map[string]string),
	}, nil
}

// initialise creates the prompts directory and writes default prompt files
// for any that don't exist yet. Called lazily on first Load.
func (s *PromptStore) initialise() error {
	s.initOnce.Do(func() {
		if err := os.MkdirAll(s.dir, 0700); err != nil {
			s.initErr = fmt.Errorf("creating prompts directory: %w", err)
			return
		}

		for name, content := range defaultPrompts {
			path := s.promptPath(name)
			if _, err := os.Stat(path); err == nil {
				continue // user may have customised it
			}
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("writing default prompt %q: %w", name, err)
				return
			}
		}

		if err := s.createReadme(); err != nil {
			s.initErr = err
		}
	})
	return s.initErr
}

// Load returns the prompt template for the given name.
func (s *PromptStore) Load(name string) (string, error) {
	if err := s.initialise(); err != nil {
		return "", err
	}

	s.mu.RLock()
	cached, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring the write lock
	if cached, ok := s.cache[name]; ok {
		return cached, nil
	}

	data, err := os.ReadFile(s.promptPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			// File was removed after initialisation; fall back to the default
			if def, ok := defaultPrompts[name]; ok {
				s.cache[name] = def
				return def, nil
			}
			return "", fmt.Errorf("unknown prompt %q", name)
		}
		return "", fmt.Errorf("reading prompt %q: %w", name, err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("prompt %q is empty", name)
	}

	s.cache[name] = prompt
	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
}

// Watch starts an fsnotify watcher on the prompts directory that clears the
// cache whenever a prompt file changes, so edits take effect without
// restarting. Safe to call more than once; only the first call starts the
// watcher. Close stops it.
func (s *PromptStore) Watch() error {
	if err := s.initialise(); err != nil {
		return err
	}

	var startErr error
	s.watchOnce.Do(func() {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			startErr = fmt.Errorf("creating prompt watcher: %w", err)
			return
		}
		if err := watcher.Add(s.dir); err != nil {
			watcher.Close()
			startErr = fmt.Errorf("watching prompts directory: %w", err)
			return
		}
		s.watcher = watcher

		go func() {
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
						logger.Debug("Prompt file changed, clearing cache: %s", event.Name)
						s.Reload()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					logger.Debug("Prompt watcher error: %v", err)
				}
			}
		}()
	})
	return startErr
}

// Close stops the fsnotify watcher if one was started.
func (s *PromptStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}

// Dir returns the prompts directory path.
func (s *PromptStore) Dir() string {
	return s.dir
}

// promptPath returns the file path for a named prompt.
func (s *PromptStore) promptPath(name string) string {
	return filepath.Join(s.dir, name+".txt")
}

// createReadme writes a README explaining the prompt files, if absent.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.dir, "README.md")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	content := `# Prompt Templates

These files are the prompt templates scanprep sends to the language model.
Edit them to tune segmentation and match ranking for your worksheets.

- segmentation.txt: splits OCR text into individual problems.
  Contains one %s placeholder for the raw OCR text.
- ranking.txt: rates stored candidates against a scanned problem.
  Contains two %s placeholders: the problem text, then the candidate list.

Placeholders are positional and must be kept. The model must answer with a
bare JSON array; if you change the response instructions, keep that contract
or the response will be discarded and the heuristic fallback used instead.

Delete a file to restore its built-in default on next run.
`

	return os.WriteFile(path, []byte(content), 0600)
}
