// Package catalog reads the immutable questionnaire definitions and
// practice recommendation trees that an external content-authoring process
// drops into the profiler and practice directories. Files are re-read on
// every call; content changes take effect on the next request.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrCatalogUnavailable is returned when a definition file is missing or
// cannot be parsed.
var ErrCatalogUnavailable = errors.New("catalog file missing or unreadable")

// ErrBadFilename is returned when a filename would escape the catalog
// directory.
var ErrBadFilename = errors.New("invalid catalog filename")

// PracticeRefs holds the practice ids a question is tagged with. The file
// format allows either a single string or an array.
type PracticeRefs []string

// UnmarshalJSON accepts "p1" and ["p1","p2"] alike.
func (p *PracticeRefs) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = PracticeRefs{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("practice must be a string or array of strings: %w", err)
	}
	*p = PracticeRefs(many)
	return nil
}

// Question is one questionnaire entry.
type Question struct {
	Question string       `json:"question"`
	Domain   string       `json:"domain"`
	Practice PracticeRefs `json:"practice,omitempty"`
}

// Profiler is a parsed questionnaire definition file.
type Profiler struct {
	Questions      []Question        `json:"questions"`
	AnswerOptions  []json.RawMessage `json:"answerOptions"`
	PracticeSource []string          `json:"practice_source,omitempty"`
}

// FindQuestion returns the entry whose text matches exactly, or nil.
func (p *Profiler) FindQuestion(text string) *Question {
	for i := range p.Questions {
		if p.Questions[i].Question == text {
			return &p.Questions[i]
		}
	}
	return nil
}

// Domains returns the distinct domains in question order.
func (p *Profiler) Domains() []string {
	seen := make(map[string]bool)
	var domains []string
	for _, q := range p.Questions {
		if !seen[q.Domain] {
			seen[q.Domain] = true
			domains = append(domains, q.Domain)
		}
	}
	return domains
}

// PracticeSourceName returns the first practice source with any .json
// extension stripped, or "" when the profiler has no practice mapping.
func (p *Profiler) PracticeSourceName() string {
	if len(p.PracticeSource) == 0 {
		return ""
	}
	return strings.TrimSuffix(p.PracticeSource[0], ".json")
}

// Strategy is a leaf node of a practice tree.
type Strategy struct {
	Text string `json:"text"`
}

// PracticeSubcategory is a recommendable intervention. Ids are globally
// unique and already include the category prefix.
type PracticeSubcategory struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Children []Strategy `json:"children"`
}

// PracticeCategory is a top-level grouping in a practice tree.
type PracticeCategory struct {
	Name     string                `json:"name"`
	Children []PracticeSubcategory `json:"children"`
}

// Store reads catalog files from the configured directories.
type Store struct {
	profilersDir string
	practiceDir  string
}

// NewStore creates a Store over the two catalog directories.
func NewStore(profilersDir, practiceDir string) *Store {
	return &Store{profilersDir: profilersDir, practiceDir: practiceDir}
}

// LoadProfiler parses the profiler definition stored under filename.
func (s *Store) LoadProfiler(filename string) (*Profiler, error) {
	path, err := securePath(s.profilersDir, filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCatalogUnavailable, filename)
	}

	var def Profiler
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCatalogUnavailable, filename, err)
	}

	return &def, nil
}

// LoadPractice parses the practice tree with the given name. The .json
// extension is optional.
func (s *Store) LoadPractice(name string) ([]PracticeCategory, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	path, err := securePath(s.practiceDir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCatalogUnavailable, name)
	}

	var tree []PracticeCategory
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrCatalogUnavailable, name, err)
	}

	return tree, nil
}

// RawPractice returns the undecoded contents of a practice file after
// validating it parses as JSON.
func (s *Store) RawPractice(name string) (json.RawMessage, error) {
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	path, err := securePath(s.practiceDir, name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", os.ErrNotExist, name)
		}
		return nil, fmt.Errorf("%w: %s", ErrCatalogUnavailable, name)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", ErrCatalogUnavailable, name)
	}

	return json.RawMessage(data), nil
}

// ProfilerFilenames lists the .json files in the profiler directory,
// sorted by name. Used to seed the profiler type registry.
func (s *Store) ProfilerFilenames() ([]string, error) {
	entries, err := os.ReadDir(s.profilersDir)
	if err != nil {
		return nil, fmt.Errorf("reading profiler directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// securePath joins base and name and rejects results that escape base.
func securePath(base, name string) (string, error) {
	path := filepath.Join(base, name)
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("resolving base dir: %w", err)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if absPath != absBase && !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", ErrBadFilename
	}
	return absPath, nil
}
