package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pfrederiksen/skate-protocols/internal/judges"
	"github.com/pfrederiksen/skate-protocols/internal/links"
	"github.com/pfrederiksen/skate-protocols/internal/protocol"
)

const (
	DefaultDataDir = "~/.local/share/skate-protocols"

	linkMappingFile = "link_name_mapping.json"
	rosterFile      = "judges.json"
	protocolsDir    = "protocols"
	cleanJudgesFile = "judges.json"
)

// ErrNotFound is returned when a requested file does not exist
var ErrNotFound = errors.New("not found")

// Storage handles persistence below the data directory
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// DataDir returns the resolved data directory
func (s *Storage) DataDir() string {
	return s.dataDir
}

// Resolve anchors a relative output path at the data directory
func (s *Storage) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dataDir, path)
}

// Path returns the path of a file in a competition directory
func (s *Storage) Path(comp, name string) string {
	return filepath.Join(s.dataDir, comp, name)
}

// HasFile reports whether a competition file exists
func (s *Storage) HasFile(comp, name string) bool {
	_, err := os.Stat(s.Path(comp, name))
	return err == nil
}

// ReadFile reads a competition file
func (s *Storage) ReadFile(comp, name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(comp, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s/%s: %w", comp, name, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s/%s: %w", comp, name, err)
	}
	return data, nil
}

// WriteFile writes a competition file, creating the competition directory if needed
func (s *Storage) WriteFile(comp, name string, data []byte) error {
	return writeAtomic(s.Path(comp, name), data)
}

// ListCompetitions returns the competition directory names in sorted order
func (s *Storage) ListCompetitions() ([]string, error) {
	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil, fmt.Errorf("listing data directory: %w", err)
	}

	var comps []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			comps = append(comps, e.Name())
		}
	}
	sort.Strings(comps)
	return comps, nil
}

// HasLinkMapping reports whether the link mapping of a competition exists
func (s *Storage) HasLinkMapping(comp string) bool {
	return s.HasFile(comp, linkMappingFile)
}

// SaveLinkMapping stores the link mapping of a competition
func (s *Storage) SaveLinkMapping(comp string, m links.Mapping) error {
	return s.writeJSON(s.Path(comp, linkMappingFile), m)
}

// LoadLinkMapping loads the link mapping of a competition
func (s *Storage) LoadLinkMapping(comp string) (links.Mapping, error) {
	var m links.Mapping
	if err := s.readJSON(comp, linkMappingFile, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// HasRosters reports whether the raw judge rosters of a competition exist
func (s *Storage) HasRosters(comp string) bool {
	return s.HasFile(comp, rosterFile)
}

// SaveRosters stores the raw judge rosters of a competition
func (s *Storage) SaveRosters(comp string, rows []judges.Judge) error {
	return s.writeJSON(s.Path(comp, rosterFile), rows)
}

// LoadRosters loads the raw judge rosters of a competition
func (s *Storage) LoadRosters(comp string) ([]judges.Judge, error) {
	var rows []judges.Judge
	if err := s.readJSON(comp, rosterFile, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// CleanJudgesPath returns where the cleaned judge table of all competitions goes
func (s *Storage) CleanJudgesPath() string {
	return filepath.Join(s.dataDir, cleanJudgesFile)
}

// SaveCleanJudges stores the cleaned judge table
func (s *Storage) SaveCleanJudges(rows []judges.Judge) error {
	return s.writeJSON(s.CleanJudgesPath(), rows)
}

// LoadCleanJudges loads the cleaned judge table
func (s *Storage) LoadCleanJudges() ([]judges.Judge, error) {
	data, err := os.ReadFile(s.CleanJudgesPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", cleanJudgesFile, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", cleanJudgesFile, err)
	}

	var rows []judges.Judge
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", cleanJudgesFile, err)
	}
	return rows, nil
}

// ProtocolArtifact is the parsed output of one protocol document
type ProtocolArtifact struct {
	Competition string         `json:"competition"`
	Source      string         `json:"source"`
	Category    string         `json:"category"`
	Season      int            `json:"season"`
	RunID       string         `json:"run_id"`
	ParsedAt    string         `json:"parsed_at"`
	Rows        []protocol.Row `json:"rows"`
}

func (s *Storage) artifactPath(comp, source string) string {
	return filepath.Join(s.dataDir, comp, protocolsDir, source+".json")
}

// HasProtocolArtifact reports whether a protocol document was already parsed
func (s *Storage) HasProtocolArtifact(comp, source string) bool {
	_, err := os.Stat(s.artifactPath(comp, source))
	return err == nil
}

// SaveProtocolArtifact stores a parsed protocol document. The parse time is stamped
// when the artifact does not carry one.
func (s *Storage) SaveProtocolArtifact(a *ProtocolArtifact) error {
	if a.ParsedAt == "" {
		a.ParsedAt = clock.Now().UTC().Format(time.RFC3339)
	}
	return s.writeJSON(s.artifactPath(a.Competition, a.Source), a)
}

// LoadProtocolArtifacts loads every parsed protocol document of a competition,
// ordered by source. A competition without artifacts yields an empty slice.
func (s *Storage) LoadProtocolArtifacts(comp string) ([]*ProtocolArtifact, error) {
	dir := filepath.Join(s.dataDir, comp, protocolsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}

	var artifacts []*ProtocolArtifact
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		var a ProtocolArtifact
		if err := s.readJSON(filepath.Join(comp, protocolsDir), e.Name(), &a); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, &a)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Source < artifacts[j].Source
	})
	return artifacts, nil
}

func (s *Storage) readJSON(comp, name string, v interface{}) error {
	data, err := s.ReadFile(comp, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s/%s: %w", comp, name, err)
	}
	return nil
}

func (s *Storage) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return writeAtomic(path, data)
}

// WriteFileAtomic writes data to a temporary file next to path and renames it into
// place, creating missing directories
func WriteFileAtomic(path string, data []byte) error {
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) // nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() // nolint:errcheck
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}
