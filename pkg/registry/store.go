package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// RecordFile is the name of the document inside every chain directory.
const RecordFile = "chain.json"

var (
	// ErrRecordNotFound is returned when a chain directory has no chain.json.
	ErrRecordNotFound = errors.New("chain.json not found")

	// ErrInvalidFolder is returned for folder names that are not a single path element.
	ErrInvalidFolder = errors.New("invalid chain folder name")

	// ErrNotObject is returned when a record holds valid JSON that is not an object.
	ErrNotObject = errors.New("record is not a JSON object")
)

// RecordError is a per-record failure collected by batch passes.
type RecordError struct {
	Folder string `json:"folder"`
	Error  string `json:"error"`
}

// Store reads and writes chain records under a registry root, one directory per chain.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string { return s.root }

// Folders lists the chain directories in name order. Hidden (".") and internal ("_")
// directories are excluded.
func (s *Store) Folders() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry %s: %w", s.root, err)
	}

	var folders []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		if !s.isDir(entry) {
			continue
		}
		folders = append(folders, name)
	}
	sort.Strings(folders)
	return folders, nil
}

// isDir follows symlinks the way a stat of the entry would.
func (s *Store) isDir(entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(s.root, entry.Name()))
	return err == nil && info.IsDir()
}

// RecordPath returns the chain.json path of folder.
func (s *Store) RecordPath(folder string) string {
	return filepath.Join(s.root, folder, RecordFile)
}

// Load reads and parses the record of folder.
func (s *Store) Load(folder string) (*ChainRecord, error) {
	if err := checkFolder(folder); err != nil {
		return nil, err
	}

	path := s.RecordPath(folder)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", folder, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	rec, err := ParseRecord(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return rec, nil
}

// Save rewrites the whole record file of folder.
func (s *Store) Save(folder string, rec *ChainRecord) error {
	if err := checkFolder(folder); err != nil {
		return err
	}

	data, err := EncodeRecord(rec)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", folder, err)
	}

	path := s.RecordPath(folder)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func checkFolder(folder string) error {
	if folder == "" || folder == "." || folder == ".." ||
		strings.ContainsAny(folder, `/\`) || filepath.Base(folder) != folder {
		return fmt.Errorf("%w: %q", ErrInvalidFolder, folder)
	}
	return nil
}
