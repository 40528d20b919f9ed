package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pfrederiksen/activity-intake/internal/activity"
	"gopkg.in/yaml.v3"
)

// Storage locates corpus files under a data directory
type Storage struct {
	dataDir string
}

// New creates a Storage rooted at dataDir. A leading "~/" is expanded.
func New(dataDir string) (*Storage, error) {
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	return &Storage{dataDir: dataDir}, nil
}

// DataDir returns the resolved data directory
func (s *Storage) DataDir() string {
	return s.dataDir
}

func (s *Storage) categoryPath(c activity.Category) string {
	return filepath.Join(s.dataDir, c.CorpusFile())
}

// LoadCorpus reads every category file. Missing files count as empty.
func (s *Storage) LoadCorpus() (*Corpus, error) {
	corpus := NewCorpus()
	for _, c := range activity.Categories {
		records, err := readRecords(s.categoryPath(c))
		if err != nil {
			return nil, fmt.Errorf("loading %s corpus: %w", c, err)
		}
		corpus.Add(c, records...)
	}
	return corpus, nil
}

func readRecords(path string) ([]*activity.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return DecodeRecords(data)
}

// DecodeRecords parses a YAML sequence of records. A single mapping is
// accepted as a one-record sequence.
func DecodeRecords(data []byte) ([]*activity.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing records: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var records []*activity.Record
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("decoding records: %w", err)
		}
		return records, nil
	case yaml.MappingNode:
		var rec activity.Record
		if err := root.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		return []*activity.Record{&rec}, nil
	default:
		return nil, fmt.Errorf("expected a sequence of records, got %s", kindName(root.Kind))
	}
}

// EncodeRecords renders records as a YAML sequence in corpus file shape
func EncodeRecords(records []*activity.Record) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveRecords writes records to path in corpus file shape
func SaveRecords(path string, records []*activity.Record) error {
	data, err := EncodeRecords(records)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing records: %w", err)
	}
	return nil
}

// LoadRecords reads a records file written by SaveRecords or taken from a corpus
func LoadRecords(path string) ([]*activity.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading records: %w", err)
	}
	return DecodeRecords(data)
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	case yaml.DocumentNode:
		return "a document"
	}
	return "an unknown node"
}

// Corpus is the read-only set of previously accepted records
type Corpus struct {
	records map[activity.Category][]*activity.Record
	ids     map[string]bool
	tags    map[string]bool
}

// NewCorpus creates an empty corpus
func NewCorpus() *Corpus {
	return &Corpus{
		records: make(map[activity.Category][]*activity.Record),
		ids:     make(map[string]bool),
		tags:    make(map[string]bool),
	}
}

// Add registers records under category c. Used while loading.
func (c *Corpus) Add(cat activity.Category, records ...*activity.Record) {
	for _, r := range records {
		if r == nil {
			continue
		}
		c.records[cat] = append(c.records[cat], r)
		for _, e := range r.Events {
			if e.ID != "" {
				c.ids[e.ID] = true
			}
		}
		for _, t := range r.Tags {
			if t = strings.TrimSpace(t); t != "" {
				c.tags[t] = true
			}
		}
	}
}

// Records returns the records of one category
func (c *Corpus) Records(cat activity.Category) []*activity.Record {
	return c.records[cat]
}

// HasID reports whether any record in any category uses event ID id
func (c *Corpus) HasID(id string) bool {
	return c.ids[id]
}

// HasTag reports whether tag is already in the corpus vocabulary
func (c *Corpus) HasTag(tag string) bool {
	return c.tags[tag]
}

// Tags returns the corpus tag vocabulary, sorted
func (c *Corpus) Tags() []string {
	out := make([]string, 0, len(c.tags))
	for t := range c.tags {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Size returns the number of records across all categories
func (c *Corpus) Size() int {
	n := 0
	for _, rs := range c.records {
		n += len(rs)
	}
	return n
}

// IDCount returns the number of distinct event IDs
func (c *Corpus) IDCount() int {
	return len(c.ids)
}
