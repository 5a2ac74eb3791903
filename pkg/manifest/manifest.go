package manifest

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/paths"
	"github.com/canastawiki/canasta-modules/pkg/types"
)

// wikiWrapper matches a manifest published on a wiki page
var wikiWrapper = regexp.MustCompile(`(?is)<syntaxhighlight\s+lang=["']yaml["']\s*>(.*?)</syntaxhighlight>`)

// Entry is one named declaration in manifest order
type Entry struct {
	Name        string
	Declaration types.Declaration
}

// Manifest is a single parsed document of an inheritance chain
type Manifest struct {
	Locator    string
	Inherits   string
	Extensions []Entry
	Skins      []Entry
}

// Entries returns the declarations for a module type in document order
func (m *Manifest) Entries(t types.ModuleType) []Entry {
	switch t {
	case types.Extensions:
		return m.Extensions
	case types.Skins:
		return m.Skins
	default:
		return nil
	}
}

type document struct {
	Inherits   string    `yaml:"inherits"`
	Extensions entryList `yaml:"extensions"`
	Skins      entryList `yaml:"skins"`
}

// entryList decodes a sequence of single-key mappings, "- Name: {fields}",
// preserving order. A bare scalar "- Name" declares a module with defaults.
type entryList []Entry

func (l *entryList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: expected a list of modules", node.Line)
	}

	entries := make([]Entry, 0, len(node.Content))
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			entries = append(entries, Entry{Name: item.Value})
		case yaml.MappingNode:
			if len(item.Content) != 2 {
				return fmt.Errorf("line %d: each module entry must have exactly one name", item.Line)
			}
			key, value := item.Content[0], item.Content[1]
			entry := Entry{Name: key.Value}
			if value.Kind != 0 && value.Tag != "!!null" {
				if err := value.Decode(&entry.Declaration); err != nil {
					return fmt.Errorf("module %s: %w", key.Value, err)
				}
			}
			entries = append(entries, entry)
		default:
			return fmt.Errorf("line %d: unexpected module entry", item.Line)
		}
	}

	*l = entries
	return nil
}

// StripWikiMarkup returns the YAML inside a <syntaxhighlight lang="yaml"> block,
// or the input unchanged when there is no such block
func StripWikiMarkup(text []byte) []byte {
	if m := wikiWrapper.FindSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// Parse decodes a manifest document
func Parse(locator string, data []byte) (*Manifest, error) {
	var doc document
	if err := yaml.Unmarshal(StripWikiMarkup(data), &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "cannot parse manifest %s", locator).
			WithDetail("locator", locator)
	}

	for _, list := range [][]Entry{doc.Extensions, doc.Skins} {
		for _, entry := range list {
			if err := paths.ValidateName(entry.Name); err != nil {
				return nil, errors.Wrapf(err, errors.ErrManifestParse, "manifest %s", locator).
					WithDetail("locator", locator)
			}
		}
	}

	return &Manifest{
		Locator:    locator,
		Inherits:   doc.Inherits,
		Extensions: doc.Extensions,
		Skins:      doc.Skins,
	}, nil
}
