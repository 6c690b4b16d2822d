package bandnames

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// equivalentsFile is the on-disk shape of the equivalence config:
//
//	groups:
//	  - ["Frank Turner", "Frank Turner & the Sleeping Souls"]
type equivalentsFile struct {
	Groups []EquivalenceGroup `yaml:"groups"`
}

// LoadEquivalents reads equivalence groups from a YAML file. An empty path returns
// DefaultEquivalents.
func LoadEquivalents(path string) ([]EquivalenceGroup, error) {
	if path == "" {
		return DefaultEquivalents, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read equivalents file '%s': %w", path, err)
	}
	return ParseEquivalents(data)
}

// ParseEquivalents decodes the YAML equivalence config.
func ParseEquivalents(data []byte) ([]EquivalenceGroup, error) {
	var f equivalentsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse equivalents: %w", err)
	}
	return f.Groups, nil
}

// NewNormalizerFromFile loads groups from path and builds a Normalizer, logging any
// variants that were listed in more than one group.
func NewNormalizerFromFile(path string) (*Normalizer, error) {
	groups, err := LoadEquivalents(path)
	if err != nil {
		return nil, err
	}
	n := NewNormalizer(groups)
	for _, c := range n.Conflicts() {
		log.Printf("Warning: band name '%s' is listed under both '%s' and '%s'; keeping '%s'", c.Name, c.Kept, c.Ignored, c.Kept)
	}
	log.Printf("Loaded %d band equivalence groups (%d variants)", len(groups), n.Len())
	return n, nil
}
