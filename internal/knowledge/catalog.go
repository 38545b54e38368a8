package knowledge

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed topics.yaml
var defaultCatalog []byte

var (
	// ErrEmptyCatalog is returned when a catalog declares no topics.
	ErrEmptyCatalog = errors.New("knowledge: catalog has no topics")

	loadDefault = sync.OnceValues(func() (*Base, error) {
		return LoadCatalog(bytes.NewReader(defaultCatalog))
	})
)

type catalogFile struct {
	Topics []Topic `yaml:"topics"`
}

// Default returns the built-in catalog. It panics if the embedded catalog is invalid.
func Default() *Base {
	base, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("knowledge: embedded catalog: %v", err))
	}
	return base
}

// LoadCatalog parses a YAML catalog.
func LoadCatalog(r io.Reader) (*Base, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("knowledge: read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("knowledge: parse catalog: %w", err)
	}

	return NewBase(file.Topics)
}

func validate(topics []Topic) error {
	if len(topics) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(topics))
	for i, topic := range topics {
		id := strings.TrimSpace(topic.ID)
		if id == "" {
			return fmt.Errorf("knowledge: topic #%d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("knowledge: duplicate topic id %q", id)
		}
		seen[id] = struct{}{}

		if len(topic.Keywords) == 0 {
			return fmt.Errorf("knowledge: topic %q has no keywords", id)
		}
		for _, keyword := range topic.Keywords {
			if keyword == "" || keyword != strings.ToLower(keyword) {
				return fmt.Errorf("knowledge: topic %q keyword %q must be non-empty lowercase", id, keyword)
			}
		}

		if strings.TrimSpace(topic.Response) == "" {
			return fmt.Errorf("knowledge: topic %q has no response", id)
		}
	}

	return nil
}
