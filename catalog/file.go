package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/rustyeddy/papertrade/market"
	"gopkg.in/yaml.v3"
)

// FileSource reads the listing from a YAML or JSON file on every fetch, so
// editing the file and refreshing changes prices.
type FileSource struct {
	Path string
}

func (f FileSource) Fetch(ctx context.Context) ([]market.Instrument, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	// JSON is valid YAML, so one decoder covers both.
	var list []market.Instrument
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrUnavailable, f.Path, err)
	}
	return list, nil
}
