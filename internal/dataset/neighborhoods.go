package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoadNeighborhoods reads the tab-separated abbreviation→name lookup table
// and builds one Neighborhood per row. SearchString is the display name plus
// the locality qualifier ("College Creek, Ames, Iowa") unless an override
// substitutes a manual address. Keys are lower-cased on load.
func LoadNeighborhoods(path, locality string, ov *Overrides) ([]*Neighborhood, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open neighborhood table %s", path)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.Comma = '\t'
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "dataset: read neighborhood table")
	}

	if ov == nil {
		ov = DefaultOverrides()
	}

	log := zap.L().With(zap.String("component", "dataset.neighborhoods"))

	var nbhds []*Neighborhood
	seen := make(map[string]bool)
	for _, rec := range records {
		if len(rec) < 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(rec[0]))
		name := strings.TrimSpace(rec[1])
		if key == "" || name == "" {
			continue
		}
		if seen[key] {
			return nil, eris.Errorf("dataset: duplicate neighborhood key %q", key)
		}
		seen[key] = true

		n := &Neighborhood{
			Key:          key,
			Name:         name,
			SearchString: fmt.Sprintf("%s, %s", name, locality),
		}

		if o, ok := ov.Neighborhoods[key]; ok {
			if o.Substitute != "" {
				log.Debug("substituting search string",
					zap.String("key", key),
					zap.String("substitute", o.Substitute),
				)
				n.SearchString = o.Substitute
			}
			if o.Exclude {
				log.Debug("excluding neighborhood", zap.String("key", key))
				n.Excluded = true
			}
		}

		nbhds = append(nbhds, n)
	}

	if len(nbhds) == 0 {
		return nil, eris.Errorf("dataset: no neighborhoods in %s", path)
	}

	log.Info("neighborhood table loaded", zap.Int("count", len(nbhds)))
	return nbhds, nil
}

// NeighborhoodIndex builds a key → record lookup.
func NeighborhoodIndex(nbhds []*Neighborhood) map[string]*Neighborhood {
	idx := make(map[string]*Neighborhood, len(nbhds))
	for _, n := range nbhds {
		idx[n.Key] = n
	}
	return idx
}
