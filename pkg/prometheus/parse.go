// SPDX-License-Identifier: GPL-3.0-or-later

package prometheus

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/prometheus/model/labels"
	"github.com/prometheus/prometheus/model/textparse"
)

var errNoEntry = errors.New("no entry on line")

type (
	// ParseStats counts what a parse saw.
	ParseStats struct {
		Lines   int
		Samples int
		Skipped int
	}

	// Result is the full outcome of parsing one exposition text.
	Result struct {
		Series   Series
		Metadata Metadata
		Stats    ParseStats
	}
)

// Parse decodes exposition text into samples sorted by metric name, input
// order kept within a name. Malformed lines are skipped.
func Parse(data []byte) Series {
	return ParseText(data).Series
}

// ParseText is Parse that also returns HELP/TYPE metadata and line counts.
//
// Every line gets its own parser so that one malformed line does not end
// the parse of the rest.
func ParseText(data []byte) Result {
	res := Result{Metadata: make(Metadata)}
	st := labels.NewSymbolTable()

	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		res.Stats.Lines++

		// the parser appends to its input, it must not write into data
		if err := res.parseLine(bytes.Clone(line), st); err != nil {
			res.Stats.Skipped++
		}
	}

	res.Series.Sort()

	return res
}

func (r *Result) parseLine(line []byte, st *labels.SymbolTable) error {
	p := textparse.NewPromParser(line, st)

	entry, err := p.Next()
	if errors.Is(err, io.EOF) {
		return errNoEntry
	}
	if err != nil {
		return err
	}

	switch entry {
	case textparse.EntryHelp:
		name, help := p.Help()
		r.Metadata.setHelp(string(name), string(help))
	case textparse.EntryType:
		name, typ := p.Type()
		r.Metadata.setType(string(name), typ)
	case textparse.EntrySeries:
		var lbls labels.Labels
		_, _, value := p.Series()
		p.Metric(&lbls)

		if name, dup := lbls.HasDuplicateLabelNames(); dup {
			return fmt.Errorf("duplicate label name '%s'", name)
		}
		r.Series.Add(SeriesSample{Labels: lbls, Value: value})
		r.Stats.Samples++
	}

	return nil
}
