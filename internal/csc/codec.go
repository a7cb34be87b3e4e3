package csc

import (
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads and parses a scenario file. Files ending in .gz are
// transparently decompressed, matching Cooja's own .csc.gz support.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return Parse(r)
}

// Parse decodes a scenario from r.
func Parse(r io.Reader) (*Scenario, error) {
	var sc Scenario
	if err := xml.NewDecoder(r).Decode(&sc); err != nil {
		return nil, fmt.Errorf("decoding scenario: %w", err)
	}
	return &sc, nil
}

// SaveTo serializes the scenario to path, gzip-compressed when the path ends
// in .gz. The file is written atomically enough for our purposes: an error
// mid-write leaves a partial file for this artifact only and never touches
// previously written artifacts.
func (s *Scenario) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	var w io.Writer = f
	var gz *gzip.Writer
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}

	if err := s.Write(w); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return f.Close()
}

// Write encodes the scenario as indented XML with the standard header.
func (s *Scenario) Write(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Trailing newline after the closing tag, as Cooja writes it.
	_, err := io.WriteString(w, "\n")
	return err
}
