// Package csc reads and writes Cooja simulation scenarios (.csc files).
// The format is XML; this codec models the parts the generator needs to
// inspect or mutate (seed, radio medium, mote positions) and carries plugin
// and mote-type sections through untouched.
package csc

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/contiki-tools/coojabatch/internal/topology"
)

const (
	// UDGMClass is the radio medium class whose transmitting range defines
	// direct connectivity (Unit Disk Graph Medium).
	UDGMClass = "org.contikios.cooja.radiomediums.UDGM"

	// FallbackTxRange is the transmitting range assumed when the scenario's
	// radio medium is not range-based.
	FallbackTxRange = 50.0

	// GeneratedSeed is the literal token Cooja stores when the simulation
	// should generate a new seed on every load.
	GeneratedSeed = "generated"
)

// Scenario is a parsed .csc file. It implements topology.ScenarioHandle.
type Scenario struct {
	XMLName    xml.Name   `xml:"simconf"`
	Version    string     `xml:"version,attr,omitempty"`
	Projects   []Project  `xml:"project"`
	Simulation Simulation `xml:"simulation"`
	Plugins    []Plugin   `xml:"plugin"`
}

// Project is a Cooja extension directory reference.
type Project struct {
	Export string `xml:"EXPORT,attr,omitempty"`
	Path   string `xml:",chardata"`
}

// Plugin is an opaque plugin section. The generator never touches plugins,
// so the raw inner XML is carried through verbatim.
type Plugin struct {
	Content string `xml:",innerxml"`
}

// Simulation holds the simulation-level settings and the motes.
type Simulation struct {
	Title       string      `xml:"title"`
	RandomSeed  string      `xml:"randomseed"`
	MoteDelay   string      `xml:"motedelay_us,omitempty"`
	RadioMedium RadioMedium `xml:"radiomedium"`
	Events      *Events     `xml:"events,omitempty"`
	MoteTypes   []MoteType  `xml:"motetype"`
	Motes       []Mote      `xml:"mote"`
}

// Events mirrors the <events> settings block.
type Events struct {
	LogOutput string `xml:"logoutput,omitempty"`
}

// RadioMedium is the propagation model section. Class is the Java class
// name; the range and ratio elements are present only for range-based media.
type RadioMedium struct {
	Class             string   `xml:",chardata"`
	TransmittingRange *float64 `xml:"transmitting_range,omitempty"`
	InterferenceRange *float64 `xml:"interference_range,omitempty"`
	SuccessRatioTX    *float64 `xml:"success_ratio_tx,omitempty"`
	SuccessRatioRX    *float64 `xml:"success_ratio_rx,omitempty"`
}

// MoteType is an opaque mote type section (firmware, sources, interfaces).
type MoteType struct {
	Content string `xml:",innerxml"`
}

// Mote is a single node instance with its interface configurations.
type Mote struct {
	Interfaces []InterfaceConfig `xml:"interface_config"`
	TypeID     string            `xml:"motetype_identifier,omitempty"`
}

// InterfaceConfig is one mote interface. Position interfaces carry x/y/z;
// ID interfaces carry the mote identifier. Other interface kinds have no
// child elements the generator cares about.
type InterfaceConfig struct {
	Class string   `xml:",chardata"`
	X     *float64 `xml:"x,omitempty"`
	Y     *float64 `xml:"y,omitempty"`
	Z     *float64 `xml:"z,omitempty"`
	ID    *int     `xml:"id,omitempty"`
}

// mediumClass returns the radio medium class name with the surrounding
// whitespace the mixed-content parse picks up stripped.
func (s *Scenario) mediumClass() string {
	return strings.TrimSpace(s.Simulation.RadioMedium.Class)
}

// TransmittingRange returns the radio medium's transmitting range and true
// when the medium is range-based (UDGM). Callers select this capability once
// at load time and fall back to FallbackTxRange otherwise.
func (s *Scenario) TransmittingRange() (float64, bool) {
	rm := s.Simulation.RadioMedium
	if s.mediumClass() == UDGMClass && rm.TransmittingRange != nil {
		return *rm.TransmittingRange, true
	}
	return 0, false
}

// SetSeed writes an explicit simulation seed.
func (s *Scenario) SetSeed(seed int64) {
	s.Simulation.RandomSeed = fmt.Sprintf("%d", seed)
}

// SetGeneratedSeed marks the simulation to generate a fresh seed each run.
func (s *Scenario) SetGeneratedSeed() {
	s.Simulation.RandomSeed = GeneratedSeed
}

// SetSuccessRatios overwrites the radio medium's tx/rx success ratios.
func (s *Scenario) SetSuccessRatios(tx, rx float64) {
	s.Simulation.RadioMedium.SuccessRatioTX = &tx
	s.Simulation.RadioMedium.SuccessRatioRX = &rx
}

// Nodes returns the motes in scenario order as topology nodes. Motes without
// a position interface report position (0, 0); motes without an ID interface
// report ID 0.
func (s *Scenario) Nodes() []topology.Node {
	nodes := make([]topology.Node, 0, len(s.Simulation.Motes))
	for i := range s.Simulation.Motes {
		m := &s.Simulation.Motes[i]
		n := topology.Node{}
		if id := m.identity(); id != nil {
			n.ID = *id
		}
		if pos := m.position(); pos != nil {
			if pos.X != nil {
				n.X = *pos.X
			}
			if pos.Y != nil {
				n.Y = *pos.Y
			}
		}
		nodes = append(nodes, n)
	}
	return nodes
}

// SetNodePosition moves the mote with the given ID. The z coordinate is
// left as it was.
func (s *Scenario) SetNodePosition(id int, x, y float64) error {
	for i := range s.Simulation.Motes {
		m := &s.Simulation.Motes[i]
		mid := m.identity()
		if mid == nil || *mid != id {
			continue
		}
		pos := m.position()
		if pos == nil {
			return fmt.Errorf("mote %d has no position interface", id)
		}
		pos.X = &x
		pos.Y = &y
		return nil
	}
	return fmt.Errorf("no mote with id %d", id)
}

// position returns the mote's position interface, or nil.
func (m *Mote) position() *InterfaceConfig {
	for i := range m.Interfaces {
		if m.Interfaces[i].X != nil || m.Interfaces[i].Y != nil {
			return &m.Interfaces[i]
		}
	}
	return nil
}

// identity returns the mote's ID, or nil when no ID interface exists.
func (m *Mote) identity() *int {
	for i := range m.Interfaces {
		if m.Interfaces[i].ID != nil {
			return m.Interfaces[i].ID
		}
	}
	return nil
}
