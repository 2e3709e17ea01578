// Package record defines the per-network result record and the stores that
// persist it.
//
// A [Record] is written once per network and overwritten when the network is
// processed again. Stores key records by graph name, so concurrent workers
// writing different networks never contend.
//
// # Stores
//
//   - [FileStore]: rowdat/<name>.json plus orbit_colours/<name>.txt under an
//     output directory, and the lumps_out.csv summary table
//   - [MongoStore]: one document per network, upserted by graph name
//   - [MemoryStore]: an in-process map, used by the HTTP API and tests
//   - [Multi]: writes to several stores in order
package record

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/matzehuels/symlump/pkg/metric"
	"github.com/matzehuels/symlump/pkg/polya"
)

// Record is the result of analysing one network.
type Record struct {
	GraphName   string       `json:"graph_name"`
	NNodes      int          `json:"n_nodes"`
	MEdges      int          `json:"m_edges"`
	AutGrpOrder string       `json:"aut_grp_order"` // decimal; may exceed any fixed-width integer
	Rho         polya.Rho    `json:"rho"`
	AvgSupport  *float64     `json:"avg_support"`
	TotSupport  *float64     `json:"tot_support"`
	Orbits      [][]int      `json:"orbits"` // non-trivial orbits, 0-indexed
	Delta       metric.Value `json:"delta"`

	Classes    int       `json:"n_classes"`
	Generators int       `json:"n_generators"`
	Alphabet   int       `json:"alphabet"`
	Oracle     string    `json:"oracle,omitempty"`
	Verified   bool      `json:"verified,omitempty"` // rho cross-checked by brute force
	ComputedAt time.Time `json:"computed_at"`
	RunID      string    `json:"run_id,omitempty"`
}

// Marshal encodes r as indented JSON. A nil orbit list is written as [].
func Marshal(r *Record) ([]byte, error) {
	out := *r
	if out.Orbits == nil {
		out.Orbits = [][]int{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a record written by Marshal.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
