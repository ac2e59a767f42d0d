package db

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// VectorIndexSpec describes the FT index over one collection: hashes under
// Prefix, exact-match TAG fields for metadata filters and a FLOAT32 HNSW
// vector field compared by cosine distance.
type VectorIndexSpec struct {
	Name           string
	Prefix         string
	TagFields      []string
	VectorField    string
	Dimensions     int
	M              int // 0 keeps the server default
	EFConstruction int // 0 keeps the server default
}

// Validate rejects specs FT.CREATE would refuse or misread.
func (s *VectorIndexSpec) Validate() error {
	if !validIdentifier(s.Name) {
		return fmt.Errorf("index name %q must match [A-Za-z0-9_:-]+", s.Name)
	}
	if s.Prefix == "" {
		return errors.New("key prefix is required")
	}
	if s.VectorField == "" {
		return errors.New("vector field is required")
	}
	if s.Dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive, got %d", s.Dimensions)
	}
	seen := map[string]bool{s.VectorField: true}
	for _, f := range s.TagFields {
		if f == "" || seen[f] {
			return fmt.Errorf("tag field %q is empty or duplicated", f)
		}
		seen[f] = true
	}
	return nil
}

// NearestQuery asks for the K hashes closest to Vector.
type NearestQuery struct {
	Index       string
	VectorField string
	Vector      []float32
	K           int
	Tags        map[string]string // exact TAG matches, ANDed; empty values do not constrain
	Return      []string          // hash fields to load; nil loads none
}

// Validate checks the query before it is sent.
func (q *NearestQuery) Validate() error {
	switch {
	case q.Index == "":
		return errors.New("index name is required")
	case q.VectorField == "":
		return errors.New("vector field is required")
	case len(q.Vector) == 0:
		return errors.New("query vector is empty")
	case q.K <= 0:
		return fmt.Errorf("k must be positive, got %d", q.K)
	}
	return nil
}

// Neighbor is one search hit. Distance is the raw cosine distance in [0, 2].
type Neighbor struct {
	Key      string
	Distance float64
	Fields   map[string]string
}

// EncodeVector packs v as little-endian FLOAT32, the blob layout FT vector fields read.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// DecodeVector is the inverse of EncodeVector.
func DecodeVector(data []byte) ([]float32, error) {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, fmt.Errorf("vector blob of %d bytes is not a positive multiple of 4", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v, nil
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}
