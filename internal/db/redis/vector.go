package redis

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/ragate/internal/db"
)

// distanceAlias names the KNN score column in FT.SEARCH replies.
const distanceAlias = "__dist"

// CreateVectorIndex issues FT.CREATE for spec. An existing index yields db.ErrIndexExists.
func (s *Store) CreateVectorIndex(ctx context.Context, spec *db.VectorIndexSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("vector index %s: %w", spec.Name, err)
	}

	cmd := s.client.B().Arbitrary("FT.CREATE").Keys(spec.Name).Args(createArgs(spec)...).Build()
	err := s.client.Do(ctx, cmd).Error()
	switch {
	case err == nil:
		return nil
	case serverErrorContains(err, "already exists"):
		return db.ErrIndexExists
	default:
		return &db.Error{Cmd: "FT.CREATE", Key: spec.Name, Err: err}
	}
}

func createArgs(spec *db.VectorIndexSpec) []string {
	hnsw := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(spec.Dimensions),
		"DISTANCE_METRIC", "COSINE",
	}
	if spec.M > 0 {
		hnsw = append(hnsw, "M", strconv.Itoa(spec.M))
	}
	if spec.EFConstruction > 0 {
		hnsw = append(hnsw, "EF_CONSTRUCTION", strconv.Itoa(spec.EFConstruction))
	}

	args := []string{"ON", "HASH", "PREFIX", "1", spec.Prefix, "SCHEMA"}
	for _, tag := range spec.TagFields {
		args = append(args, tag, "TAG")
	}
	args = append(args, spec.VectorField, "VECTOR", "HNSW", strconv.Itoa(len(hnsw)))
	return append(args, hnsw...)
}

// SearchNearest runs a filtered KNN FT.SEARCH, nearest first.
func (s *Store) SearchNearest(ctx context.Context, q *db.NearestQuery) ([]db.Neighbor, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("nearest query: %w", err)
	}

	args := []string{knnExpression(q)}
	if q.Return != nil {
		fields := append(slices.Clone(q.Return), distanceAlias)
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}
	args = append(args,
		"SORTBY", distanceAlias,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", rueidis.BinaryString(db.EncodeVector(q.Vector)),
		"DIALECT", "2",
	)

	cmd := s.client.B().Arbitrary("FT.SEARCH").Keys(q.Index).Args(args...).Build()
	reply, err := s.client.Do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Cmd: "FT.SEARCH", Key: q.Index, Err: err}
	}
	return parseNeighbors(reply)
}

// knnExpression renders "(@source:{crm} @type:{deal})=>[KNN 5 @vector $BLOB AS __dist]".
func knnExpression(q *db.NearestQuery) string {
	knn := fmt.Sprintf("[KNN %d @%s $BLOB AS %s]", q.K, q.VectorField, distanceAlias)

	names := make([]string, 0, len(q.Tags))
	for name, value := range q.Tags {
		if value != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "*=>" + knn
	}
	slices.Sort(names)

	var b strings.Builder
	b.WriteByte('(')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "@%s:{%s}", name, escapeTag(q.Tags[name]))
	}
	b.WriteString(")=>")
	b.WriteString(knn)
	return b.String()
}

// escapeTag backslashes every byte the query parser treats as syntax inside a TAG value.
func escapeTag(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range v {
		if strings.ContainsRune(",.<>{}[]\"':;!@#$%^&*()-+=~|/\\ ", r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// parseNeighbors reads the RESP2 reply [total, key1, [f, v, ...], key2, ...].
func parseNeighbors(reply []rueidis.RedisMessage) ([]db.Neighbor, error) {
	if len(reply) == 0 {
		return nil, nil
	}
	if _, err := reply[0].AsInt64(); err != nil {
		return nil, fmt.Errorf("FT.SEARCH reply: bad total: %w", err)
	}

	out := make([]db.Neighbor, 0, (len(reply)-1)/2)
	for i := 1; i+1 < len(reply); i += 2 {
		key, err := reply[i].ToString()
		if err != nil {
			return nil, fmt.Errorf("FT.SEARCH reply: key at %d: %w", i, err)
		}
		pairs, err := reply[i+1].ToArray()
		if err != nil {
			return nil, fmt.Errorf("FT.SEARCH reply: fields of %s: %w", key, err)
		}

		n := db.Neighbor{Key: key, Fields: make(map[string]string, len(pairs)/2)}
		for j := 0; j+1 < len(pairs); j += 2 {
			name, _ := pairs[j].ToString()
			value, _ := pairs[j+1].ToString()
			if name == distanceAlias {
				if n.Distance, err = strconv.ParseFloat(value, 64); err != nil {
					return nil, fmt.Errorf("FT.SEARCH reply: distance of %s: %w", key, err)
				}
				continue
			}
			n.Fields[name] = value
		}
		out = append(out, n)
	}
	return out, nil
}
