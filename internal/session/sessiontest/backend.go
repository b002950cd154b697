// Package sessiontest provides an in-memory platform backend for tests of
// collectors and sessions.
package sessiontest

import (
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/vitalis-app/hostenum/internal/cursor"
	"github.com/vitalis-app/hostenum/internal/errs"
	"github.com/vitalis-app/hostenum/internal/models"
	"github.com/vitalis-app/hostenum/internal/platform"
	"github.com/vitalis-app/hostenum/internal/session"
)

// Backend serves registry values and query results from maps. Missing
// registry entries report errs.ErrNotFound; a record lacking a requested
// field fails that record. QueryErr and KeyErr force failures for a query
// or a whole registry key.
type Backend struct {
	Strings  map[string]string
	Binaries map[string][]byte
	SubKeys  map[string][]string
	Records  map[string][]map[string]models.Value
	Structs  map[string]any
	QueryErr map[string]error
	KeyErr   map[string]error

	OpenCursors int
	Closed      bool
}

// New returns an empty backend.
func New() *Backend {
	return &Backend{
		Strings:  map[string]string{},
		Binaries: map[string][]byte{},
		SubKeys:  map[string][]string{},
		Records:  map[string][]map[string]models.Value{},
		Structs:  map[string]any{},
		QueryErr: map[string]error{},
		KeyErr:   map[string]error{},
	}
}

// ValueKey returns the map key for a registry value.
func ValueKey(hive platform.Hive, path, name string) string {
	return strings.ToLower(hive.String() + `\` + path + `\` + name)
}

// KeyPath returns the map key for a registry key.
func KeyPath(hive platform.Hive, path string) string {
	return strings.ToLower(hive.String() + `\` + path)
}

// QueryKey returns the map key for a query.
func QueryKey(namespace, statement string) string {
	return strings.ToLower(namespace) + "|" + statement
}

// Session opens a session for opts backed by b.
func (b *Backend) Session(opts session.Options) *session.Session {
	s, err := session.OpenWith(opts, func(platform.Target, *zap.Logger) (platform.Backend, error) {
		return b, nil
	}, nil)
	if err != nil {
		panic(err)
	}
	return s
}

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Query(namespace, statement string) (cursor.Source, error) {
	key := QueryKey(namespace, statement)
	if err, ok := b.QueryErr[key]; ok {
		return nil, err
	}
	records, ok := b.Records[key]
	if !ok {
		return nil, errs.Backend("ExecQuery", fmt.Errorf("invalid class in %q", statement))
	}
	b.OpenCursors++
	return &source{backend: b, records: records}, nil
}

func (b *Backend) QueryInto(namespace, statement string, dst any) error {
	key := QueryKey(namespace, statement)
	if err, ok := b.QueryErr[key]; ok {
		return err
	}
	v, ok := b.Structs[key]
	if !ok {
		return errs.Backend("query "+namespace, fmt.Errorf("invalid class in %q", statement))
	}
	reflect.ValueOf(dst).Elem().Set(reflect.ValueOf(v))
	return nil
}

func (b *Backend) StringValue(hive platform.Hive, path, name string) (string, error) {
	if err, ok := b.KeyErr[KeyPath(hive, path)]; ok {
		return "", err
	}
	s, ok := b.Strings[ValueKey(hive, path, name)]
	if !ok {
		return "", errs.NotFound(ValueKey(hive, path, name))
	}
	return s, nil
}

func (b *Backend) BinaryValue(hive platform.Hive, path, name string) ([]byte, error) {
	if err, ok := b.KeyErr[KeyPath(hive, path)]; ok {
		return nil, err
	}
	data, ok := b.Binaries[ValueKey(hive, path, name)]
	if !ok {
		return nil, errs.NotFound(ValueKey(hive, path, name))
	}
	return data, nil
}

func (b *Backend) SubKeyNames(hive platform.Hive, path string) ([]string, error) {
	if err, ok := b.KeyErr[KeyPath(hive, path)]; ok {
		return nil, err
	}
	names, ok := b.SubKeys[KeyPath(hive, path)]
	if !ok {
		return nil, errs.NotFound(KeyPath(hive, path))
	}
	return names, nil
}

func (b *Backend) Close() error {
	b.Closed = true
	return nil
}

type source struct {
	backend *Backend
	records []map[string]models.Value
	pos     int
}

func (s *source) Next() (cursor.Record, error) {
	if s.pos >= len(s.records) {
		return nil, nil
	}
	rec := record(s.records[s.pos])
	s.pos++
	return rec, nil
}

func (s *source) Close() error {
	s.backend.OpenCursors--
	return nil
}

type record map[string]models.Value

func (r record) Get(field string) (models.Value, error) {
	v, ok := r[field]
	if !ok {
		return models.Value{}, errs.NotFound("property " + field)
	}
	return v, nil
}

func (r record) Release() {}
