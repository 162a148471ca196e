package engine

import (
	"encoding/json"
	"fmt"

	"github.com/matbridge/matlab-mcp-go/internal/errors"
)

// wireValue is the encoded form of a workspace variable as sent by the
// session shim: the MATLAB class name, the array size, and the data as
// nested row-major JSON arrays (or a plain string for char arrays).
type wireValue struct {
	Class string          `json:"class"`
	Size  []int           `json:"size"`
	Data  json.RawMessage `json:"data"`
}

// Decode converts an encoded workspace value into a JSON-serializable Go
// value, mirroring the shapes MATLAB users expect:
//
//   - char arrays become strings
//   - numeric and logical scalars are squeezed to float64/bool
//   - row or column vectors become flat slices
//   - matrices become nested slices (rows of columns)
//
// Unsupported classes degrade to their display string when the shim provides
// one; otherwise a ValueDecodeError is returned.
func Decode(name string, raw json.RawMessage) (any, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var v wireValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, &errors.ValueDecodeError{Variable: name, Err: err}
	}

	switch v.Class {
	case "char", "string":
		var s string
		if err := json.Unmarshal(v.Data, &s); err != nil {
			return nil, &errors.ValueDecodeError{Variable: name, Class: v.Class, Err: err}
		}

		return s, nil

	case "double", "single", "int8", "int16", "int32", "int64", "uint8", "uint16", "uint32", "uint64":
		return decodeMatrix[float64](name, v)

	case "logical":
		return decodeMatrix[bool](name, v)

	default:
		// Fall back to the display string for structs, cells, tables and
		// other classes the shim renders with disp().
		var s string
		if err := json.Unmarshal(v.Data, &s); err == nil {
			return s, nil
		}

		return nil, &errors.ValueDecodeError{
			Variable: name,
			Class:    v.Class,
			Err:      fmt.Errorf("unsupported MATLAB class"),
		}
	}
}

// decodeMatrix decodes nested row-major arrays of T and squeezes the result:
// scalar for 1x1, flat slice for vectors, nested slices otherwise.
func decodeMatrix[T any](name string, v wireValue) (any, error) {
	var rows [][]T
	if err := json.Unmarshal(v.Data, &rows); err != nil {
		// The shim sends scalars and vectors unnested.
		var flat []T
		if err := json.Unmarshal(v.Data, &flat); err == nil {
			return squeezeVector(flat), nil
		}

		var scalar T
		if err := json.Unmarshal(v.Data, &scalar); err == nil {
			return scalar, nil
		}

		return nil, &errors.ValueDecodeError{Variable: name, Class: v.Class, Err: err}
	}

	if len(rows) == 1 {
		return squeezeVector(rows[0]), nil
	}

	allSingle := len(rows) > 0
	for _, row := range rows {
		if len(row) != 1 {
			allSingle = false

			break
		}
	}

	// Column vectors flatten the same way row vectors do.
	if allSingle {
		flat := make([]T, 0, len(rows))
		for _, row := range rows {
			flat = append(flat, row[0])
		}

		return flat, nil
	}

	return rows, nil
}

// squeezeVector reduces a single-element slice to its scalar.
func squeezeVector[T any](flat []T) any {
	if len(flat) == 1 {
		return flat[0]
	}

	return flat
}
