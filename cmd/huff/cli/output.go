// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"

	"github.com/Axonny/HuffmanCoding/lib/codec"
)

// Output is an embeddable struct that adds --json and --cbor output
// support to a command's parameter struct.
//
//	type listParams struct {
//	    cli.Output
//	}
//
//	// In Run:
//	if done, err := params.Emit(stdout, listings); done {
//	    return err
//	}
//	// ... text formatting ...
type Output struct {
	OutputJSON bool `flag:"json" desc:"output as JSON"`
	OutputCBOR bool `flag:"cbor" desc:"output as deterministic CBOR"`
}

// Emit writes result to w in the selected machine-readable format.
// Returns (true, nil) on success, (true, err) on failure, or
// (false, nil) when neither flag is set and the caller should proceed
// with text formatting. Nil slices are written as empty arrays.
func (o *Output) Emit(w io.Writer, result any) (bool, error) {
	switch {
	case o.OutputJSON && o.OutputCBOR:
		return true, errors.New("--json and --cbor are mutually exclusive")
	case o.OutputJSON:
		return true, WriteJSON(w, normalizeNilSlice(result))
	case o.OutputCBOR:
		return true, WriteCBOR(w, normalizeNilSlice(result))
	}
	return false, nil
}

// WriteJSON marshals value as indented JSON and writes it to w.
func WriteJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// WriteCBOR writes value to w as a single deterministic CBOR item.
func WriteCBOR(w io.Writer, value any) error {
	data, err := codec.Marshal(value)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// normalizeNilSlice returns an empty slice of the same type if value
// is a nil slice. Returns value unchanged for all other types.
func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
