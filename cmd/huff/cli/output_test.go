// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Axonny/HuffmanCoding/lib/codec"
)

type row struct {
	Filename string `json:"filename"`
	Size     int    `json:"size"`
}

func TestOutputEmitJSON(t *testing.T) {
	output := Output{OutputJSON: true}
	var buffer bytes.Buffer

	done, err := output.Emit(&buffer, []row{{Filename: "a.txt", Size: 3}})
	if !done || err != nil {
		t.Fatalf("Emit = %v, %v", done, err)
	}
	var decoded []row
	if err := json.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Filename != "a.txt" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestOutputEmitNilSliceAsEmptyArray(t *testing.T) {
	output := Output{OutputJSON: true}
	var buffer bytes.Buffer

	var rows []row
	if _, err := output.Emit(&buffer, rows); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if got := strings.TrimSpace(buffer.String()); got != "[]" {
		t.Errorf("output = %q, want []", got)
	}
}

func TestOutputEmitCBOR(t *testing.T) {
	output := Output{OutputCBOR: true}
	var buffer bytes.Buffer

	if _, err := output.Emit(&buffer, []row{{Filename: "b.bin", Size: 9}}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	var decoded []row
	if err := codec.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Filename != "b.bin" || decoded[0].Size != 9 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestOutputEmitModes(t *testing.T) {
	var buffer bytes.Buffer

	done, err := (&Output{}).Emit(&buffer, "ignored")
	if done || err != nil || buffer.Len() != 0 {
		t.Errorf("text mode: done=%v err=%v output=%q", done, err, buffer.String())
	}

	done, err = (&Output{OutputJSON: true, OutputCBOR: true}).Emit(&buffer, "x")
	if !done || err == nil {
		t.Errorf("both formats: done=%v err=%v, want an error", done, err)
	}
}
