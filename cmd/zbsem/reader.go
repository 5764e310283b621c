// Command zbsem is a small harness for exercising the semantic analyzer
// outside of a full parser: it reads a line-oriented declaration stream
// from stdin, one directive per line, drives sem.Context with it, and
// dumps the resulting symbol table to stdout. It is not a BASIC
// front end; a real parser would call the same sem.Context methods
// directly from its grammar actions.
package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/z80dev/zbasic/symtab"
	"github.com/z80dev/zbasic/types"
)

// directiveReader parses the stdin format:
//
//	VAR name type
//	CONST name type value
//	DIM name type lower upper [lower upper ...]
//	LABEL name
//	GOTO name
//	FUNC name rettype [name:type ...]
//	DECLARE name rettype [name:type ...]   (forward declaration; no ENDFUNC)
//	SUB name [name:type ...]
//	ENDFUNC
//	STATIC name
//	CALL name [arg ...]
//	PRAGMA push name | pop name | set name value
//	FOR name from to [step]
//	NEXT [name]
type directiveReader struct {
	scanner *bufio.Scanner
	lineNum int
}

func newDirectiveReader(r io.Reader) *directiveReader {
	return &directiveReader{scanner: bufio.NewScanner(r)}
}

type directive struct {
	lineNum int
	kind    string
	fields  []string
}

func (r *directiveReader) next() (*directive, bool, error) {
	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		return &directive{lineNum: r.lineNum, kind: strings.ToUpper(fields[0]), fields: fields[1:]}, true, nil
	}
	return nil, false, r.scanner.Err()
}

func parseTag(name string) (types.Tag, error) {
	switch strings.ToLower(name) {
	case "i8", "byte":
		return types.I8, nil
	case "u8", "ubyte":
		return types.U8, nil
	case "i16", "integer":
		return types.I16, nil
	case "u16", "uinteger":
		return types.U16, nil
	case "i32", "long":
		return types.I32, nil
	case "u32", "ulong":
		return types.U32, nil
	case "fixed":
		return types.Fixed, nil
	case "float":
		return types.Float, nil
	case "string":
		return types.String, nil
	default:
		return types.Unknown, fmt.Errorf("unknown type %q", name)
	}
}

func parseParam(spec string) (symtab.Param, error) {
	name, typeName, found := strings.Cut(spec, ":")
	if !found {
		return symtab.Param{}, fmt.Errorf("malformed parameter %q, want name:type", spec)
	}
	t, err := parseTag(typeName)
	if err != nil {
		return symtab.Param{}, err
	}
	return symtab.Param{Name: name, Type: t}, nil
}

func parseBounds(fields []string) ([]symtab.Bound, error) {
	if len(fields)%2 != 0 || len(fields) == 0 {
		return nil, fmt.Errorf("array bounds must come in lower/upper pairs")
	}
	var bounds []symtab.Bound
	for i := 0; i < len(fields); i += 2 {
		lo, err := strconv.ParseInt(fields[i], 10, 64)
		if err != nil {
			return nil, err
		}
		hi, err := strconv.ParseInt(fields[i+1], 10, 64)
		if err != nil {
			return nil, err
		}
		bounds = append(bounds, symtab.Bound{Lower: lo, Upper: hi})
	}
	return bounds, nil
}
