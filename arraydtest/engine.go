// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package arraydtest

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/Query-farm/arrayd-go/arrayd"
)

// Engine executes arrayd commands against an in-memory symbol table.
// Safe for concurrent use; commands run one at a time.
type Engine struct {
	mu       sync.Mutex
	serverID string
	nextID   int
	symbols  map[string]*symbol
}

// symbol holds one server-resident array. data is one of []int64,
// []float64, []bool or []uint8, matching dtype.
type symbol struct {
	dtype arrayd.DType
	data  any
}

// NewEngine returns an engine with an empty symbol table.
func NewEngine() *Engine {
	return &Engine{
		serverID: uuid.NewString(),
		symbols:  make(map[string]*symbol),
	}
}

// ServerID returns the identity reported by the connect handshake.
func (e *Engine) ServerID() string { return e.serverID }

// NumSymbols returns the number of live server-side arrays.
func (e *Engine) NumSymbols() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.symbols)
}

// Executor returns an in-process [arrayd.Executor] backed by the engine.
func (e *Engine) Executor() arrayd.Executor { return engineExecutor{engine: e} }

type engineExecutor struct{ engine *Engine }

func (x engineExecutor) Submit(ctx context.Context, req *arrayd.Message) (*arrayd.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return x.engine.Execute(req), nil
}

// Execute runs one command message and produces the reply message.
// Command failures become "Error: " replies; Execute itself never
// fails, mirroring a server that keeps its connection alive.
func (e *Engine) Execute(msg *arrayd.Message) *arrayd.Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	cmd, err := arrayd.ParseCommand(msg.Text)
	if err != nil {
		return &arrayd.Message{Text: arrayd.FormatError(err)}
	}
	text, payload, err := e.dispatch(cmd, msg.Payload)
	if err != nil {
		return &arrayd.Message{Text: arrayd.FormatError(err)}
	}
	return &arrayd.Message{Text: text, Payload: payload}
}

func (e *Engine) dispatch(cmd *arrayd.Command, payload []byte) (string, []byte, error) {
	ops := cmd.Operands()
	switch cmd.Verb() {
	case arrayd.VerbConnect:
		return e.connect(ops)
	case arrayd.VerbDisconnect:
		return arrayd.MarkerDisconnected, nil, nil
	case arrayd.VerbInfo:
		return e.info()
	case arrayd.VerbCreate:
		return e.create(ops)
	case arrayd.VerbArray:
		return e.array(ops, payload)
	case arrayd.VerbFetch:
		return e.fetch(ops)
	case arrayd.VerbDelete:
		return e.deleteSymbol(ops)
	case arrayd.VerbUnique:
		return e.unique(ops)
	case arrayd.VerbIn1D:
		return e.in1d(ops)
	case arrayd.VerbSegIn1D:
		return e.segmentedIn1d(ops)
	case arrayd.VerbConcatenate:
		return e.concatenate(ops)
	case arrayd.VerbUnion, arrayd.VerbIntersect, arrayd.VerbSetDiff, arrayd.VerbSetXor:
		return e.setOp(cmd.Verb(), ops)
	case arrayd.VerbArgsort:
		return e.argsort(ops)
	case arrayd.VerbIndex:
		return e.index(ops)
	case arrayd.VerbSlice:
		return e.slice(ops)
	case arrayd.VerbBinop:
		return e.binop(ops)
	default:
		return "", nil, fmt.Errorf("unknown command %q", cmd.Verb())
	}
}

// put stores data under a fresh symbol name and returns the name.
func (e *Engine) put(dt arrayd.DType, data any) string {
	name := fmt.Sprintf("id_%d", e.nextID)
	e.nextID++
	e.symbols[name] = &symbol{dtype: dt, data: data}
	return name
}

// created stores data and renders its created-descriptor segment.
func (e *Engine) created(dt arrayd.DType, data any) string {
	name := e.put(dt, data)
	return arrayd.FormatCreated(name, dt, int64(lengthOf(data)))
}

func (e *Engine) get(name string) (*symbol, error) {
	sym, ok := e.symbols[name]
	if !ok {
		return nil, fmt.Errorf("undefined symbol %q", name)
	}
	return sym, nil
}

func lengthOf(data any) int {
	switch d := data.(type) {
	case []int64:
		return len(d)
	case []float64:
		return len(d)
	case []bool:
		return len(d)
	case []uint8:
		return len(d)
	}
	return 0
}

func wantOperands(verb string, ops []string, n int) error {
	if len(ops) != n {
		return fmt.Errorf("%s: expected %d operands, got %d", verb, n, len(ops))
	}
	return nil
}

func parseFlag(verb, s string) (bool, error) {
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("%s: bad flag %q", verb, s)
	}
	return v, nil
}

func parseSize(verb, s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s: bad size %q", verb, s)
	}
	return v, nil
}

func (e *Engine) connect(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbConnect, ops, 1); err != nil {
		return "", nil, err
	}
	if ops[0] != arrayd.ProtocolVersion {
		return "", nil, fmt.Errorf("connect: unsupported protocol version %q", ops[0])
	}
	return fmt.Sprintf("%s %s %s", arrayd.MarkerConnected, e.serverID, arrayd.ProtocolVersion), nil, nil
}

func (e *Engine) info() (string, []byte, error) {
	if len(e.symbols) == 0 {
		return arrayd.MarkerSymbols, nil, nil
	}
	names := make([]string, 0, len(e.symbols))
	for name := range e.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	segs := make([]string, 0, len(names))
	for _, name := range names {
		sym := e.symbols[name]
		segs = append(segs, arrayd.FormatSymbol(name, sym.dtype, int64(lengthOf(sym.data))))
	}
	return arrayd.JoinSegments(segs...), nil, nil
}

func (e *Engine) create(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbCreate, ops, 2); err != nil {
		return "", nil, err
	}
	dt, err := arrayd.ParseDType(ops[0])
	if err != nil {
		return "", nil, err
	}
	size, err := parseSize(arrayd.VerbCreate, ops[1])
	if err != nil {
		return "", nil, err
	}
	var data any
	switch dt {
	case arrayd.Int64:
		data = make([]int64, size)
	case arrayd.Float64:
		data = make([]float64, size)
	case arrayd.Bool:
		data = make([]bool, size)
	case arrayd.Uint8:
		data = make([]uint8, size)
	}
	return e.created(dt, data), nil, nil
}

func (e *Engine) array(ops []string, payload []byte) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbArray, ops, 2); err != nil {
		return "", nil, err
	}
	dt, err := arrayd.ParseDType(ops[0])
	if err != nil {
		return "", nil, err
	}
	size, err := parseSize(arrayd.VerbArray, ops[1])
	if err != nil {
		return "", nil, err
	}
	var data any
	switch dt {
	case arrayd.Int64:
		data, err = arrayd.DecodePayload[int64](payload)
	case arrayd.Float64:
		data, err = arrayd.DecodePayload[float64](payload)
	case arrayd.Bool:
		data, err = arrayd.DecodePayload[bool](payload)
	case arrayd.Uint8:
		data, err = arrayd.DecodePayload[uint8](payload)
	}
	if err != nil {
		return "", nil, err
	}
	if n := lengthOf(data); int64(n) != size {
		return "", nil, fmt.Errorf("array: payload has %d elements, expected %d", n, size)
	}
	return e.created(dt, data), nil, nil
}

func (e *Engine) fetch(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbFetch, ops, 1); err != nil {
		return "", nil, err
	}
	sym, err := e.get(ops[0])
	if err != nil {
		return "", nil, err
	}
	var payload []byte
	switch d := sym.data.(type) {
	case []int64:
		payload, err = arrayd.EncodePayload(d)
	case []float64:
		payload, err = arrayd.EncodePayload(d)
	case []bool:
		payload, err = arrayd.EncodePayload(d)
	case []uint8:
		payload, err = arrayd.EncodePayload(d)
	}
	if err != nil {
		return "", nil, err
	}
	return arrayd.FormatData(sym.dtype, int64(lengthOf(sym.data))), payload, nil
}

func (e *Engine) deleteSymbol(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbDelete, ops, 1); err != nil {
		return "", nil, err
	}
	if _, err := e.get(ops[0]); err != nil {
		return "", nil, err
	}
	delete(e.symbols, ops[0])
	return fmt.Sprintf("%s %s", arrayd.MarkerDeleted, ops[0]), nil, nil
}

func (e *Engine) unique(ops []string) (string, []byte, error) {
	if len(ops) < 3 {
		return "", nil, fmt.Errorf("unique: expected at least 3 operands, got %d", len(ops))
	}
	withCounts, err := parseFlag(arrayd.VerbUnique, ops[len(ops)-1])
	if err != nil {
		return "", nil, err
	}
	switch arrayd.ObjType(ops[0]) {
	case arrayd.ObjTypeArray:
		if err := wantOperands(arrayd.VerbUnique, ops, 3); err != nil {
			return "", nil, err
		}
		sym, err := e.get(ops[1])
		if err != nil {
			return "", nil, err
		}
		var segs []string
		switch d := sym.data.(type) {
		case []int64:
			vals, counts := uniqueSortedInt64(d)
			segs = append(segs, e.created(arrayd.Int64, vals))
			if withCounts {
				segs = append(segs, e.created(arrayd.Int64, counts))
			}
		case []float64:
			vals, counts := uniqueFirstSeen(d)
			segs = append(segs, e.created(arrayd.Float64, vals))
			if withCounts {
				segs = append(segs, e.created(arrayd.Int64, counts))
			}
		case []bool:
			vals, counts := uniqueFirstSeen(d)
			segs = append(segs, e.created(arrayd.Bool, vals))
			if withCounts {
				segs = append(segs, e.created(arrayd.Int64, counts))
			}
		case []uint8:
			vals, counts := uniqueFirstSeen(d)
			segs = append(segs, e.created(arrayd.Uint8, vals))
			if withCounts {
				segs = append(segs, e.created(arrayd.Int64, counts))
			}
		}
		return arrayd.JoinSegments(segs...), nil, nil
	case arrayd.ObjTypeStrings:
		if err := wantOperands(arrayd.VerbUnique, ops, 4); err != nil {
			return "", nil, err
		}
		strs, err := e.decodeStrings(ops[1], ops[2])
		if err != nil {
			return "", nil, err
		}
		vals, counts := uniqueFirstSeen(strs)
		offsets, packed := encodeStrings(vals)
		segs := []string{
			e.created(arrayd.Int64, offsets),
			e.created(arrayd.Uint8, packed),
		}
		if withCounts {
			segs = append(segs, e.created(arrayd.Int64, counts))
		}
		return arrayd.JoinSegments(segs...), nil, nil
	default:
		return "", nil, fmt.Errorf("unique: unknown object kind %q", ops[0])
	}
}

func (e *Engine) in1d(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbIn1D, ops, 3); err != nil {
		return "", nil, err
	}
	as, err := e.get(ops[0])
	if err != nil {
		return "", nil, err
	}
	bs, err := e.get(ops[1])
	if err != nil {
		return "", nil, err
	}
	invert, err := parseFlag(arrayd.VerbIn1D, ops[2])
	if err != nil {
		return "", nil, err
	}
	if as.dtype != bs.dtype {
		return "", nil, fmt.Errorf("in1d: mixed dtypes %s and %s", as.dtype, bs.dtype)
	}
	var mask []bool
	switch ad := as.data.(type) {
	case []int64:
		mask = membershipMask(ad, bs.data.([]int64), invert)
	case []float64:
		mask = membershipMask(ad, bs.data.([]float64), invert)
	case []bool:
		mask = membershipMask(ad, bs.data.([]bool), invert)
	case []uint8:
		mask = membershipMask(ad, bs.data.([]uint8), invert)
	}
	return e.created(arrayd.Bool, mask), nil, nil
}

func (e *Engine) segmentedIn1d(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbSegIn1D, ops, 7); err != nil {
		return "", nil, err
	}
	if arrayd.ObjType(ops[0]) != arrayd.ObjTypeStrings || arrayd.ObjType(ops[3]) != arrayd.ObjTypeStrings {
		return "", nil, fmt.Errorf("segmentedIn1d: unknown object kinds %q and %q", ops[0], ops[3])
	}
	a, err := e.decodeStrings(ops[1], ops[2])
	if err != nil {
		return "", nil, err
	}
	b, err := e.decodeStrings(ops[4], ops[5])
	if err != nil {
		return "", nil, err
	}
	invert, err := parseFlag(arrayd.VerbSegIn1D, ops[6])
	if err != nil {
		return "", nil, err
	}
	return e.created(arrayd.Bool, membershipMask(a, b, invert)), nil, nil
}

func (e *Engine) concatenate(ops []string) (string, []byte, error) {
	if len(ops) < 4 {
		return "", nil, fmt.Errorf("concatenate: expected at least 4 operands, got %d", len(ops))
	}
	n, err := parseSize(arrayd.VerbConcatenate, ops[0])
	if err != nil {
		return "", nil, err
	}
	kind := arrayd.ObjType(ops[1])
	mode := arrayd.ConcatMode(ops[2])
	if mode != arrayd.ModeAppend && mode != arrayd.ModeInterleave {
		return "", nil, fmt.Errorf("concatenate: unknown mode %q", ops[2])
	}
	names := ops[3:]
	switch kind {
	case arrayd.ObjTypeArray:
		if int64(len(names)) != n {
			return "", nil, fmt.Errorf("concatenate: %d names for %d arrays", len(names), n)
		}
		return e.concatArrays(names, mode)
	case arrayd.ObjTypeStrings:
		if int64(len(names)) != 2*n {
			return "", nil, fmt.Errorf("concatenate: %d names for %d string arrays", len(names), n)
		}
		parts := make([][]string, n)
		for i := range parts {
			part, err := e.decodeStrings(names[2*i], names[2*i+1])
			if err != nil {
				return "", nil, err
			}
			parts[i] = part
		}
		offsets, packed := encodeStrings(concatSlices(parts, mode))
		return arrayd.JoinSegments(
			e.created(arrayd.Int64, offsets),
			e.created(arrayd.Uint8, packed),
		), nil, nil
	default:
		return "", nil, fmt.Errorf("concatenate: unknown object kind %q", ops[1])
	}
}

func (e *Engine) concatArrays(names []string, mode arrayd.ConcatMode) (string, []byte, error) {
	syms := make([]*symbol, len(names))
	for i, name := range names {
		sym, err := e.get(name)
		if err != nil {
			return "", nil, err
		}
		if i > 0 && sym.dtype != syms[0].dtype {
			return "", nil, fmt.Errorf("concatenate: mixed dtypes %s and %s", syms[0].dtype, sym.dtype)
		}
		syms[i] = sym
	}
	switch syms[0].data.(type) {
	case []int64:
		return e.created(arrayd.Int64, concatSlices(collect[int64](syms), mode)), nil, nil
	case []float64:
		return e.created(arrayd.Float64, concatSlices(collect[float64](syms), mode)), nil, nil
	case []bool:
		return e.created(arrayd.Bool, concatSlices(collect[bool](syms), mode)), nil, nil
	default:
		return e.created(arrayd.Uint8, concatSlices(collect[uint8](syms), mode)), nil, nil
	}
}

func (e *Engine) setOp(verb string, ops []string) (string, []byte, error) {
	want := 3
	if verb == arrayd.VerbUnion {
		want = 2
	}
	if err := wantOperands(verb, ops, want); err != nil {
		return "", nil, err
	}
	as, err := e.get(ops[0])
	if err != nil {
		return "", nil, err
	}
	bs, err := e.get(ops[1])
	if err != nil {
		return "", nil, err
	}
	ad, ok := as.data.([]int64)
	if !ok {
		return "", nil, fmt.Errorf("%s: supported for int64 only, got %s", verb, as.dtype)
	}
	bd, ok := bs.data.([]int64)
	if !ok {
		return "", nil, fmt.Errorf("%s: supported for int64 only, got %s", verb, bs.dtype)
	}
	var out []int64
	switch verb {
	case arrayd.VerbUnion:
		out = unionInt64(ad, bd)
	case arrayd.VerbIntersect:
		out = intersectInt64(ad, bd)
	case arrayd.VerbSetDiff:
		out = setDiffInt64(ad, bd)
	case arrayd.VerbSetXor:
		out = setXorInt64(ad, bd)
	}
	return e.created(arrayd.Int64, out), nil, nil
}

func (e *Engine) argsort(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbArgsort, ops, 1); err != nil {
		return "", nil, err
	}
	sym, err := e.get(ops[0])
	if err != nil {
		return "", nil, err
	}
	return e.created(arrayd.Int64, stableOrder(sym)), nil, nil
}

func (e *Engine) index(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbIndex, ops, 2); err != nil {
		return "", nil, err
	}
	sym, err := e.get(ops[0])
	if err != nil {
		return "", nil, err
	}
	iv, err := e.get(ops[1])
	if err != nil {
		return "", nil, err
	}
	switch d := sym.data.(type) {
	case []int64:
		out, err := applyIndex(d, iv)
		if err != nil {
			return "", nil, err
		}
		return e.created(arrayd.Int64, out), nil, nil
	case []float64:
		out, err := applyIndex(d, iv)
		if err != nil {
			return "", nil, err
		}
		return e.created(arrayd.Float64, out), nil, nil
	case []bool:
		out, err := applyIndex(d, iv)
		if err != nil {
			return "", nil, err
		}
		return e.created(arrayd.Bool, out), nil, nil
	default:
		out, err := applyIndex(sym.data.([]uint8), iv)
		if err != nil {
			return "", nil, err
		}
		return e.created(arrayd.Uint8, out), nil, nil
	}
}

func (e *Engine) slice(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbSlice, ops, 3); err != nil {
		return "", nil, err
	}
	sym, err := e.get(ops[0])
	if err != nil {
		return "", nil, err
	}
	start, err := strconv.ParseInt(ops[1], 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("slice: bad bound %q", ops[1])
	}
	stop, err := strconv.ParseInt(ops[2], 10, 64)
	if err != nil {
		return "", nil, fmt.Errorf("slice: bad bound %q", ops[2])
	}
	n := int64(lengthOf(sym.data))
	if start < 0 || stop < start || stop > n {
		return "", nil, fmt.Errorf("slice: bounds [%d:%d] out of range for %d elements", start, stop, n)
	}
	switch d := sym.data.(type) {
	case []int64:
		return e.created(arrayd.Int64, slices.Clone(d[start:stop])), nil, nil
	case []float64:
		return e.created(arrayd.Float64, slices.Clone(d[start:stop])), nil, nil
	case []bool:
		return e.created(arrayd.Bool, slices.Clone(d[start:stop])), nil, nil
	default:
		return e.created(arrayd.Uint8, slices.Clone(sym.data.([]uint8)[start:stop])), nil, nil
	}
}

func (e *Engine) binop(ops []string) (string, []byte, error) {
	if err := wantOperands(arrayd.VerbBinop, ops, 3); err != nil {
		return "", nil, err
	}
	op := ops[0]
	as, err := e.get(ops[1])
	if err != nil {
		return "", nil, err
	}
	bs, err := e.get(ops[2])
	if err != nil {
		return "", nil, err
	}
	if as.dtype != bs.dtype {
		return "", nil, fmt.Errorf("binopvv: mixed dtypes %s and %s", as.dtype, bs.dtype)
	}
	if lengthOf(as.data) != lengthOf(bs.data) {
		return "", nil, fmt.Errorf("binopvv: length mismatch %d and %d", lengthOf(as.data), lengthOf(bs.data))
	}
	var mask []bool
	switch ad := as.data.(type) {
	case []int64:
		mask, err = compareOrdered(op, ad, bs.data.([]int64))
	case []float64:
		mask, err = compareOrdered(op, ad, bs.data.([]float64))
	case []uint8:
		mask, err = compareOrdered(op, ad, bs.data.([]uint8))
	case []bool:
		mask, err = combineBool(op, ad, bs.data.([]bool))
	}
	if err != nil {
		return "", nil, err
	}
	return e.created(arrayd.Bool, mask), nil, nil
}

func (e *Engine) decodeStrings(offName, bytName string) ([]string, error) {
	offSym, err := e.get(offName)
	if err != nil {
		return nil, err
	}
	bytSym, err := e.get(bytName)
	if err != nil {
		return nil, err
	}
	offsets, ok := offSym.data.([]int64)
	if !ok {
		return nil, fmt.Errorf("%q is not an int64 offsets array", offName)
	}
	packed, ok := bytSym.data.([]uint8)
	if !ok {
		return nil, fmt.Errorf("%q is not a uint8 bytes array", bytName)
	}
	out := make([]string, len(offsets))
	for i, start := range offsets {
		end := int64(len(packed))
		if i+1 < len(offsets) {
			end = offsets[i+1]
		}
		if start < 0 || start > end || end > int64(len(packed)) {
			return nil, fmt.Errorf("offsets of %q out of range", offName)
		}
		out[i] = string(packed[start:end])
	}
	return out, nil
}

func encodeStrings(vals []string) ([]int64, []uint8) {
	offsets := make([]int64, len(vals))
	var total int64
	for i, v := range vals {
		offsets[i] = total
		total += int64(len(v))
	}
	packed := make([]uint8, 0, total)
	for _, v := range vals {
		packed = append(packed, v...)
	}
	return offsets, packed
}

// uniqueSortedInt64 returns the distinct values sorted ascending with
// aligned occurrence counts.
func uniqueSortedInt64(in []int64) ([]int64, []int64) {
	sorted := slices.Clone(in)
	slices.Sort(sorted)
	vals := make([]int64, 0, len(sorted))
	counts := make([]int64, 0, len(sorted))
	for _, v := range sorted {
		if n := len(vals); n > 0 && vals[n-1] == v {
			counts[n-1]++
			continue
		}
		vals = append(vals, v)
		counts = append(counts, 1)
	}
	return vals, counts
}

// uniqueFirstSeen keeps the first occurrence of each distinct element,
// in input order, with aligned occurrence counts.
func uniqueFirstSeen[E comparable](in []E) ([]E, []int64) {
	seen := make(map[E]int, len(in))
	vals := make([]E, 0, len(in))
	counts := make([]int64, 0, len(in))
	for _, v := range in {
		if i, ok := seen[v]; ok {
			counts[i]++
			continue
		}
		seen[v] = len(vals)
		vals = append(vals, v)
		counts = append(counts, 1)
	}
	return vals, counts
}

func membershipMask[E comparable](a, b []E, invert bool) []bool {
	set := make(map[E]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	mask := make([]bool, len(a))
	for i, v := range a {
		_, ok := set[v]
		mask[i] = ok != invert
	}
	return mask
}

func concatSlices[E any](parts [][]E, mode arrayd.ConcatMode) []E {
	var total int
	for _, p := range parts {
		total += len(p)
	}
	out := make([]E, 0, total)
	if mode == arrayd.ModeAppend {
		for _, p := range parts {
			out = append(out, p...)
		}
		return out
	}
	// Round-robin one element from each part until all are exhausted.
	for i := 0; len(out) < total; i++ {
		for _, p := range parts {
			if i < len(p) {
				out = append(out, p[i])
			}
		}
	}
	return out
}

func collect[E any](syms []*symbol) [][]E {
	parts := make([][]E, len(syms))
	for i, s := range syms {
		parts[i] = s.data.([]E)
	}
	return parts
}

func unionInt64(a, b []int64) []int64 {
	set := make(map[int64]struct{}, len(a)+len(b))
	for _, v := range a {
		set[v] = struct{}{}
	}
	for _, v := range b {
		set[v] = struct{}{}
	}
	return sortedKeys(set)
}

func intersectInt64(a, b []int64) []int64 {
	in := make(map[int64]struct{}, len(a))
	for _, v := range a {
		in[v] = struct{}{}
	}
	out := make(map[int64]struct{})
	for _, v := range b {
		if _, ok := in[v]; ok {
			out[v] = struct{}{}
		}
	}
	return sortedKeys(out)
}

func setDiffInt64(a, b []int64) []int64 {
	drop := make(map[int64]struct{}, len(b))
	for _, v := range b {
		drop[v] = struct{}{}
	}
	out := make(map[int64]struct{})
	for _, v := range a {
		if _, ok := drop[v]; !ok {
			out[v] = struct{}{}
		}
	}
	return sortedKeys(out)
}

func setXorInt64(a, b []int64) []int64 {
	inA := make(map[int64]struct{}, len(a))
	for _, v := range a {
		inA[v] = struct{}{}
	}
	inB := make(map[int64]struct{}, len(b))
	for _, v := range b {
		inB[v] = struct{}{}
	}
	out := make(map[int64]struct{})
	for v := range inA {
		if _, ok := inB[v]; !ok {
			out[v] = struct{}{}
		}
	}
	for v := range inB {
		if _, ok := inA[v]; !ok {
			out[v] = struct{}{}
		}
	}
	return sortedKeys(out)
}

func sortedKeys(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// stableOrder returns the stable ascending sort permutation.
func stableOrder(s *symbol) []int64 {
	idx := make([]int64, lengthOf(s.data))
	for i := range idx {
		idx[i] = int64(i)
	}
	less := s.less()
	sort.SliceStable(idx, func(i, j int) bool { return less(int(idx[i]), int(idx[j])) })
	return idx
}

func (s *symbol) less() func(i, j int) bool {
	switch d := s.data.(type) {
	case []int64:
		return func(i, j int) bool { return d[i] < d[j] }
	case []float64:
		return func(i, j int) bool { return d[i] < d[j] }
	case []uint8:
		return func(i, j int) bool { return d[i] < d[j] }
	case []bool:
		return func(i, j int) bool { return !d[i] && d[j] }
	}
	return func(i, j int) bool { return false }
}

func applyIndex[E any](d []E, iv *symbol) ([]E, error) {
	switch ind := iv.data.(type) {
	case []int64:
		out := make([]E, len(ind))
		for i, j := range ind {
			if j < 0 || j >= int64(len(d)) {
				return nil, fmt.Errorf("index %d out of range for %d elements", j, len(d))
			}
			out[i] = d[j]
		}
		return out, nil
	case []bool:
		if len(ind) != len(d) {
			return nil, fmt.Errorf("bool index length %d does not match %d elements", len(ind), len(d))
		}
		out := make([]E, 0, len(d))
		for i, keep := range ind {
			if keep {
				out = append(out, d[i])
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("index vector must be int64 or bool, got %s", iv.dtype)
	}
}

func compareOrdered[E cmp.Ordered](op string, a, b []E) ([]bool, error) {
	var fn func(x, y E) bool
	switch op {
	case "==":
		fn = func(x, y E) bool { return x == y }
	case "!=":
		fn = func(x, y E) bool { return x != y }
	case "<":
		fn = func(x, y E) bool { return x < y }
	case "<=":
		fn = func(x, y E) bool { return x <= y }
	case ">":
		fn = func(x, y E) bool { return x > y }
	case ">=":
		fn = func(x, y E) bool { return x >= y }
	default:
		return nil, fmt.Errorf("binopvv: unknown operator %q", op)
	}
	out := make([]bool, len(a))
	for i := range a {
		out[i] = fn(a[i], b[i])
	}
	return out, nil
}

func combineBool(op string, a, b []bool) ([]bool, error) {
	var fn func(x, y bool) bool
	switch op {
	case "==":
		fn = func(x, y bool) bool { return x == y }
	case "!=":
		fn = func(x, y bool) bool { return x != y }
	case "&":
		fn = func(x, y bool) bool { return x && y }
	case "|":
		fn = func(x, y bool) bool { return x || y }
	default:
		return nil, fmt.Errorf("binopvv: unknown operator %q for bool", op)
	}
	out := make([]bool, len(a))
	for i := range a {
		out[i] = fn(a[i], b[i])
	}
	return out, nil
}
