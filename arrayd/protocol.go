package arrayd

// Well-known verbs, markers, and object kinds of the arrayd wire
// protocol. Commands are single text lines "verb operand operand ...";
// replies are "+"-joined segments.
const (
	VerbConnect     = "connect"
	VerbDisconnect  = "disconnect"
	VerbUnique      = "unique"
	VerbIn1D        = "in1d"
	VerbSegIn1D     = "segmentedIn1d"
	VerbConcatenate = "concatenate"
	VerbUnion       = "union1d"
	VerbIntersect   = "intersect1d"
	VerbSetDiff     = "setdiff1d"
	VerbSetXor      = "setxor1d"
	VerbArgsort     = "argsort"
	VerbCreate      = "create"
	VerbArray       = "array"
	VerbFetch       = "fetch"
	VerbIndex       = "index"
	VerbSlice       = "slice"
	VerbBinop       = "binopvv"
	VerbDelete      = "delete"
	VerbInfo        = "info"

	// Reply segment markers.
	MarkerCreated      = "created"
	MarkerDeleted      = "deleted"
	MarkerConnected    = "connected"
	MarkerDisconnected = "disconnected"
	MarkerData         = "data"
	MarkerSymbol       = "symbol"
	MarkerSymbols      = "symbols"

	// ErrorPrefix starts every remote failure reply.
	ErrorPrefix = "Error: "

	// ReplyDelimiter joins reply segments. Command operands must never
	// contain it; the command builder enforces that at encode time.
	ReplyDelimiter = "+"

	ProtocolVersion = "1"
)

// ObjType tags the wire-level object kind of a handle.
type ObjType string

const (
	ObjTypeArray   ObjType = "array"
	ObjTypeStrings ObjType = "strings"
)

// ConcatMode selects how the server orders a concatenation result.
type ConcatMode string

const (
	// ModeAppend preserves input order.
	ModeAppend ConcatMode = "append"
	// ModeInterleave lets the server reorder for throughput. The result
	// is an unspecified permutation of the appended inputs.
	ModeInterleave ConcatMode = "interleave"
)
