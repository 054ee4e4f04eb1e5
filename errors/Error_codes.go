package errors

// ERR identifies the class of a failure. Codes are stable: log parsers and
// callers switch on them, so values are never reused or renumbered.
type ERR int32

const (
	ERR_UNKNOWN          ERR = 0
	ERR_ERROR            ERR = 1
	ERR_INVALID_ARGUMENT ERR = 2
	ERR_PROCESSING       ERR = 3
	ERR_CONFIGURATION    ERR = 4
	ERR_NOT_FOUND        ERR = 5
	ERR_CONTEXT_CANCELED ERR = 6
)

var ERR_name = map[int32]string{
	0: "UNKNOWN",
	1: "ERROR",
	2: "INVALID_ARGUMENT",
	3: "PROCESSING",
	4: "CONFIGURATION",
	5: "NOT_FOUND",
	6: "CONTEXT_CANCELED",
}

var ERR_value = map[string]int32{
	"UNKNOWN":          0,
	"ERROR":            1,
	"INVALID_ARGUMENT": 2,
	"PROCESSING":       3,
	"CONFIGURATION":    4,
	"NOT_FOUND":        5,
	"CONTEXT_CANCELED": 6,
}

func (e ERR) String() string {
	if name, ok := ERR_name[int32(e)]; ok {
		return name
	}

	return "UNKNOWN"
}
