package simmap

import (
	"errors"
	"fmt"

	"github.com/JensKlimke/SimMap-sub000/domain"
)

var (
	// ErrUnknownAgent is returned for handles or names of agents that are not registered.
	ErrUnknownAgent = errors.New("unknown agent")
	// ErrUnknownMap is returned for handles of maps that are not loaded.
	ErrUnknownMap = errors.New("unknown map")
)

// Op identifies an environment operation. The value is the base of the operation's
// integer error codes.
type Op int

const (
	OpClear           Op = 10
	OpLoadMap         Op = 20
	OpUnloadMap       Op = 30
	OpRegisterAgent   Op = 40
	OpUnregisterAgent Op = 50
	OpSetTrack        Op = 60
	OpPosition        Op = 70
	OpSetMapPosition  Op = 80
	OpMapPosition     Op = 90
	OpMatch           Op = 100
	OpMove            Op = 110
	OpHorizon         Op = 120
	OpObjects         Op = 130
	OpLanes           Op = 140
	OpTargets         Op = 150
	OpSwitchLane      Op = 160
)

var opNames = map[Op]string{
	OpClear:           "clear",
	OpLoadMap:         "loadMap",
	OpUnloadMap:       "unloadMap",
	OpRegisterAgent:   "registerAgent",
	OpUnregisterAgent: "unregisterAgent",
	OpSetTrack:        "setTrack",
	OpPosition:        "position",
	OpSetMapPosition:  "setMapPosition",
	OpMapPosition:     "mapPosition",
	OpMatch:           "match",
	OpMove:            "move",
	OpHorizon:         "horizon",
	OpObjects:         "objects",
	OpLanes:           "lanes",
	OpTargets:         "targets",
	OpSwitchLane:      "switchLane",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// OpError is a failed environment operation.
type OpError struct {
	Op  Op
	Err error
}

func (e *OpError) Error() string {
	return e.Op.String() + ": " + e.Err.Error()
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op Op, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// Code maps err to an integer code: the base of the failed operation plus a sub-code for
// the kind of failure. nil maps to 0.
//
//	2 agent missing, 3 map missing, 4 conflict, 5 invalid argument, 6 out of range,
//	7 not found, 8 runtime, 9 unexpected
func Code(err error) int {
	if err == nil {
		return 0
	}

	base := 0
	var oe *OpError
	if errors.As(err, &oe) {
		base = int(oe.Op)
	}
	return base + SubCode(err)
}

// SubCode classifies err by the code of its outermost domain error.
func SubCode(err error) int {
	if err == nil {
		return 0
	}

	switch domain.CodeOf(err) {
	case ErrUnknownAgent:
		return 2
	case ErrUnknownMap:
		return 3
	case domain.ErrConflict:
		return 4
	case domain.ErrInvalidArgument:
		return 5
	case domain.ErrOutOfRange:
		return 6
	case domain.ErrNotFound:
		return 7
	case domain.ErrRuntime:
		return 8
	default:
		return 9
	}
}
