package value

import (
	"errors"
	"fmt"
	"time"

	"github.com/robinvdvleuten/datemath/calendar"
)

// Op is a binary operator.
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	// OpRound floors a timestamp to a unit boundary. It is not division.
	OpRound
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpRound:
		return "/"
	default:
		return "?"
	}
}

// ErrIntegerOverflow is wrapped by OpError when integer arithmetic
// leaves the int64 range.
var ErrIntegerOverflow = errors.New("integer overflow")

// OpError reports an operator applied to operands it does not support,
// or an arithmetic overflow.
type OpError struct {
	Op    Op
	Unary bool
	Left  Kind
	Right Kind
	Err   error
}

func (e *OpError) Error() string {
	if e.Unary {
		if e.Err != nil {
			return fmt.Sprintf("cannot negate %s: %v", e.Left, e.Err)
		}
		return fmt.Sprintf("cannot negate %s", e.Left)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s %s: %v", e.Left, e.Op, e.Right, e.Err)
	}
	if e.Op == OpRound {
		return fmt.Sprintf("cannot round %s to %s, expected timestamp / UNIT", e.Left, e.Right)
	}
	return fmt.Sprintf("cannot apply %s to %s and %s", e.Op, e.Left, e.Right)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// Rules holds the per-session settings that operators depend on.
type Rules struct {
	// Rounding selects how sub-day units are floored by OpRound.
	Rounding calendar.RoundingMode
	// Location interprets integers rounded as Unix seconds. Nil means
	// time.Local.
	Location *time.Location
}

// Apply evaluates left op right.
func (r Rules) Apply(op Op, left, right Value) (Value, error) {
	switch op {
	case OpAdd:
		return r.add(left, right)
	case OpSub:
		return r.sub(left, right)
	case OpRound:
		return r.round(left, right)
	}
	return Value{}, &OpError{Op: op, Left: left.kind, Right: right.kind}
}

func (r Rules) add(left, right Value) (Value, error) {
	fail := func(err error) (Value, error) {
		return Value{}, &OpError{Op: OpAdd, Left: left.kind, Right: right.kind, Err: err}
	}

	switch {
	case left.kind == Integer && right.kind == Integer:
		n, ok := calendar.AddInt(left.i, right.i)
		if !ok {
			return fail(ErrIntegerOverflow)
		}
		return Int(n), nil

	case left.kind == Duration && right.kind == Duration:
		d, err := left.d.Add(right.d)
		if err != nil {
			return fail(err)
		}
		return Dur(d), nil

	case left.kind == Timestamp && right.kind == Duration:
		t, err := right.d.AddTo(left.t)
		if err != nil {
			return fail(err)
		}
		return Time(t), nil

	case left.kind == Duration && right.kind == Timestamp:
		t, err := left.d.AddTo(right.t)
		if err != nil {
			return fail(err)
		}
		return Time(t), nil
	}

	return fail(nil)
}

func (r Rules) sub(left, right Value) (Value, error) {
	fail := func(err error) (Value, error) {
		return Value{}, &OpError{Op: OpSub, Left: left.kind, Right: right.kind, Err: err}
	}

	switch {
	case left.kind == Integer && right.kind == Integer:
		n, ok := calendar.SubInt(left.i, right.i)
		if !ok {
			return fail(ErrIntegerOverflow)
		}
		return Int(n), nil

	case left.kind == Duration && right.kind == Duration:
		neg, err := right.d.Neg()
		if err != nil {
			return fail(err)
		}
		d, err := left.d.Add(neg)
		if err != nil {
			return fail(err)
		}
		return Dur(d), nil

	case left.kind == Timestamp && right.kind == Duration:
		neg, err := right.d.Neg()
		if err != nil {
			return fail(err)
		}
		t, err := neg.AddTo(left.t)
		if err != nil {
			return fail(err)
		}
		return Time(t), nil

	case left.kind == Timestamp && right.kind == Timestamp:
		d, err := calendar.Between(left.t, right.t)
		if err != nil {
			return fail(err)
		}
		return Dur(d), nil
	}

	return fail(nil)
}

func (r Rules) round(left, right Value) (Value, error) {
	if right.kind != UnitName {
		return Value{}, &OpError{Op: OpRound, Left: left.kind, Right: right.kind}
	}

	switch left.kind {
	case Timestamp:
		return Time(calendar.Round(left.t, right.u, r.Rounding)), nil
	case Integer:
		loc := r.Location
		if loc == nil {
			loc = time.Local
		}
		t := time.Unix(left.i, 0).In(loc)
		return Time(calendar.Round(t, right.u, r.Rounding)), nil
	}

	return Value{}, &OpError{Op: OpRound, Left: left.kind, Right: right.kind}
}

// Neg evaluates unary minus.
func Neg(v Value) (Value, error) {
	switch v.kind {
	case Integer:
		n, ok := calendar.SubInt(0, v.i)
		if !ok {
			return Value{}, &OpError{Op: OpSub, Unary: true, Left: v.kind, Err: ErrIntegerOverflow}
		}
		return Int(n), nil
	case Duration:
		d, err := v.d.Neg()
		if err != nil {
			return Value{}, &OpError{Op: OpSub, Unary: true, Left: v.kind, Err: err}
		}
		return Dur(d), nil
	}
	return Value{}, &OpError{Op: OpSub, Unary: true, Left: v.kind}
}
