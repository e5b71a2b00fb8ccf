// Package ipamerr задаёт единую классификацию ошибок для операций с NIPAP и
// со вспомогательной таблицей VLAN. Каждая операция возвращает либо значение,
// либо *Error с видом (Kind), так что "не найдено" отличимо от "сбой".
package ipamerr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindConnectivity
	KindAuth
	KindInput
	KindNotFound
	KindDuplicate
	KindRemote
	KindUnsupported
	KindConsistency
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindConnectivity:
		return "connectivity"
	case KindAuth:
		return "auth"
	case KindInput:
		return "input"
	case KindNotFound:
		return "not found"
	case KindDuplicate:
		return "duplicate"
	case KindRemote:
		return "remote"
	case KindUnsupported:
		return "unsupported"
	case KindConsistency:
		return "consistency"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is сравнивает по виду, поэтому errors.Is(err, ErrNotFound) работает для любой операции.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrConnectivity = &Error{Kind: KindConnectivity}
	ErrAuth         = &Error{Kind: KindAuth}
	ErrInput        = &Error{Kind: KindInput}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrDuplicate    = &Error{Kind: KindDuplicate}
	ErrRemote       = &Error{Kind: KindRemote}
	ErrUnsupported  = &Error{Kind: KindUnsupported}
	ErrConsistency  = &Error{Kind: KindConsistency}
	ErrStore        = &Error{Kind: KindStore}
)

func E(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

func Errorf(op string, kind Kind, format string, args ...any) *Error {
	return &Error{Op: op, Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf возвращает вид первой *Error в цепочке или KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
