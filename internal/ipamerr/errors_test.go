package ipamerr

import (
	"errors"
	"fmt"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByKind(t *testing.T) {
	err := E("find_vrf", KindNotFound, errors.New("no vrf with name=x"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrDuplicate))
	assert.True(t, IsNotFound(fmt.Errorf("outer: %w", err)))
	assert.True(t, errors.Is(pkgerrors.Wrap(err, "http"), ErrNotFound))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindDuplicate, KindOf(fmt.Errorf("x: %w", Errorf("add_prefix", KindDuplicate, "dup"))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "insert_vlan: duplicate: boom", E("insert_vlan", KindDuplicate, errors.New("boom")).Error())
	assert.Equal(t, "get_prefixes: unsupported", E("get_prefixes", KindUnsupported, nil).Error())
	assert.Equal(t, "not found", ErrNotFound.Error())
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 404, HTTPStatus(E("find_vrf", KindNotFound, nil)))
	assert.Equal(t, 409, HTTPStatus(E("insert_vlan", KindDuplicate, nil)))
	assert.Equal(t, 501, HTTPStatus(E("get_prefixes", KindUnsupported, nil)))
	assert.Equal(t, 503, HTTPStatus(E("dial", KindConnectivity, nil)))
	assert.Equal(t, 500, HTTPStatus(errors.New("plain")))
}

func TestSentinelsMatchTheirKindOnly(t *testing.T) {
	sentinels := map[Kind]*Error{
		KindConnectivity: ErrConnectivity,
		KindAuth:         ErrAuth,
		KindInput:        ErrInput,
		KindNotFound:     ErrNotFound,
		KindDuplicate:    ErrDuplicate,
		KindRemote:       ErrRemote,
		KindUnsupported:  ErrUnsupported,
		KindConsistency:  ErrConsistency,
		KindStore:        ErrStore,
	}
	for kind := range sentinels {
		err := E("op", kind, errors.New("x"))
		for other, sentinel := range sentinels {
			assert.Equal(t, kind == other, errors.Is(err, sentinel), "%s vs %s", kind, other)
		}
	}
}
