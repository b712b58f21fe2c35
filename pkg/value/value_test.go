package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEqualIgnoresObjectKeyOrder(t *testing.T) {
	a := Object(Member{"A", Number(1)}, Member{"B", String("x")})
	b := Object(Member{"B", String("x")}, Member{"A", Number(1)})
	require.True(t, Equal(a, b))
}

func TestEqualArrayOrderMatters(t *testing.T) {
	a := Array(Number(1), Number(2))
	b := Array(Number(2), Number(1))
	require.False(t, Equal(a, b))
}

func TestEqualDifferentKinds(t *testing.T) {
	require.False(t, Equal(Null(), Bool(false)))
}

func TestEqualNestedStructures(t *testing.T) {
	a := Object(Member{"Xs", Array(Number(0), Number(1), Number(2))})
	b := Object(Member{"Xs", Array(Number(0), Number(1), Number(2))})
	require.True(t, Equal(a, b))
}

func TestGetMissingKey(t *testing.T) {
	obj := Object(Member{"A", Number(1)})
	_, ok := obj.Get("B")
	require.False(t, ok)
}
