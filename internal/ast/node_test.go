package ast

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestUnifiedAstNodeIsExactly64Bytes(t *testing.T) {
	require.Equal(t, uintptr(64), unsafe.Sizeof(UnifiedAstNode{}))
}

func TestPackUnpackComplexity(t *testing.T) {
	meta := PackComplexity(5, 9)
	cyclomatic, cognitive := UnpackComplexity(meta)
	require.Equal(t, uint32(5), cyclomatic)
	require.Equal(t, uint32(9), cognitive)
}
