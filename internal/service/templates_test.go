package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestTemplateFindsNearestIDOnTypo(t *testing.T) {
	suggestion, ok := SuggestTemplate("go-servic")
	require.True(t, ok)
	require.Equal(t, "go-service", suggestion)
}

func TestSuggestTemplateRejectsUnrelatedInput(t *testing.T) {
	_, ok := SuggestTemplate("completely-unrelated-garbage-string")
	require.False(t, ok)
}
