package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codelens/internal/types"
)

func TestDetectSATDSecurityEscalatorRaisesSeverity(t *testing.T) {
	comments := []Comment{
		{Text: "TODO(security): validate input", File: "auth.rs", Line: 10, Column: 3},
	}
	items := DetectSATD(comments, false, false)
	require.Len(t, items, 1)
	require.Equal(t, types.SATDDefect, items[0].Category)
	require.Equal(t, types.SeverityHigh, items[0].Severity)
	require.Equal(t, "todo", items[0].Pattern)
}

func TestDetectSATDSkipsTestFilesWhenConfigured(t *testing.T) {
	comments := []Comment{{Text: "FIXME: broken", File: "x_test.go", IsTest: true}}
	require.Empty(t, DetectSATD(comments, true, false))
	require.Len(t, DetectSATD(comments, false, false), 1)
}

func TestDetectSATDDownweightsTestSeverity(t *testing.T) {
	comments := []Comment{{Text: "BUG: off by one", File: "x_test.go", IsTest: true}}
	items := DetectSATD(comments, false, true)
	require.Len(t, items, 1)
	require.Equal(t, types.SeverityMedium, items[0].Severity)
}
