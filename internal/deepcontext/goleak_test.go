package deepcontext

import (
	"testing"

	"go.uber.org/goleak"
)

// Run fans out via errgroup; this guards against a goroutine that
// forgets to return when its sibling analysis fails first.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
