package workbench

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"genelab/internal/logging"
)

var testCtx context.Context

func TestWorkbench(t *testing.T) {
	testCtx = logging.IntoContext(context.Background(), logging.NewTestLogger())
	RegisterFailHandler(Fail)
	RunSpecs(t, "Workbench Suite")
}
