package operation

import (
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageDoc(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "doc.go", nil, parser.ParseComments)
	require.NoError(t, err)
	require.NotNil(t, f.Doc)

	doc := f.Doc.Text()
	assert.Contains(t, doc, "Package operation runs a rule set over target files.")
	assert.Contains(t, doc, `operation.NewRunner(logger, false).Run(ctx, op)`, "the example should survive to the end of the comment")
}
