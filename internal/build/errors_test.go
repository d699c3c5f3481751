package build

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opmodel/refgraph/internal/core"
	oerrors "github.com/opmodel/refgraph/internal/errors"
)

func TestEntryError(t *testing.T) {
	cause := &core.UnsupportedExportPatternError{Ident: core.NewIdent("app/ui.tsx")}
	err := &EntryError{Entry: "app/page.tsx", Context: "rsc", Err: cause}

	assert.Equal(t, "entry app/page.tsx (rsc): app/ui.tsx: "+core.StarExportMessage, err.Error())

	var pattern *core.UnsupportedExportPatternError
	assert.True(t, errors.As(err, &pattern))
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
	assert.Equal(t, oerrors.ExitValidationError, oerrors.ExitCodeFromError(err))
}
