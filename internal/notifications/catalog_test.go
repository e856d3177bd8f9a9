package notifications

import (
	"testing"

	"github.com/sjperalta/registro-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDefaultSubject(t *testing.T) {
	assert.Equal(t, "Contratto scaduto", ResolveDefaultSubject(CodeContractExpired))
	assert.Equal(t, FallbackSubject, ResolveDefaultSubject("CODICE_SCONOSCIUTO"))
	assert.Equal(t, FallbackSubject, ResolveDefaultSubject(""))
}

func TestEntries_StableAndUnique(t *testing.T) {
	first := Entries()
	second := Entries()
	assert.Equal(t, first, second)
	assert.Len(t, first, len(catalog))

	seen := map[string]bool{}
	for i, e := range first {
		assert.False(t, seen[e.Code], "duplicate code %s", e.Code)
		seen[e.Code] = true
		assert.NotEmpty(t, e.DefaultSubject)
		if i > 0 {
			prev := first[i-1]
			assert.True(t, prev.Module < e.Module || (prev.Module == e.Module && prev.Code < e.Code))
		}
	}
}

func TestEntries_ReturnsCopy(t *testing.T) {
	list := Entries()
	list[0].DefaultSubject = "changed"

	e, ok := Lookup(list[0].Code)
	require.True(t, ok)
	assert.NotEqual(t, "changed", e.DefaultSubject)
}

func TestStatusCode(t *testing.T) {
	code, ok := StatusCode(models.ContractStatusExpired)
	assert.True(t, ok)
	assert.Equal(t, CodeContractExpired, code)

	code, ok = StatusCode(models.ContractStatusRenewed)
	assert.True(t, ok)
	assert.Equal(t, CodeContractRenewed, code)

	_, ok = StatusCode(models.ContractStatusActive)
	assert.False(t, ok)
}
