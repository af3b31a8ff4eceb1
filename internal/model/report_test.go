package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDocumentType(t *testing.T) {
	for _, dt := range AllDocumentTypes {
		parsed, err := ParseDocumentType(string(dt))
		require.NoError(t, err)
		assert.Equal(t, dt, parsed)
	}

	_, err := ParseDocumentType("wochenbericht")
	assert.Error(t, err)

	// The type set is closed and case sensitive.
	_, err = ParseDocumentType("Bautagesbericht")
	assert.Error(t, err)
}

func TestDocumentType_TableName(t *testing.T) {
	assert.Equal(t, "bautagesberichte", TypeBautagesbericht.TableName())
	assert.Equal(t, "regieberichte", TypeRegiebericht.TableName())
	assert.Equal(t, "regieantraege", TypeRegieantrag.TableName())

	assert.Panics(t, func() {
		DocumentType("wochenbericht").TableName()
	})
}

func TestDocumentType_Valid(t *testing.T) {
	assert.True(t, TypeRegiebericht.Valid())
	assert.False(t, DocumentType("").Valid())
}
