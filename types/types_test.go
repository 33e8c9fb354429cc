package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoarseTypeCode(t *testing.T) {
	tests := []struct {
		declared string
		want     TypeCode
	}{
		{"VARCHAR(10)", Varchar},
		{"varchar (255)", Varchar},
		{"DECIMAL(10, 2)", TypeCode("DECIMAL")},
		{"DATE", Date},
		{"datetime", Datetime},
		{"", None},
		{"  TEXT  ", Text},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			assert.Equal(t, tt.want, CoarseTypeCode(tt.declared))
		})
	}
}

func TestTypeObjects(t *testing.T) {
	assert.True(t, STRING.Matches(Varchar))
	assert.True(t, STRING.Matches(Text))
	assert.True(t, NUMBER.Matches(Integer))
	assert.True(t, DATETIME.Matches(Time))
	assert.True(t, BINARY.Matches(Blob))
	assert.True(t, ROWID.Matches(Integer))
	assert.False(t, NUMBER.Matches(Text))
	assert.False(t, STRING.Matches(None))
	assert.Equal(t, "DATETIME", DATETIME.String())
}
