package backup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	for _, table := range Tables() {
		assert.True(t, Allowed(table), table)
	}
	assert.False(t, Allowed("admin_accounts"))
	assert.False(t, Allowed("users; DROP TABLE users"))
	assert.False(t, Allowed(""))
}

func TestTablesReturnsCopy(t *testing.T) {
	tables := Tables()
	tables[0] = "mutated"
	assert.NotEqual(t, tables[0], Tables()[0])
}
