package storage

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	id := uuid.New()
	key := ObjectKey(id, "../../Beach View.JPG")

	assert.True(t, strings.HasPrefix(key, "listings/"+id.String()+"/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotContains(t, key, "..")
	assert.NotEqual(t, key, ObjectKey(id, "../../Beach View.JPG"))
}
