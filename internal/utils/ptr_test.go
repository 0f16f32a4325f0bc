package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPtr(t *testing.T) {
	p := Ptr(3)
	assert.Equal(t, 3, *p)
}

func TestClone(t *testing.T) {
	assert.Nil(t, Clone[string](nil))

	orig := Ptr("t1")
	c := Clone(orig)
	*c = "t2"
	assert.Equal(t, "t1", *orig)
	assert.Equal(t, "t2", *c)
}
