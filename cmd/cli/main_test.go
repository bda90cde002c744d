package main

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppStarts(t *testing.T) {
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = []string{"ccpatch", "help"}

	assert.NotPanics(t, main)
}
