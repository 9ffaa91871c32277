package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{"-version"}, &out)

	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "basket-server ")
}

func TestRun_BadFlag(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 2, run([]string{"-no-such-flag"}, &out))
}
