package drivers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nuln/doctree/drivers"
)

func TestList(t *testing.T) {
	drivers.Init()
	names := drivers.List()
	assert.Contains(t, names, "local")
	assert.Contains(t, names, "rclone")
}
