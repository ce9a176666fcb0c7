//go:build !ntt_nodetail

package ntt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathanmweiss/go-ntt/device"
)

func TestErrorDetail(t *testing.T) {
	a := assert.New(t)

	d, err := device.New(device.Config{MemoryLimit: 8})
	a.NoError(err)

	_, err = device.Alloc[uint64](d, 2)
	nerr := newError(err)

	a.Equal(device.ErrorMemoryAllocation, nerr.Code)
	a.Contains(nerr.Detail, "16 bytes requested")
	a.ErrorIs(nerr, err)
}
