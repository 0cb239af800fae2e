package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRamReadWriteByte(t *testing.T) {
	r := NewRam()
	r.WriteByte(0x0200, 0x42)
	assert.Equal(t, byte(0x42), r.ReadByte(0x0200))
	assert.Equal(t, byte(0), r.ReadByte(0x0201))
}

func TestRamReadWriteShort(t *testing.T) {
	r := NewRam()
	r.WriteShort(0x4000, 0xbeef)
	assert.Equal(t, byte(0xef), r.ReadByte(0x4000))
	assert.Equal(t, byte(0xbe), r.ReadByte(0x4001))
	assert.Equal(t, uint16(0xbeef), r.ReadShort(0x4000))
}

func TestRamLoad(t *testing.T) {
	r := NewRam()
	program := []byte{0xa9, 0x01, 0x8d, 0x00, 0x02}
	err := r.Load(program, 0x0600)
	assert.NoError(t, err)
	for i, b := range program {
		assert.Equal(t, b, r.ReadByte(0x0600+uint16(i)))
	}
}

func TestRamLoadOversize(t *testing.T) {
	r := NewRam()
	huge := make([]byte, maxExecutableSize+1)
	err := r.Load(huge, 0x0000)
	assert.ErrorIs(t, err, ErrLoadOversize)
}

func TestRamLoadPastAddressSpace(t *testing.T) {
	r := NewRam()
	program := make([]byte, 16)
	err := r.Load(program, 0xfffc)
	assert.ErrorIs(t, err, ErrLoadOversize)
}

func TestRamLoadOverlappingVectorArea(t *testing.T) {
	r := NewRam()
	err := r.Load(make([]byte, 2), 0xfffa)
	assert.ErrorIs(t, err, ErrLoadOversize, "a load reaching into 0xfffa-0xffff must be rejected even though it stays inside the 64 KiB space")
}

func TestRamLoadRightUpToVectorArea(t *testing.T) {
	r := NewRam()
	err := r.Load(make([]byte, 2), 0xfff8)
	assert.NoError(t, err, "a load ending exactly at 0xfffa is allowed")
}

func TestRamLoadFromFileMissing(t *testing.T) {
	r := NewRam()
	err := r.LoadFromFile("/nonexistent/path/does-not-exist.bin", 0x0000)
	assert.ErrorIs(t, err, ErrLoadIO)
}
