// Package mem implements the 64 KiB flat address space the CPU core reads
// instructions and operands from. A Bus is the boundary a host program uses
// to substitute bank-switched or memory-mapped I/O for the default flat RAM.
package mem

import (
	"os"

	"github.com/pkg/errors"
)

// addressSpace is the size of the 6502's address bus: 2^16 bytes.
const addressSpace = 1 << 16

// maxExecutableSize is the largest program Load/LoadFromFile will accept.
// The reset vector sits at 0xfffc, so an executable loaded at address 0 that
// runs past it would clobber the vector table; a generous 32 KiB cap keeps
// well clear of that while still fitting realistic test programs.
const maxExecutableSize = 1 << 15

// ErrLoadOversize is returned by Load when the supplied program would not
// fit in the address space reserved for it.
var ErrLoadOversize = errors.New("mem: executable exceeds maximum load size")

// ErrLoadIO wraps a failure reading a program from disk in LoadFromFile.
var ErrLoadIO = errors.New("mem: failed to load executable from file")

// Bus is the capability the CPU core depends on for all memory access. The
// default implementation is Ram; embedders that need bank switching or
// memory-mapped I/O can supply their own.
type Bus interface {
	ReadByte(addr uint16) byte
	ReadShort(addr uint16) uint16
	WriteByte(addr uint16, value byte)
	WriteShort(addr uint16, value uint16)
	Load(executable []byte, addr uint16) error
	LoadFromFile(name string, addr uint16) error
}

// Ram is the default Bus implementation: a flat, unbanked 64 KiB array with
// no memory-mapped regions. It is zeroed on construction.
type Ram struct {
	data [addressSpace]byte
}

// NewRam returns a zeroed 64 KiB address space.
func NewRam() *Ram {
	return &Ram{}
}

// ReadByte reads a single byte at addr.
func (r *Ram) ReadByte(addr uint16) byte {
	return r.data[addr]
}

// ReadShort reads a little-endian 16-bit value starting at addr. If addr is
// 0xffff the high byte is read from 0x0000, matching how the real address
// bus wraps rather than panicking.
func (r *Ram) ReadShort(addr uint16) uint16 {
	lo := r.data[addr]
	hi := r.data[addr+1]
	return uint16(hi)<<8 | uint16(lo)
}

// WriteByte writes a single byte at addr.
func (r *Ram) WriteByte(addr uint16, value byte) {
	r.data[addr] = value
}

// WriteShort writes a little-endian 16-bit value starting at addr, wrapping
// the high byte the same way ReadShort does.
func (r *Ram) WriteShort(addr uint16, value uint16) {
	r.data[addr] = byte(value & 0xff)
	r.data[addr+1] = byte(value >> 8)
}

// vectorAreaStart is the first byte of the reset/NMI/IRQ vector table
// (0xfffa, the NMI vector). Load refuses to place any byte of an
// executable at or past this address, so a loaded image can never
// overlap or clobber the vector table.
const vectorAreaStart = 0xfffa

// Load copies executable into the address space starting at addr. It
// refuses programs larger than maxExecutableSize, and refuses any load
// whose bytes would reach into the vector area at 0xfffa-0xffff.
func (r *Ram) Load(executable []byte, addr uint16) error {
	if len(executable) > maxExecutableSize {
		return errors.Wrapf(ErrLoadOversize, "size %d exceeds %d", len(executable), maxExecutableSize)
	}
	start := int(addr)
	end := start + len(executable)
	if end > vectorAreaStart {
		return errors.Wrapf(ErrLoadOversize, "load at 0x%04x of length %d overlaps the vector area at 0x%04x", addr, len(executable), vectorAreaStart)
	}
	copy(r.data[start:end], executable)
	return nil
}

// LoadFromFile reads the named file and loads its contents at addr.
func (r *Ram) LoadFromFile(name string, addr uint16) error {
	content, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrap(ErrLoadIO, err.Error())
	}
	return r.Load(content, addr)
}
