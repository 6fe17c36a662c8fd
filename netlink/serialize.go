package netlink

import (
	nl "github.com/mdlayher/netlink"
)

// writeBuffer is the counterpart of readBuffer. It's backed by a slice
// allocated with the exact size of the structure being encoded.
type writeBuffer struct {
	Bytes []byte
	pos   int
}

func newWriteBuffer(size int) *writeBuffer {
	return &writeBuffer{Bytes: make([]byte, size)}
}

func (b *writeBuffer) Write(c byte) {
	b.Bytes[b.pos] = c
	b.pos++
}

func (b *writeBuffer) Next(n int) []byte {
	s := b.Bytes[b.pos : b.pos+n]
	b.pos += n
	return s
}

func (b *writeBuffer) header(h nl.Header) {
	native.PutUint32(b.Next(4), h.Length)
	native.PutUint16(b.Next(2), uint16(h.Type))
	native.PutUint16(b.Next(2), uint16(h.Flags))
	native.PutUint32(b.Next(4), h.Sequence)
	native.PutUint32(b.Next(4), h.PID)
}

func (b *writeBuffer) sockID(id SockID) {
	networkOrder.PutUint16(b.Next(2), id.SPort)
	networkOrder.PutUint16(b.Next(2), id.DPort)
	for _, w := range id.Src {
		networkOrder.PutUint32(b.Next(4), w)
	}
	for _, w := range id.Dst {
		networkOrder.PutUint32(b.Next(4), w)
	}
	native.PutUint32(b.Next(4), id.If)
	native.PutUint32(b.Next(4), id.Cookie[0])
	native.PutUint32(b.Next(4), id.Cookie[1])
}

// EncodeHeader encodes h as a struct nlmsghdr.
func EncodeHeader(h nl.Header) []byte {
	wb := newWriteBuffer(sizeofHeader)
	wb.header(h)
	return wb.Bytes
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (id SockID) MarshalBinary() ([]byte, error) {
	wb := newWriteBuffer(sizeofSocketID)
	wb.sockID(id)
	return wb.Bytes, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e ErrorFrame) MarshalBinary() ([]byte, error) {
	wb := newWriteBuffer(sizeofErrorFrame)
	native.PutUint32(wb.Next(4), uint32(e.Code))
	wb.header(e.Header)
	return wb.Bytes, nil
}

// MarshalBinary implements encoding.BinaryMarshaler. The header is written
// as is: NewDiagRequest already fills in the right length.
func (r DiagRequest) MarshalBinary() ([]byte, error) {
	wb := newWriteBuffer(sizeofDiagRequest)
	wb.header(r.Header)
	wb.Write(r.Family)
	wb.Write(r.SrcLen)
	wb.Write(r.DstLen)
	wb.Write(r.Ext)
	wb.sockID(r.ID)
	native.PutUint32(wb.Next(4), r.States)
	native.PutUint32(wb.Next(4), r.DBs)
	return wb.Bytes, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r DiagRequestV2) MarshalBinary() ([]byte, error) {
	wb := newWriteBuffer(sizeofDiagRequestV2)
	wb.header(r.Header)
	wb.Write(r.Family)
	wb.Write(r.Protocol)
	wb.Write(r.Ext)
	wb.Write(r.Pad)
	native.PutUint32(wb.Next(4), r.States)
	wb.sockID(r.ID)
	return wb.Bytes, nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r DiagResponse) MarshalBinary() ([]byte, error) {
	wb := newWriteBuffer(sizeofSocket)
	wb.Write(r.Family)
	wb.Write(r.State)
	wb.Write(r.Timer)
	wb.Write(r.Retrans)
	wb.sockID(r.ID)
	native.PutUint32(wb.Next(4), r.Expires)
	native.PutUint32(wb.Next(4), r.RQueue)
	native.PutUint32(wb.Next(4), r.WQueue)
	native.PutUint32(wb.Next(4), r.UID)
	native.PutUint32(wb.Next(4), r.INode)
	return wb.Bytes, nil
}
