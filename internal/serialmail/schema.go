// Package serialmail decodes the instrument's FlatBuffers wire messages.
//
// The accessor and builder code below follows the layout flatc generates for
// SerialMail.fbs so the byte format stays compatible with the firmware's
// encoder. Use Decode to go from a frame payload to a plain Mail value.
package serialmail

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

// Value is a fixed 3-byte struct holding one raw ADC sample.
type Value struct {
	_tab flatbuffers.Struct
}

func (rcv *Value) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *Value) Table() flatbuffers.Table {
	return rcv._tab.Table
}

func (rcv *Value) Data0() byte {
	return rcv._tab.GetByte(rcv._tab.Pos + flatbuffers.UOffsetT(0))
}

func (rcv *Value) Data1() byte {
	return rcv._tab.GetByte(rcv._tab.Pos + flatbuffers.UOffsetT(1))
}

func (rcv *Value) Data2() byte {
	return rcv._tab.GetByte(rcv._tab.Pos + flatbuffers.UOffsetT(2))
}

func CreateValue(builder *flatbuffers.Builder, data0 byte, data1 byte, data2 byte) flatbuffers.UOffsetT {
	builder.Prep(1, 3)
	builder.PrependByte(data2)
	builder.PrependByte(data1)
	builder.PrependByte(data0)
	return builder.Offset()
}

// SerialMail is the root table: two vectors of Value (one per analog
// channel) and the sending node's identifier.
type SerialMail struct {
	_tab flatbuffers.Table
}

func GetRootAsSerialMail(buf []byte, offset flatbuffers.UOffsetT) *SerialMail {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &SerialMail{}
	x.Init(buf, n+offset)
	return x
}

func (rcv *SerialMail) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *SerialMail) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *SerialMail) Ch0(obj *Value, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 3
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *SerialMail) Ch0Length() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *SerialMail) Ch1(obj *Value, j int) bool {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		x := rcv._tab.Vector(o)
		x += flatbuffers.UOffsetT(j) * 3
		obj.Init(rcv._tab.Bytes, x)
		return true
	}
	return false
}

func (rcv *SerialMail) Ch1Length() int {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.VectorLen(o)
	}
	return 0
}

func (rcv *SerialMail) Node() byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return rcv._tab.GetByte(o + rcv._tab.Pos)
	}
	return 0
}

func SerialMailStart(builder *flatbuffers.Builder) {
	builder.StartObject(3)
}

func SerialMailAddCh0(builder *flatbuffers.Builder, ch0 flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(0, ch0, 0)
}

func SerialMailStartCh0Vector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(3, numElems, 1)
}

func SerialMailAddCh1(builder *flatbuffers.Builder, ch1 flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(1, ch1, 0)
}

func SerialMailStartCh1Vector(builder *flatbuffers.Builder, numElems int) flatbuffers.UOffsetT {
	return builder.StartVector(3, numElems, 1)
}

func SerialMailAddNode(builder *flatbuffers.Builder, node byte) {
	builder.PrependByteSlot(2, node, 0)
}

func SerialMailEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
