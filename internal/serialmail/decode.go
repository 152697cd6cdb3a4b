package serialmail

import (
	"errors"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/daqforge/serialmail-logger/internal/adc"
)

var ErrShortBuffer = errors.New("serialmail: buffer too short for a root table")

// Mail is the decoded form of one SerialMail message, detached from the
// underlying buffer so the payload can be discarded after decoding.
type Mail struct {
	Node byte
	Ch0  []adc.Sample
	Ch1  []adc.Sample
}

// Decode parses a frame payload into a Mail. FlatBuffers accessors index
// into the buffer without bounds protection, so a corrupt payload surfaces
// as a panic; Decode converts that into an error. Decode failures are
// recoverable by the caller: drop the frame and keep reading.
func Decode(payload []byte) (mail *Mail, err error) {
	defer func() {
		if r := recover(); r != nil {
			mail = nil
			err = fmt.Errorf("serialmail: malformed buffer: %v", r)
		}
	}()

	if len(payload) < flatbuffers.SizeUOffsetT {
		return nil, ErrShortBuffer
	}
	root := flatbuffers.GetUOffsetT(payload)
	if int(root) >= len(payload) {
		return nil, fmt.Errorf("serialmail: root offset %d outside %d-byte buffer", root, len(payload))
	}

	msg := GetRootAsSerialMail(payload, 0)
	return &Mail{
		Node: msg.Node(),
		Ch0:  channelSamples(msg.Ch0, msg.Ch0Length()),
		Ch1:  channelSamples(msg.Ch1, msg.Ch1Length()),
	}, nil
}

func channelSamples(at func(*Value, int) bool, n int) []adc.Sample {
	samples := make([]adc.Sample, 0, n)
	var v Value
	for i := 0; i < n; i++ {
		if !at(&v, i) {
			break
		}
		samples = append(samples, adc.Sample{
			Data0: v.Data0(),
			Data1: v.Data1(),
			Data2: v.Data2(),
		})
	}
	return samples
}
