package gaugelink

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// PacketSize is the exact number of bytes an encoded Packet occupies on the
// wire. There is no header, magic number or version field.
var PacketSize = binary.Size(Packet{})

var ErrBadLength = errors.New("telemetry packet length mismatch")

func (p *Packet) Marshal() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, PacketSize))
	if err := binary.Write(buf, binary.LittleEndian, p); err != nil {
		return nil, errors.Wrap(err, "unable to encode telemetry packet")
	}
	return buf.Bytes(), nil
}

// UnmarshalPacket decodes b into a Packet. Buffers that are not exactly
// PacketSize bytes are rejected outright; there is no partial decode.
func UnmarshalPacket(b []byte) (*Packet, error) {
	if len(b) != PacketSize {
		return nil, errors.Wrapf(ErrBadLength, "got %v bytes, want %v", len(b), PacketSize)
	}
	p := &Packet{}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, p); err != nil {
		return nil, errors.Wrap(err, "unable to decode telemetry packet")
	}
	return p, nil
}
