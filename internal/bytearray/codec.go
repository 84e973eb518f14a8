package bytearray

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrShortBuffer indica un IntByteArray binario sin los 4 bytes de particion.
var ErrShortBuffer = errors.New("bytearray: buffer demasiado corto para la particion")

const partitionSize = 4

func (a ByteArray) MarshalBinary() ([]byte, error) {
	return a.Bytes(), nil
}

func (a *ByteArray) UnmarshalBinary(data []byte) error {
	*a = New(data)
	return nil
}

// MarshalJSON codifica el contenido en base64, como hace encoding/json con []byte.
func (a ByteArray) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Bytes())
}

func (a *ByteArray) UnmarshalJSON(data []byte) error {
	var b []byte
	if err := json.Unmarshal(data, &b); err != nil {
		return fmt.Errorf("bytearray: contenido invalido: %w", err)
	}
	*a = New(b)
	return nil
}

// MarshalBinary escribe la particion en big-endian seguida del contenido.
func (a IntByteArray) MarshalBinary() ([]byte, error) {
	return a.AppendBinary(make([]byte, 0, partitionSize+a.Len()))
}

// AppendBinary es MarshalBinary sobre un buffer existente.
func (a IntByteArray) AppendBinary(buf []byte) ([]byte, error) {
	buf = binary.BigEndian.AppendUint32(buf, uint32(a.partition))
	return append(buf, a.content.b...), nil
}

func (a *IntByteArray) UnmarshalBinary(data []byte) error {
	if len(data) < partitionSize {
		return ErrShortBuffer
	}
	*a = NewIntByteArray(int32(binary.BigEndian.Uint32(data)), data[partitionSize:])
	return nil
}

type intByteArrayJSON struct {
	Partition int32     `json:"partition"`
	Content   ByteArray `json:"content"`
}

func (a IntByteArray) MarshalJSON() ([]byte, error) {
	return json.Marshal(intByteArrayJSON{Partition: a.partition, Content: a.content})
}

func (a *IntByteArray) UnmarshalJSON(data []byte) error {
	var v intByteArrayJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("bytearray: int_byte_array invalido: %w", err)
	}
	*a = IntByteArray{partition: v.Partition, content: v.Content}
	return nil
}
