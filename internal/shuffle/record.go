// Package shuffle escribe, lee y agrupa los registros intermedios del
// shuffle. Las claves son bytearray.IntByteArray: la particion viaja dentro
// de la clave y la igualdad/hash de la clave decide la agrupacion.
package shuffle

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"crunch-spark/internal/bytearray"
)

// maxFrameSize acota cada campo de un frame para no reservar memoria a ciegas
// con un stream corrupto.
const maxFrameSize = 64 << 20

var ErrCorruptFrame = errors.New("shuffle: frame corrupto")

// Record es un par clave/valor del shuffle.
type Record struct {
	Key   bytearray.IntByteArray
	Value bytearray.ByteArray
}

func NewRecord(partition int32, key, value []byte) Record {
	return Record{Key: bytearray.NewIntByteArray(partition, key), Value: bytearray.New(value)}
}

// NewKeyedRecord calcula la particion a partir de los bytes de la clave.
func NewKeyedRecord(key, value []byte, numPartitions int) Record {
	return NewRecord(PartitionFor(key, numPartitions), key, value)
}

// size aproxima la memoria que ocupa el registro.
func (r Record) size() int64 {
	return int64(4 + r.Key.Len() + r.Value.Len())
}

// WriteRecord escribe un frame: uvarint(len(clave)) clave uvarint(len(valor)) valor.
// La clave va en su formato binario (particion big-endian + contenido).
func WriteRecord(w io.Writer, rec Record) (int, error) {
	key, err := rec.Key.MarshalBinary()
	if err != nil {
		return 0, err
	}
	buf := make([]byte, 0, 2*binary.MaxVarintLen64+len(key)+rec.Value.Len())
	buf = binary.AppendUvarint(buf, uint64(len(key)))
	buf = append(buf, key...)
	buf = binary.AppendUvarint(buf, uint64(rec.Value.Len()))
	buf = append(buf, rec.Value.String()...)
	return w.Write(buf)
}

// Reader lee frames escritos con WriteRecord.
type Reader struct {
	br *bufio.Reader
}

func NewReader(r io.Reader) *Reader {
	if br, ok := r.(*bufio.Reader); ok {
		return &Reader{br: br}
	}
	return &Reader{br: bufio.NewReader(r)}
}

// Next devuelve io.EOF solo cuando el stream termina entre dos frames.
func (r *Reader) Next() (Record, error) {
	key, err := r.field()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, io.EOF
		}
		return Record{}, err
	}
	value, err := r.field()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Record{}, fmt.Errorf("%w: valor ausente", ErrCorruptFrame)
		}
		return Record{}, err
	}

	var rec Record
	if err := rec.Key.UnmarshalBinary(key); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
	}
	rec.Value = bytearray.New(value)
	return rec, nil
}

// ForEach recorre el stream hasta el final.
func (r *Reader) ForEach(fn func(Record) error) error {
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

func (r *Reader) field() ([]byte, error) {
	n, err := binary.ReadUvarint(r.br)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: longitud ilegible: %v", ErrCorruptFrame, err)
	}
	if n > maxFrameSize {
		return nil, fmt.Errorf("%w: campo de %d bytes", ErrCorruptFrame, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptFrame, err)
	}
	return buf, nil
}
