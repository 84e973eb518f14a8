// Package bytearray define las claves binarias que viajan por el shuffle.
//
// Los valores son inmutables: el contenido se copia al construir y se guarda
// como string, asi que ByteArray e IntByteArray son comparables con == y se
// pueden usar directamente como clave de un map.
package bytearray

// ByteArray envuelve una secuencia de bytes inmutable.
type ByteArray struct {
	b string
}

// New copia b. Acepta nil y slices vacios.
func New(b []byte) ByteArray {
	return ByteArray{b: string(b)}
}

// FromString evita la copia extra cuando el origen ya es un string.
func FromString(s string) ByteArray {
	return ByteArray{b: s}
}

func (a ByteArray) Len() int {
	return len(a.b)
}

// Bytes devuelve una copia para que nadie mute el contenido.
func (a ByteArray) Bytes() []byte {
	return []byte(a.b)
}

func (a ByteArray) String() string {
	return a.b
}

// Equal compara el contenido byte a byte.
func (a ByteArray) Equal(other ByteArray) bool {
	return a.b == other.b
}

// HashCode es compatible con Arrays.hashCode(byte[]) de la JVM: bytes con
// signo, semilla 1 y multiplicador 31, con desborde de 32 bits.
func (a ByteArray) HashCode() int32 {
	h := int32(1)
	for i := 0; i < len(a.b); i++ {
		h = hashMultiplier*h + int32(int8(a.b[i]))
	}
	return h
}
