package bytearray

// hashMultiplier es el primo con el que se acumulan los hashes. Cambiarlo
// rompe cualquier estructura persistida que dependa de HashCode.
const hashMultiplier = 31

// IntByteArray es un ByteArray etiquetado con la particion de salida a la que
// pertenece. La particion no se deriva del contenido.
type IntByteArray struct {
	partition int32
	content   ByteArray
}

func NewIntByteArray(partition int32, b []byte) IntByteArray {
	return IntByteArray{partition: partition, content: New(b)}
}

func (a IntByteArray) Partition() int32 {
	return a.partition
}

func (a IntByteArray) Content() ByteArray {
	return a.content
}

func (a IntByteArray) Len() int {
	return a.content.Len()
}

func (a IntByteArray) Bytes() []byte {
	return a.content.Bytes()
}

func (a IntByteArray) String() string {
	return a.content.String()
}

// Equal exige la misma particion y el mismo contenido.
func (a IntByteArray) Equal(other IntByteArray) bool {
	return a.partition == other.partition && a.content.Equal(other.content)
}

// HashCode = 31 * hash(contenido) + particion.
func (a IntByteArray) HashCode() int32 {
	return Combine(a.content.HashCode(), a.partition)
}

// Combine acumula el siguiente campo sobre un hash parcial.
func Combine(h, next int32) int32 {
	return hashMultiplier*h + next
}

// Equal compara dos valores cualesquiera del paquete. Solo son iguales si
// tienen el mismo tipo concreto: un ByteArray nunca es igual a un
// IntByteArray aunque los bytes coincidan. Los punteros se comparan por el
// valor al que apuntan; un puntero nil solo es igual a otro nil del mismo tipo.
func Equal(a, b any) bool {
	switch x := a.(type) {
	case *ByteArray:
		y, ok := b.(*ByteArray)
		if !ok || x == nil || y == nil {
			return ok && x == nil && y == nil
		}
		return x.Equal(*y)
	case *IntByteArray:
		y, ok := b.(*IntByteArray)
		if !ok || x == nil || y == nil {
			return ok && x == nil && y == nil
		}
		return x.Equal(*y)
	case ByteArray:
		y, ok := b.(ByteArray)
		return ok && x.Equal(y)
	case IntByteArray:
		y, ok := b.(IntByteArray)
		return ok && x.Equal(y)
	default:
		return false
	}
}
