package shuffle

import (
	"crunch-spark/internal/bytearray"
	"crunch-spark/internal/common"
)

// PartitionFor asigna una clave a un bucket igual que el HashPartitioner de
// Spark: hash de la clave modulo N, siempre no negativo.
func PartitionFor(key []byte, numPartitions int) int32 {
	return bucket(bytearray.New(key).HashCode(), numPartitions)
}

func bucket(h int32, numPartitions int) int32 {
	if numPartitions <= 0 {
		numPartitions = common.DefaultPartitions
	}
	mod := int64(h) % int64(numPartitions)
	if mod < 0 {
		mod += int64(numPartitions)
	}
	return int32(mod)
}
