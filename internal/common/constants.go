package common

// Tipos de salida de una tarea de shuffle
const (
	OutputTypeLocalSpill = "LOCAL_SPILL" // Un solo archivo temporal en el Worker
	OutputTypeShuffle    = "SHUFFLE"     // Salida particionada (N archivos)
)

// Formato de los streams de shuffle servidos por HTTP
const (
	ContentTypeFrames = "application/x-shuffle-frames"
	ContentTypeJSON   = "application/json"
)

// DefaultPartitions se usa cuando la tarea no indica cuantas particiones generar.
const DefaultPartitions = 1
