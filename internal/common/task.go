package common

// Task pide al Worker que particione un archivo de entrada. Cada línea es
// "clave<Separator>valor"; si no hay separador la línea entera es la clave.
type Task struct {
	TaskID        string `json:"task_id"`
	InputPath     string `json:"input_path"`
	OutputPath    string `json:"output_path,omitempty"` // Base de los archivos de salida
	OutputType    string `json:"output_type,omitempty"` // SHUFFLE o LOCAL_SPILL
	NumPartitions int    `json:"partitions"`
	Separator     string `json:"separator,omitempty"`
}
