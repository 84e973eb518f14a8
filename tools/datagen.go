package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	os.MkdirAll("data/inputs", 0755)

	// Pares clave<TAB>valor con claves repetidas para el shuffle
	fmt.Println("Generando data/inputs/wordcount.tsv ...")
	var sb strings.Builder
	baseText := "hola mundo sistema distribuido go spark flink datos nube proceso"
	for i := 0; i < 2000; i++ {
		for _, w := range strings.Fields(baseText) {
			fmt.Fprintf(&sb, "%s\t%d\n", w, i)
		}
	}
	if err := os.WriteFile("data/inputs/wordcount.tsv", []byte(sb.String()), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error escribiendo datos: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(" Datos generados exitosamente.")
}
