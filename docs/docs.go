// Package docs registra la especificación OpenAPI de la API en swag.
package docs

import (
	_ "embed"

	"github.com/swaggo/swag"
)

// FilePath ruta de swagger.json relativa a la raíz del repo (la que carga la UI en /docs).
const FilePath = "./docs/swagger.json"

//go:embed swagger.json
var docTemplate string

// SwaggerInfo metadatos de la especificación.
var SwaggerInfo = &swag.Spec{
	Version:          "2.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Inventario Stock API",
	Description:      "Libro de movimientos de stock.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
