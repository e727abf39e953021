package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// DocumentURL is where the router serves the embedded OpenAPI document.
const DocumentURL = "/openapi.yml"

func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(DocumentURL),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
	)
}
