// Package router wires the SBS handlers into the HTTP server.
package router

import (
	"fmt"

	"github.com/kart-io/logger"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	docs "github.com/kart-io/sbs-x/api/swagger/sbs"
	"github.com/kart-io/sbs-x/internal/model"
	"github.com/kart-io/sbs-x/internal/sbs-api/handler"
	"github.com/kart-io/sbs-x/pkg/infra/server"
)

// BasePath prefixes every SBS route.
const BasePath = "/api/sbs"

// Register registers the SBS routes on the manager's HTTP server.
func Register(mgr *server.Manager, sbs *handler.SBSHandler, health *handler.HealthHandler) error {
	logger.Info("Registering SBS routes...")

	engine := mgr.Engine()
	if engine == nil {
		return fmt.Errorf("http server is not configured")
	}

	engine.GET("/healthz", health.Healthz)
	engine.GET("/version", health.Version)

	// Swagger UI at /swagger/index.html
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.InstanceName(docs.SwaggerInfosbs.InstanceName())))

	api := engine.Group(BasePath)
	{
		api.GET("/volumes", sbs.ListVolumes)
		api.GET("/volumes/:volume", sbs.GetVolume)
		api.GET("/volumes/:volume/tags", sbs.GetVolumeTags)

		api.GET("/search/character/:name", sbs.Search(model.SearchCharacter, "name"))
		api.GET("/search/tag/:tag", sbs.Search(model.SearchTag, "tag"))
		api.GET("/search/text/:term", sbs.Search(model.SearchText, "term"))

		api.GET("/tags", sbs.ListTags)
		api.GET("/characters", sbs.ListCharacters)
	}

	return nil
}
