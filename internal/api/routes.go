package api

import (
	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	"github.com/emicklei/go-restful/v3"
	"github.com/modguard/promptgate/internal/api/middleware"
	"github.com/modguard/promptgate/internal/config"
	"github.com/modguard/promptgate/internal/models"
)

func RegisterRoutes(container *restful.Container, handler *Handler, maxPayloadSize int64) {
	ws := new(restful.WebService)

	ws.
		Path("/").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.
		Route(ws.GET("health").
			To(handler.Health).
			Doc("Health check").
			Metadata(restfulspec.KeyOpenAPITags, []string{"health"}).
			Writes(HealthResponse{}).
			Returns(200, "OK", HealthResponse{}))

	ws.
		Route(ws.POST("check_prompt").
			Filter(middleware.MaxPayload(maxPayloadSize)).
			To(handler.CheckPrompt).
			Doc("Screen a prompt and return the moderation verdict").
			Metadata(restfulspec.KeyOpenAPITags, []string{"moderation"}).
			Reads(models.PromptRequest{}).
			Writes(models.AnalysisResult{}).
			Returns(200, "OK", models.AnalysisResult{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}).
			Returns(413, "Payload Too Large", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("get_logs").
			To(handler.GetLogs).
			Doc("Retrieve all audit log records, newest first").
			Metadata(restfulspec.KeyOpenAPITags, []string{"audit"}).
			Writes(LogsResponse{}).
			Returns(200, "OK", LogsResponse{}))

	ws.
		Route(ws.POST("clear_logs").
			To(handler.ClearLogs).
			Doc("Delete all audit log records").
			Metadata(restfulspec.KeyOpenAPITags, []string{"audit"}).
			Writes(MessageResponse{}).
			Returns(200, "OK", MessageResponse{}).
			Returns(500, "Internal Server Error", middleware.ErrorResponse{}))

	ws.
		Route(ws.POST("update_mode").
			To(handler.UpdateMode).
			Doc("Update the compliance mode (advisory only)").
			Metadata(restfulspec.KeyOpenAPITags, []string{"settings"}).
			Reads(models.ModeUpdate{}).
			Writes(MessageResponse{}).
			Returns(200, "OK", MessageResponse{}).
			Returns(400, "Bad Request", middleware.ErrorResponse{}))

	ws.
		Route(ws.GET("get_settings").
			To(handler.GetSettings).
			Doc("Retrieve the active moderation settings").
			Metadata(restfulspec.KeyOpenAPITags, []string{"settings"}).
			Writes(config.Settings{}).
			Returns(200, "OK", config.Settings{}))

	ws.
		Route(ws.GET("").
			To(handler.Index).
			Produces("text/html").
			Doc("Serve the operator front-end"))

	container.Add(ws)
}
