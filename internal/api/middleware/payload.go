package middleware

import (
	"fmt"
	"net/http"

	"github.com/emicklei/go-restful/v3"
)

// MaxPayload rejects requests whose declared Content-Length exceeds limit
// with 413, before the body is read and before any analysis runs.
func MaxPayload(limit int64) restful.FilterFunction {
	return func(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
		if req.Request.ContentLength > limit {
			HandleError(resp,
				fmt.Errorf("request payload size exceeds the maximum limit of %d bytes", limit),
				http.StatusRequestEntityTooLarge)
			return
		}

		chain.ProcessFilter(req, resp)
	}
}
