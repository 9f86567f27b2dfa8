package launch

import (
	"net/http"
	"strings"

	"github.com/ahwlsqja/lti-tool-provider/internal/common/errors"
	"github.com/ahwlsqja/lti-tool-provider/internal/common/middleware"
	"github.com/ahwlsqja/lti-tool-provider/pkg/oauth1"
	"github.com/gin-gonic/gin"
)

// Options controls how the handler rebuilds the URL the consumer signed.
type Options struct {
	// PublicBaseURL replaces scheme and host of the request, e.g.
	// "https://tool.example.edu". Empty means use the request itself.
	PublicBaseURL string
	// TrustForwardedProto takes the scheme from X-Forwarded-Proto.
	TrustForwardedProto bool
}

// Handler handles LTI launch requests
type Handler struct {
	service *Service
	opts    Options
}

// NewHandler creates a new launch handler
func NewHandler(service *Service, opts Options) *Handler {
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	return &Handler{service: service, opts: opts}
}

// RegisterRoutes registers the launch endpoint for POST and GET at path.
func (h *Handler) RegisterRoutes(r gin.IRoutes, path string, handlers ...gin.HandlerFunc) {
	chain := make([]gin.HandlerFunc, 0, len(handlers)+1)
	chain = append(chain, handlers...)
	chain = append(chain, h.Launch)
	r.POST(path, chain...)
	r.GET(path, chain...)
}

// Launch godoc
// @Summary Authenticate an LTI launch
// @Description Verifies the OAuth 1.0a HMAC-SHA1 signature of a basic LTI launch, rejects replayed nonces and stale timestamps, and returns the launch summary
// @Tags lti
// @Accept x-www-form-urlencoded
// @Produce json
// @Param oauth_consumer_key formData string true "Consumer key"
// @Param oauth_signature_method formData string true "Signature method (HMAC-SHA1)"
// @Param oauth_timestamp formData string true "Unix timestamp"
// @Param oauth_nonce formData string true "Nonce"
// @Param oauth_version formData string false "OAuth version"
// @Param oauth_signature formData string true "Signature"
// @Success 200 {object} middleware.SuccessResponse{data=LaunchResponse} "Launch accepted"
// @Failure 400 {object} middleware.ErrorResponse "Malformed nonce or timestamp"
// @Failure 401 {object} middleware.ErrorResponse "Bad signature, replayed nonce or expired timestamp"
// @Failure 403 {object} middleware.ErrorResponse "Unknown consumer"
// @Failure 429 {object} middleware.ErrorResponse "Too many requests"
// @Failure 503 {object} middleware.ErrorResponse "Nonce store unavailable"
// @Router /lti/launch [post]
func (h *Handler) Launch(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		middleware.RespondError(c, errors.InvalidInput("Malformed launch parameters"))
		return
	}
	params := c.Request.Form

	if key := params.Get(oauth1.ParamConsumerKey); key != "" {
		c.Set(middleware.ConsumerKeyKey, key)
	}

	launch, err := h.service.Validate(c.Request.Context(), c.Request.Method, h.requestURL(c.Request), params)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	middleware.RespondOK(c, ToLaunchResponse(launch))
}

// requestURL rebuilds the signed URL: scheme, host and path, no query.
func (h *Handler) requestURL(r *http.Request) string {
	path := r.URL.EscapedPath()
	if h.opts.PublicBaseURL != "" {
		return h.opts.PublicBaseURL + path
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if h.opts.TrustForwardedProto {
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
		}
	}
	return scheme + "://" + r.Host + path
}
