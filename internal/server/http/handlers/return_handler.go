package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wdmlabs/bmlconnect/internal/config"
	"github.com/wdmlabs/bmlconnect/internal/server/http/dto"
)

// ReturnHandler terminates the customer's browser return from the hosted
// payment page.
type ReturnHandler struct {
	facade ReturnFacade
	cfg    *config.Config
}

// NewReturnHandler constructs ReturnHandler.
func NewReturnHandler(facade ReturnFacade, cfg *config.Config) *ReturnHandler {
	return &ReturnHandler{facade: facade, cfg: cfg}
}

// Handle resolves the return visit into a redirect. A malformed order id is
// treated exactly like an unknown order so the response shape does not leak
// which ids exist. With redirects disabled the decision is served as JSON.
func (h *ReturnHandler) Handle(c *gin.Context) {
	orderID, _ := strconv.ParseInt(c.Query("order_id"), 10, 64)
	orderKey := c.Query("order_key")

	outcome := h.facade.HandleReturn(c.Request.Context(), orderID, orderKey)

	if h.cfg.DisableRedirect {
		c.JSON(http.StatusOK, dto.ReturnDiagnostic{
			RedirectURL: outcome.RedirectURL,
			OrderStatus: string(outcome.OrderStatus),
			State:       string(outcome.State),
			Notice:      outcome.Notice,
		})
		return
	}

	c.Redirect(http.StatusFound, withNotice(outcome.RedirectURL, outcome.Notice))
}

func withNotice(target, notice string) string {
	if notice == "" {
		return target
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return target
	}
	query := parsed.Query()
	query.Set("bml_notice", notice)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
