package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/l-n-s/QuickShare/coordinator"
	"github.com/l-n-s/QuickShare/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

// QRCodeController renders share URLs as QR codes for the GUI.
type QRCodeController struct {
	coord *coordinator.Coordinator
}

func NewQRCodeController(coord *coordinator.Coordinator) *QRCodeController {
	return &QRCodeController{coord: coord}
}

// HandleCreateQRCode returns a PNG QR code image. With no data parameter it
// encodes the session's current public base address.
// GET /api/self/v1/create-qr-code?size=200x200&data=<url-encoded-content>
func (ctrl *QRCodeController) HandleCreateQRCode(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		data = ctrl.coord.Address()
	}
	if data == "" {
		c.JSON(http.StatusConflict, tool.FastReturnError("tunnel is not active and no data given"))
		return
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// parseSize parses size from "200x200" or "200" and returns the pixel dimension.
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
