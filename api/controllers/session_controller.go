package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/l-n-s/QuickShare/coordinator"
	"github.com/l-n-s/QuickShare/tool"
	"github.com/l-n-s/QuickShare/types"
)

// SessionController exposes the share-session intents to the local GUI. It
// only forwards to the coordinator; completion of the asynchronous parts is
// delivered separately over the notify websocket.
type SessionController struct {
	coord *coordinator.Coordinator
}

func NewSessionController(coord *coordinator.Coordinator) *SessionController {
	return &SessionController{coord: coord}
}

// HandleStatus returns the current session snapshot.
// GET /api/self/v1/status
func (ctrl *SessionController) HandleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(ctrl.coord.Status()))
}

// HandleStartSharing requests a tunnel open (starting the file server first
// if needed). The GUI should render "busy" until a tunnelReady or
// tunnelFailed event arrives.
// POST /api/self/v1/start-sharing
func (ctrl *SessionController) HandleStartSharing(c *gin.Context) {
	if err := ctrl.coord.StartSharing(); err != nil {
		if errors.Is(err, coordinator.ErrBusy) {
			c.JSON(http.StatusConflict, tool.FastReturnError(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// HandleStopSharing clears all exposures and requests tunnel teardown.
// POST /api/self/v1/stop-sharing
func (ctrl *SessionController) HandleStopSharing(c *gin.Context) {
	if err := ctrl.coord.StopSharing(); err != nil {
		if errors.Is(err, coordinator.ErrBusy) {
			c.JSON(http.StatusConflict, tool.FastReturnError(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, tool.FastReturnSuccess())
}

// HandleAddFiles exposes the given paths and returns per-path outcomes. A
// failing path (missing file, name conflict) never aborts the batch, so the
// response can mix URLs and errors.
// POST /api/self/v1/add-files
func (ctrl *SessionController) HandleAddFiles(c *gin.Context) {
	var req types.AddFilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("invalid request body: "+err.Error()))
		return
	}
	if len(req.Paths) == 0 {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("no paths given"))
		return
	}
	results := ctrl.coord.AddFiles(req.Paths)
	c.JSON(http.StatusOK, tool.FastReturnSuccessWithData(types.AddFilesResponse{Results: results}))
}
