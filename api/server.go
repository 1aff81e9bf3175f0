package api

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/l-n-s/QuickShare/api/controllers"
	"github.com/l-n-s/QuickShare/api/middlewares"
	"github.com/l-n-s/QuickShare/api/notifyhub"
	"github.com/l-n-s/QuickShare/coordinator"
	"github.com/l-n-s/QuickShare/tool"
)

// Server is the localhost control API consumed by the GUI. It never faces
// the network: it binds loopback only and every route sits behind the
// OnlyAllowLocal middleware.
type Server struct {
	port   int
	coord  *coordinator.Coordinator
	hub    *notifyhub.Hub
	engine *gin.Engine
	server *http.Server
	mu     sync.RWMutex
}

// NewServer creates the control API server.
func NewServer(port int, coord *coordinator.Coordinator, hub *notifyhub.Hub) *Server {
	return &Server{
		port:  port,
		coord: coord,
		hub:   hub,
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.Default()
	engine.Use(gin.Recovery())

	sessionCtrl := controllers.NewSessionController(s.coord)
	qrCtrl := controllers.NewQRCodeController(s.coord)

	self := engine.Group("/api/self/v1", middlewares.OnlyAllowLocal)
	{
		self.GET("/status", sessionCtrl.HandleStatus)                // Session snapshot for the GUI
		self.POST("/start-sharing", sessionCtrl.HandleStartSharing)  // Start file server + tunnel
		self.POST("/stop-sharing", sessionCtrl.HandleStopSharing)    // Clear exposures + close tunnel
		self.POST("/add-files", sessionCtrl.HandleAddFiles)          // Expose paths, get public URLs
		self.GET("/create-qr-code", qrCtrl.HandleCreateQRCode)       // QR code PNG of the share URL
		self.GET("/notify-ws", notifyhub.HandleNotifyWS(s.hub))      // Session event stream
	}

	return engine
}

// Start starts the control API server on loopback.
func (s *Server) Start() error {
	engine := s.setupRoutes()

	s.mu.Lock()
	s.engine = engine
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: engine,
	}
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting control API on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}
