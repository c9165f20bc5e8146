package cmd

import (
	"net"

	"github.com/vibast-solutions/ms-go-apikeys/app/controller"
	apikeysgrpc "github.com/vibast-solutions/ms-go-apikeys/app/grpc"
	"github.com/vibast-solutions/ms-go-apikeys/app/metrics"
	"github.com/vibast-solutions/ms-go-apikeys/app/middleware"
	"github.com/vibast-solutions/ms-go-apikeys/app/service"
	"github.com/vibast-solutions/ms-go-apikeys/config"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and gRPC servers",
	Long:  `Start both HTTP (Echo) and gRPC servers for the API key service.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	store, closeStore, err := newStore(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to open key store")
	}
	defer closeStore()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New(registry)

	apiKeyService := service.NewAPIKeyService(store, recorder)
	validationService := service.NewValidationService(store, recorder)

	go startGRPCServer(cfg, validationService)

	startHTTPServer(cfg, newHTTPServer(apiKeyService, validationService, registry))
}

func newHTTPServer(apiKeyService service.APIKeyService, validationService service.ValidationService, gatherer prometheus.Gatherer) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			if keyID, ok := c.Get(middleware.ContextKeyAPIKeyID).(string); ok {
				fields["api_key_id"] = keyID
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	apiKeyController := controller.NewAPIKeyController(apiKeyService)
	protectedController := controller.NewProtectedController(validationService)
	apiKeyMiddleware := middleware.NewAPIKeyMiddleware(validationService)

	keys := e.Group("/api-keys")
	keys.GET("", apiKeyController.List)
	keys.POST("", apiKeyController.Create)
	keys.GET("/:id", apiKeyController.Get)
	keys.PUT("/:id", apiKeyController.Update)
	keys.DELETE("/:id", apiKeyController.Delete)

	e.POST("/protected", protectedController.Validate)
	e.GET("/protected", protectedController.Access, apiKeyMiddleware.RequireAPIKey)

	e.GET("/health", protectedController.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	return e
}

func startHTTPServer(cfg *config.Config, e *echo.Echo) {
	defer e.Close()

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}

func startGRPCServer(cfg *config.Config, validationService service.ValidationService) {
	grpcAddr := net.JoinHostPort(cfg.GRPCHost, cfg.GRPCPort)
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to listen on gRPC port")
	}

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(
		apikeysgrpc.APIKeyUnaryInterceptor(validationService, apikeysgrpc.AccessFullMethod),
	))
	defer grpcServer.GracefulStop()
	apikeysgrpc.RegisterKeyValidationServer(grpcServer, apikeysgrpc.NewAPIKeyServer(validationService))

	logrus.WithField("addr", grpcAddr).Info("Starting gRPC server")
	if err := grpcServer.Serve(lis); err != nil {
		logrus.WithError(err).Fatal("Failed to start gRPC server")
	}
}
