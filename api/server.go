package api

import (
	"context"
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/epitrend/epitrend-api/logmodule"
	"github.com/epitrend/epitrend-api/schema"
	"github.com/epitrend/epitrend-api/store"
)

var log *logrus.Entry

func init() {
	log = logrus.WithField("prefix", "gin")
}

// Server to run a http server instance
type Server struct {
	// Server instance
	server *http.Server

	// Loaded dataset, derived and immutable after boot; every handler
	// performs pure reads on it.
	records []schema.CaseRecord

	// Optional snapshot store
	mongoStore store.MongoStore
}

// NewServer new instance of server. mongoStore may be nil when the server
// runs purely in-memory.
func NewServer(records []schema.CaseRecord, mongoStore store.MongoStore) *Server {
	return &Server{
		records:    records,
		mongoStore: mongoStore,
	}
}

// Run to run the server
func (s *Server) Run(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.setupRouter(),
	}

	return s.server.ListenAndServe()
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{
		Repanic:         true,
		WaitForDelivery: false,
		Timeout:         10 * time.Second,
	}))

	apiRoute := r.Group("/api")
	apiRoute.Use(logmodule.Ginrus("API"))
	apiRoute.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET"},
		AllowHeaders:     []string{"Origin"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		AllowAllOrigins:  true,
		MaxAge:           12 * time.Hour,
	}))
	{
		apiRoute.GET("/summaries", s.getSummaries)
		apiRoute.GET("/top", s.getTopCountries)
		apiRoute.GET("/series/global", s.getGlobalSeries)
		apiRoute.GET("/series/country", s.getCountrySeries)
		apiRoute.GET("/series/tracked", s.getTrackedSeries)
		apiRoute.GET("/forecast", s.getForecast)
		apiRoute.GET("/charts/series.svg", s.getSeriesChart)
	}

	secretRoute := r.Group("/secret")
	secretRoute.Use(logmodule.Ginrus("Secret"))
	secretRoute.Use(s.apikeyAuthentication(viper.GetString("server.apikey.admin")))
	{
		secretRoute.POST("/snapshot", s.writeSnapshot)
	}

	r.GET("/healthz", s.healthz)
	r.GET("/information", s.information)

	return r
}

// Shutdown to shutdown the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) apikeyAuthentication(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiToken := c.GetHeader("Api-Token")
		if apiToken == "" || apiToken != key {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

func (s *Server) healthz(c *gin.Context) {
	if s.mongoStore != nil {
		if err := s.mongoStore.Ping(); err != nil {
			log.Error(err)
			abortWithEncoding(c, http.StatusInternalServerError, errorInternalServer)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "OK",
		"version": viper.GetString("server.version"),
	})
}

func (s *Server) information(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"information": map[string]interface{}{
			"server": map[string]interface{}{
				"version": viper.GetString("server.version"),
			},
			"records":           len(s.records),
			"tracked_countries": viper.GetStringSlice("countries.tracked"),
			"system_version":    "Epitrend 0.1",
		},
	})
}

func abortWithEncoding(c *gin.Context, code int, obj ErrorResponse, errors ...error) {
	for _, err := range errors {
		c.Error(err)
	}
	c.JSON(code, obj)
	c.Abort()
}
