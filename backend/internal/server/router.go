package server

import (
	"fmt"
	"net/http"
	"time"

	"guerrilla-go-app/backend/internal/handler"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions 汇总路由装配所需的 handler 与静态资源。
type RouterOptions struct {
	AgentHandler *handler.AgentHandler
	StaticFS     http.FileSystem
}

// NewRouter 构建应用的 Gin Engine，汇总仪表盘接口与公共中间件配置。
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// gin 中间件配置
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: gin.LogFormatter(func(params gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s\" %d %s\n",
				params.ClientIP,
				params.TimeStamp.Format(time.RFC3339),
				params.Method,
				params.Path,
				params.StatusCode,
				params.Latency,
			)
		}),
	}))

	// 仪表盘首页与静态资源。
	if opts.StaticFS != nil {
		r.StaticFS("/static", opts.StaticFS)
		r.GET("/", func(c *gin.Context) {
			c.FileFromFS("index.html", opts.StaticFS)
		})
	} else {
		r.Static("/static", "./public")
		r.GET("/", func(c *gin.Context) {
			c.File("./public/index.html")
		})
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if opts.AgentHandler != nil {
		api := r.Group("/api")
		{
			api.GET("/actions", opts.AgentHandler.Actions)
			api.GET("/metrics", opts.AgentHandler.Metrics)
			api.GET("/status", opts.AgentHandler.Status)
		}
		r.GET("/health", opts.AgentHandler.Health)
	}

	return r
}
