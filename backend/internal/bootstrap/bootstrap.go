/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 16:05:18
 * @FilePath: \guerrilla-go-app\backend\internal\bootstrap\bootstrap.go
 * @LastEditTime: 2025-10-14 16:05:24
 */
package bootstrap

import (
	"net/http"

	"guerrilla-go-app/backend/internal/app"
	"guerrilla-go-app/backend/internal/handler"
	"guerrilla-go-app/backend/internal/repository"
	"guerrilla-go-app/backend/internal/server"
	"guerrilla-go-app/backend/internal/service/actionlog"
	"guerrilla-go-app/backend/internal/service/agent"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Application 聚合装配完成的核心对象，供入口与测试使用。
type Application struct {
	Resources *app.Resources
	ActionSvc *actionlog.Service
	Scheduler *agent.Scheduler
	Router    http.Handler
}

// BuildApplication 自底向上装配仓储、服务、调度器与路由。
func BuildApplication(logger *zap.SugaredLogger, resources *app.Resources) *Application {
	logRepo := repository.NewActionLogRepository(resources.DB)
	actionSvc := actionlog.NewService(logRepo)

	scheduler := agent.NewScheduler(logRepo, logger, agent.Options{
		CycleInterval: resources.Flags.CycleInterval,
		ErrorBackoff:  resources.Flags.ErrorBackoff,
	})

	agentHandler := handler.NewAgentHandler(actionSvc, scheduler, resources.Flags.DemoMode())

	router := server.NewRouter(server.RouterOptions{
		AgentHandler: agentHandler,
		StaticFS:     gin.Dir("./public", false),
	})

	return &Application{
		Resources: resources,
		ActionSvc: actionSvc,
		Scheduler: scheduler,
		Router:    router,
	}
}
