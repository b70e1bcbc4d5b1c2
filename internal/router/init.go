package router

import (
	"github.com/Dheerajaldak/lms-backend/internal/application"
	"github.com/Dheerajaldak/lms-backend/internal/container"
	pginfra "github.com/Dheerajaldak/lms-backend/internal/infrastructure/postgres"
	"github.com/Dheerajaldak/lms-backend/internal/infrastructure/storage"
	handlers "github.com/Dheerajaldak/lms-backend/internal/interface/http"
	"github.com/Dheerajaldak/lms-backend/internal/router/modules"
)

// InitModules builds all application modules from the container singletons
// and registers them with the router registry. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	uploader := storage.NewGCSUploader(container.GetGCS(), cfg.GCSBucket)

	userRepo := pginfra.NewUserRepository(container.GetPGPool())
	authSvc := application.NewAuthService(
		userRepo,
		container.GetJWT(),
		uploader,
		container.GetMailgun(),
		container.GetRabbitPub(),
		logger,
		cfg,
	)
	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg)

	courseRepo := pginfra.NewCourseRepository(container.GetPGPool())
	courseSvc := application.NewCourseService(
		courseRepo,
		uploader,
		container.GetES(),
		cfg.ESCoursesIndex,
		logger,
		cfg,
	)
	courseHandler := handlers.NewCourseHandler(courseSvc, logger, cfg)

	r.Add(modules.NewUserModule(authHandler, container.GetJWT()))
	r.Add(modules.NewCourseModule(courseHandler, container.GetJWT()))
}
