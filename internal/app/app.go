package app

import (
	"context"
	"tunedex/config"
	"tunedex/internal/controllers"
	"tunedex/internal/database"
	"tunedex/internal/handlers/middleware"
	"tunedex/internal/jobs"
	"tunedex/internal/logger"
	"tunedex/internal/repositories"
	"tunedex/internal/services"
)

type App struct {
	Database    database.DB
	Middleware  middleware.Middleware
	Config      config.Config
	Repos       repositories.Repository
	Services    services.Service
	Controllers controllers.Controllers
}

func New() (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	repos := repositories.New(db)
	svcs := services.New(db, config, repos)
	ctrls := controllers.New(svcs, repos, db)
	middleware := middleware.New(db, config, repos)

	if config.SchedulerEnabled {
		dailyQueueJob := jobs.NewDailyQueueJob(svcs.Queue, repos.User, db, services.Daily)
		if err := svcs.Scheduler.AddJob(dailyQueueJob); err != nil {
			return &App{}, log.Err("failed to register daily queue job", err)
		}

		if err := svcs.Scheduler.Start(context.Background()); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
		log.Info("Registered daily queue prebuild job with scheduler")
	}

	app := &App{
		Database:    db,
		Config:      config,
		Middleware:  middleware,
		Repos:       repos,
		Services:    svcs,
		Controllers: ctrls,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Services.Transaction,
		a.Services.Session,
		a.Services.Spotify,
		a.Services.TagLookup,
		a.Services.Queue,
		a.Services.Playlist,
		a.Services.Completion,
		a.Services.Rating,
		a.Services.Taste,
		a.Services.Scheduler,
		a.Controllers.Queue,
		a.Controllers.Playlist,
		a.Controllers.Taste,
		a.Repos.User,
		a.Repos.Track,
		a.Repos.Rating,
		a.Repos.DailyQueue,
		a.Repos.DailyPlaylist,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Services.Scheduler != nil {
		if closeErr := a.Services.Scheduler.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
