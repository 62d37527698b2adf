package http

import (
	"strings"
	"time"

	"git.solsynth.dev/hypernet/forum/pkg/internal/http/admin"
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/api"
	"git.solsynth.dev/hypernet/forum/pkg/internal/http/exts"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type App struct {
	app *fiber.App
}

func NewServer(deps *exts.Deps) *App {
	bodyLimit := viper.GetInt("http.body_limit")
	if bodyLimit <= 0 {
		bodyLimit = 50 * 1024 * 1024
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		EnableIPValidation:    true,
		ServerHeader:          "Hypernet.Forum",
		AppName:               "Hypernet.Forum",
		ProxyHeader:           fiber.HeaderXForwardedFor,
		JSONEncoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Marshal,
		JSONDecoder:           jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal,
		BodyLimit:             bodyLimit,
		EnablePrintRoutes:     viper.GetBool("debug.print_routes"),
		ErrorHandler:          exts.ErrorHandler,
	})

	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowMethods: strings.Join([]string{
			fiber.MethodGet,
			fiber.MethodPost,
			fiber.MethodHead,
			fiber.MethodOptions,
			fiber.MethodPut,
			fiber.MethodDelete,
			fiber.MethodPatch,
		}, ","),
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
	}))

	app.Use(logger.New(logger.Config{
		Format: "${status} | ${latency} | ${method} ${path}\n",
		Output: log.Logger,
	}))

	app.Use(recover.New(recover.Config{
		EnableStackTrace: viper.GetBool("debug.stack_trace"),
	}))

	if rate := viper.GetInt("http.rate_limit"); rate > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        rate,
			Expiration: time.Minute,
		}))
	}

	app.Use(exts.ContextMiddleware(deps))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api.MapControllers(app, "/api", deps)
	admin.MapControllers(app, "/api/admin")

	return &App{app}
}

// Handler exposes the fiber app for in-process requests.
func (v *App) Handler() *fiber.App {
	return v.app
}

func (v *App) Listen() {
	if err := v.app.Listen(viper.GetString("bind")); err != nil {
		log.Fatal().Err(err).Msg("An error occurred when starting server...")
	}
}

func (v *App) Shutdown() error {
	return v.app.Shutdown()
}
