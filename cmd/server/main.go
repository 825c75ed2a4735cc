// Package main is the application entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sgo-sapem/internal/config"
	"sgo-sapem/internal/handler"
	"sgo-sapem/internal/middleware"
	"sgo-sapem/internal/model"
	"sgo-sapem/internal/repository"
	"sgo-sapem/internal/service"
	"sgo-sapem/pkg/database"
	"sgo-sapem/pkg/log"
	"sgo-sapem/pkg/storage"
	"sgo-sapem/pkg/token"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Configuration
	config.Init("./configs/config.yaml")
	cfg := config.Conf

	// 2. Logger
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("logger inicializado")

	// 3. MySQL, Redis and the local upload store
	database.InitMySQL(cfg.Database.MySQL.DSN)
	if err := database.DB.AutoMigrate(
		&model.User{},
		&model.Localidad{},
		&model.Empresa{},
		&model.RepresentanteLegal{},
		&model.Obra{},
		&model.Archivo{},
		&model.Contrato{},
	); err != nil {
		log.Fatalf("migración de esquema fallida: %v", err)
	}
	database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	almacen, err := storage.NewLocal(cfg.Storage.BasePath, cfg.Storage.URLBase)
	if err != nil {
		log.Fatalf("no se pudo preparar el directorio de archivos: %v", err)
	}

	// 4. Repositories
	txManager := repository.NewTxManager(database.DB)
	userRepo := repository.NewUserRepository(database.DB)
	obraRepo := repository.NewObraRepository(database.DB)
	archivoRepo := repository.NewArchivoRepository(database.DB)
	contratoRepo := repository.NewContratoRepository(database.DB)
	entidadRepo := repository.NewEntidadRepository(database.DB)
	verificacionRepo := repository.NewVerificacionRepository(database.RDB)

	// 5. Services (dependency injection)
	jwtManager := token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours, cfg.JWT.RefreshTokenExpireDays)
	userService := service.NewUserService(userRepo, verificacionRepo, jwtManager)
	archivoService := service.NewArchivoService(archivoRepo, obraRepo, almacen)
	obraService := service.NewObraService(obraRepo, contratoRepo, entidadRepo, archivoService)
	contratoService := service.NewContratoService(contratoRepo, obraService)
	importacionService := service.NewImportacionService(txManager, obraRepo, userRepo, entidadRepo)

	// 6. Gin engine with our logging middleware and panic recovery
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// Uploaded documents are served straight from disk.
	r.Static(cfg.Storage.URLBase, almacen.Dir())

	// 7. Routes
	authRequired := middleware.AuthMiddleware(jwtManager, userService)
	adminOnly := middleware.AdminAuthMiddleware()

	apiV1 := r.Group("/api/v1")
	{
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", handler.NewAuthHandler(userService).Login)
			auth.POST("/refreshToken", handler.NewAuthHandler(userService).RefreshToken)
		}

		usuarios := apiV1.Group("/usuarios")
		usuarios.Use(authRequired)
		{
			usuarios.GET("/me", handler.NewUserHandler(userService).Perfil)
			usuarios.GET("/inspectores", handler.NewUserHandler(userService).ListarInspectores)
			usuarios.POST("/codigo", handler.NewUserHandler(userService).EnviarCodigo)
			usuarios.POST("/codigo/verificar", handler.NewUserHandler(userService).VerificarCodigo)

			administracion := usuarios.Group("/")
			administracion.Use(adminOnly)
			{
				administracion.GET("", handler.NewUserHandler(userService).Listar)
				administracion.POST("", handler.NewUserHandler(userService).Registrar)
				administracion.PUT("/:id/rol", handler.NewUserHandler(userService).CambiarRol)
			}
		}

		obras := apiV1.Group("/obras")
		obras.Use(authRequired)
		{
			obras.GET("", handler.NewObraHandler(obraService).Listar)
			obras.POST("", handler.NewObraHandler(obraService).Crear)
			obras.GET("/:id", handler.NewObraHandler(obraService).Obtener)
			obras.PUT("/:id", handler.NewObraHandler(obraService).Actualizar)
			obras.PUT("/:id/estado", handler.NewObraHandler(obraService).CambiarEstado)
			obras.DELETE("/:id", handler.NewObraHandler(obraService).Eliminar)

			obras.POST("/importar", handler.NewImportacionHandler(importacionService).Importar)

			obras.GET("/:id/archivos", handler.NewArchivoHandler(archivoService, almacen).Arbol)
			obras.POST("/:id/archivos/carpetas", handler.NewArchivoHandler(archivoService, almacen).CrearCarpeta)
			obras.POST("/:id/archivos", handler.NewArchivoHandler(archivoService, almacen).Subir)

			obras.GET("/:id/contratos", handler.NewContratoHandler(contratoService, almacen).Listar)
			obras.POST("/:id/contratos", handler.NewContratoHandler(contratoService, almacen).Crear)
		}

		archivos := apiV1.Group("/archivos")
		archivos.Use(authRequired)
		{
			archivos.PUT("/:id", handler.NewArchivoHandler(archivoService, almacen).Renombrar)
			archivos.DELETE("/:id", handler.NewArchivoHandler(archivoService, almacen).Eliminar)
		}

		contratos := apiV1.Group("/contratos")
		contratos.Use(authRequired)
		{
			contratos.PUT("/:id/avance", handler.NewContratoHandler(contratoService, almacen).ActualizarAvance)
		}

		maestros := apiV1.Group("")
		maestros.Use(authRequired)
		{
			maestros.GET("/localidades", handler.NewObraHandler(obraService).Localidades)
			maestros.GET("/empresas", handler.NewObraHandler(obraService).Empresas)
			maestros.GET("/representantes", handler.NewObraHandler(obraService).Representantes)
		}
	}

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("servicio escuchando en %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("el servidor HTTP no pudo iniciar: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("señal de apagado recibida, cerrando el servicio...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("el servidor HTTP no cerró correctamente: %v", err)
	}
	log.Info("servicio detenido")
}
