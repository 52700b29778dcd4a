// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/splitpal/splitpal/internal/balancedelivery"
	"github.com/splitpal/splitpal/internal/balanceservice"
	"github.com/splitpal/splitpal/internal/currencydelivery"
	"github.com/splitpal/splitpal/internal/currencyrepo"
	"github.com/splitpal/splitpal/internal/eventbus"
	"github.com/splitpal/splitpal/internal/groupdelivery"
	"github.com/splitpal/splitpal/internal/grouprepo"
	"github.com/splitpal/splitpal/internal/groupservice"
	"github.com/splitpal/splitpal/internal/middleware"
	"github.com/splitpal/splitpal/internal/sessiondelivery"
	"github.com/splitpal/splitpal/internal/sessionrepo"
	"github.com/splitpal/splitpal/internal/sessionservice"
	"github.com/splitpal/splitpal/internal/transactiondelivery"
	"github.com/splitpal/splitpal/internal/transactionrepo"
	"github.com/splitpal/splitpal/internal/transactionservice"
	"github.com/splitpal/splitpal/internal/userdelivery"
	"github.com/splitpal/splitpal/internal/userrepo"
	"github.com/splitpal/splitpal/internal/userservice"
	"github.com/splitpal/splitpal/pkg/configpkg"
	"github.com/splitpal/splitpal/pkg/currencypkg"
	"github.com/splitpal/splitpal/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config, publisher eventbus.Publisher) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	groupRepo := grouprepo.NewRepoPGS(conn)
	transactionRepo := transactionrepo.NewRepoPGS(conn)
	currencyRepo := currencyrepo.NewRepoPGS(conn)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)

	sessionService, err := sessionservice.New(sessionRepo, config, tokenMaker)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	balanceService := balanceservice.New(transactionRepo, groupRepo, currencyRepo)
	groupService := groupservice.New(groupRepo, balanceService, publisher)
	transactionService := transactionservice.New(transactionRepo, groupRepo, currencyRepo, publisher)

	userHandler := userdelivery.NewHandler(userService, sessionService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)
	groupHandler := groupdelivery.NewHandler(groupService, userService)
	transactionHandler := transactiondelivery.NewHandler(transactionService, userService)
	balanceHandler := balancedelivery.NewHandler(balanceService, userService)
	currencyHandler := currencydelivery.NewHandler(currencyRepo)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)
	engine.POST("/sessions", sessionHandler.RenewAccessToken)

	engine.GET("/currencies", currencyHandler.List)
	engine.GET("/currencies/:code", currencyHandler.Get)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.POST("/groups", groupHandler.Create)
	authRoutes.GET("/groups", groupHandler.List)
	authRoutes.GET("/groups/:id", groupHandler.Get)
	authRoutes.DELETE("/groups/:id", groupHandler.Delete)
	authRoutes.POST("/groups/:id/archive", groupHandler.Archive)
	authRoutes.POST("/groups/:id/unarchive", groupHandler.Unarchive)
	authRoutes.POST("/groups/:id/leave", groupHandler.Leave)
	authRoutes.GET("/groups/:id/members", groupHandler.Members)
	authRoutes.POST("/groups/:id/members", groupHandler.AddMember)
	authRoutes.DELETE("/groups/:id/members/:user_id", groupHandler.RemoveMember)

	authRoutes.POST("/groups/:id/expenses", transactionHandler.CreateExpense)
	authRoutes.POST("/groups/:id/transfers", transactionHandler.CreateTransfer)
	authRoutes.GET("/groups/:id/transactions", transactionHandler.List)
	authRoutes.GET("/transactions/:tx_id", transactionHandler.Get)
	authRoutes.DELETE("/transactions/:tx_id", transactionHandler.Delete)

	authRoutes.GET("/groups/:id/balances", balanceHandler.Balances)
	authRoutes.GET("/groups/:id/settle-up", balanceHandler.SettleUp)
	authRoutes.GET("/groups/:id/debts", balanceHandler.HasDebts)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:     conn,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
