package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"quill/app/auth"
	"quill/app/config"
	"quill/app/controllers"
	"quill/app/middleware"
	"quill/app/repositories"
	"quill/app/services"
	"quill/app/views"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Dependencies are the long lived resources the router is built from.
type Dependencies struct {
	Config *config.Config
	Log    *logrus.Logger
	Store  *repositories.Store
	// Redis is optional; without it credential endpoints are not rate limited.
	Redis *redis.Client
}

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(deps Dependencies) (*mux.Router, error) {
	cfg, log := deps.Config, deps.Log

	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	sessions := auth.NewSessionManager(cfg.SecretKey, auth.SessionOptions{
		MaxAge: cfg.SessionMaxAge,
		Secure: cfg.IsProduction(),
	})
	tokens := auth.NewTokenIssuer(cfg.SecretKey, cfg.TokenExpiry)

	// Create services
	userService := services.NewUserService(deps.Store.Users, auth.NewHasher(cfg.PasswordIterations), log)
	postService := services.NewPostService(deps.Store.Posts, deps.Store.Comments, log)
	commentService := services.NewCommentService(deps.Store.Comments, deps.Store.Posts, log)

	// Create controllers
	authController := controllers.NewAuthController(userService, renderer, sessions, log)
	postController := controllers.NewPostController(postService, renderer, sessions, log)
	commentController := controllers.NewCommentController(commentService, postService, renderer, sessions, log)
	pageController := controllers.NewPageController(renderer, sessions, log)
	apiController := controllers.NewAPIController(postService, commentService, userService, tokens, cfg.TokenExpiry, log)

	limit := middleware.RateLimit(deps.Redis, cfg.RateLimitMax, cfg.RateLimitWindow, log)
	limited := func(h http.HandlerFunc) http.Handler { return middleware.Chain(h, limit) }
	// admin only, checked before the post is looked up
	admin := func(h http.HandlerFunc) http.Handler { return middleware.Chain(h, middleware.RequireAdmin) }

	router := mux.NewRouter()

	router.Use(globalMiddleware(cfg, log)...)

	// Serve static files
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", views.Static())).Methods("GET")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.Use(middleware.BearerAuth(tokens, userService))
	api.Handle("/token", limited(apiController.IssueToken)).Methods("POST")
	api.HandleFunc("/posts", apiController.ListPosts).Methods("GET")
	api.HandleFunc("/posts/{id:[0-9]+}", apiController.ShowPost).Methods("GET")
	api.HandleFunc("/posts/{id:[0-9]+}/comments", apiController.ListComments).Methods("GET")
	api.HandleFunc("/posts/{id:[0-9]+}/comments", apiController.CreateComment).Methods("POST")

	// Web routes resolve the session user
	web := router.PathPrefix("/").Subrouter()
	web.Use(middleware.CurrentUser(sessions, userService, log))

	web.HandleFunc("/", postController.Index).Methods("GET")
	web.HandleFunc("/post/{id:[0-9]+}", postController.Show).Methods("GET")
	web.HandleFunc("/post/{id:[0-9]+}", commentController.Create).Methods("POST")

	web.Handle("/register", limited(authController.Register)).Methods("GET", "POST")
	web.Handle("/login", limited(authController.Login)).Methods("GET", "POST")
	web.HandleFunc("/logout", authController.Logout).Methods("GET")

	web.Handle("/new-post", admin(postController.New)).Methods("GET", "POST")
	web.Handle("/edit-post/{id:[0-9]+}", admin(postController.Edit)).Methods("GET", "POST")
	web.Handle("/delete/{id:[0-9]+}", admin(postController.Delete)).Methods("GET")

	web.HandleFunc("/about", pageController.About).Methods("GET")
	web.HandleFunc("/contact", pageController.Contact).Methods("GET")

	// unmatched paths skip the subrouters, so the session user is loaded here
	router.NotFoundHandler = middleware.CurrentUser(sessions, userService, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
			return
		}
		pageController.NotFound(w, r)
	}))

	return router, nil
}

// globalMiddleware runs on every matched request. Forwarding headers are
// honoured only with TrustProxy set.
func globalMiddleware(cfg *config.Config, log logrus.FieldLogger) []mux.MiddlewareFunc {
	mws := []mux.MiddlewareFunc{chimw.RequestID}
	if cfg.TrustProxy {
		mws = append(mws, chimw.RealIP)
	}
	return append(mws, middleware.Logger(log), middleware.Recoverer(log))
}
