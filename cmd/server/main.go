package main

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"inkwell/internal/db"
	"inkwell/internal/handlers"
	"inkwell/internal/logger"
	"inkwell/internal/middleware"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err == nil {
		fmt.Println("loaded .env")
	}

	logger.Init()
	defer logger.Logger.Sync()

	db.Init()

	r := gin.Default()

	// Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("inkwell_session", store))

	// Templates and static assets
	r.HTMLRender = loadTemplates("./web/templates")
	r.Static("/static", "./web/static")

	r.Use(middleware.LoadUser())

	authHandler := handlers.NewAuthHandler()
	postHandler := handlers.NewPostHandler()
	voteHandler := handlers.NewVoteHandler()
	commentHandler := handlers.NewCommentHandler()
	userHandler := handlers.NewUserHandler()
	imageHandler := handlers.NewImageHandler()

	// Public pages
	r.GET("/", postHandler.Index)
	r.GET("/post/:id", postHandler.Detail)
	r.GET("/t/:name", postHandler.ListByTag)
	r.GET("/u/:id", userHandler.Profile)

	r.GET("/register", authHandler.ShowRegister)
	r.POST("/register", authHandler.Register)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	// JSON API
	r.GET("/api/posts", postHandler.ListPosts)
	r.GET("/api/check_username", authHandler.CheckUsername)
	r.GET("/api/check_email", authHandler.CheckEmail)
	r.GET("/api/user/theme", userHandler.Theme)

	// Mutating JSON endpoints; handlers answer 401 themselves so the
	// client script sees JSON rather than a login redirect.
	limited := r.Group("/")
	limited.Use(middleware.RateLimit(30))
	{
		limited.POST("/post/:id/vote", voteHandler.Vote)
		limited.POST("/post/comment", commentHandler.Create)
	}

	// Protected pages
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/post/new", postHandler.ShowCreate)
		authorized.POST("/post/new", postHandler.Create)
		authorized.GET("/post/:id/edit", postHandler.ShowEdit)
		authorized.POST("/post/:id/edit", postHandler.Update)
		authorized.POST("/post/:id/delete", postHandler.Delete)
		authorized.POST("/upload/image", imageHandler.Upload)
		authorized.GET("/settings", userHandler.ShowSettings)
		authorized.POST("/settings", userHandler.UpdateSettings)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Sugar.Infow("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		logger.Sugar.Fatalf("server exited: %v", err)
	}
}

func loadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}
	includes, err := filepath.Glob(templatesDir + "/includes/*.html")
	if err != nil {
		panic(err)
	}

	assemble := func(view string) []string {
		files := make([]string, 0, len(layouts)+len(includes)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, view)
		return files
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
		"timeAgo": func(t interface{}) string {
			timeVal, ok := t.(time.Time)
			if !ok {
				return ""
			}
			seconds := int(time.Since(timeVal).Seconds())
			switch {
			case seconds < 60:
				return fmt.Sprintf("%ds ago", seconds)
			case seconds < 3600:
				return fmt.Sprintf("%dm ago", seconds/60)
			case seconds < 86400:
				return fmt.Sprintf("%dh ago", seconds/3600)
			case seconds < 2592000:
				return fmt.Sprintf("%dd ago", seconds/86400)
			}
			return timeVal.Format("Jan 2, 2006")
		},
	}

	views := []string{
		"feed/list.html",
		"post/detail.html",
		"post/form.html",
		"auth/login.html",
		"auth/register.html",
		"user/profile.html",
		"user/settings.html",
		"tag/list.html",
		"error.html",
	}
	for _, view := range views {
		r.AddFromFilesFuncs(view, funcMap, assemble(templatesDir+"/views/"+view)...)
	}

	return r
}
