package router

import (
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"threadboard/internal/auth"
	"threadboard/internal/handlers"
	"threadboard/internal/middleware"
	"threadboard/internal/utils"
	"threadboard/internal/voting"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const sessionName = "threadboard_session"

// Options carries everything the HTTP layer depends on.
type Options struct {
	DB            *gorm.DB
	Votes         *voting.Service
	Tokens        *auth.TokenIssuer
	Clock         clockwork.Clock
	SessionSecret string
	SecureCookie  bool
	CacheSize     int
	CacheTTL      time.Duration
}

var registerTagNames sync.Once

// New builds the engine with middleware and every route registered.
func New(opts Options) (*gin.Engine, error) {
	registerTagNames.Do(useJSONFieldNames)

	subjectCache, err := utils.NewCache[handlers.SubjectView](opts.CacheSize, opts.CacheTTL, opts.Clock)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 3600,
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	r.GET("/healthz", handlers.Health(opts.DB))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	subjectHandler := handlers.NewSubjectHandler(opts.DB, opts.Votes, subjectCache, opts.Clock)
	opts.Votes.OnCommit(subjectHandler.Invalidate)

	RegisterRoutes(r, Handlers{
		Auth:     handlers.NewAuthHandler(opts.DB, opts.Tokens),
		Subjects: subjectHandler,
		Comments: handlers.NewCommentHandler(opts.DB, opts.Votes, subjectCache),
		Votes:    handlers.NewVoteHandler(opts.Votes),
	}, middleware.LoadUser(opts.DB, opts.Tokens))

	return r, nil
}

type Handlers struct {
	Auth     *handlers.AuthHandler
	Subjects *handlers.SubjectHandler
	Comments *handlers.CommentHandler
	Votes    *handlers.VoteHandler
}

func RegisterRoutes(r *gin.Engine, h Handlers, loadUser gin.HandlerFunc) {
	api := r.Group("/api")
	api.Use(loadUser)

	// 公共路由
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/subjects", h.Subjects.List)
	api.GET("/subjects/:id", h.Subjects.Detail)
	api.GET("/subjects/:id/comments", h.Comments.List)

	// 受保护路由
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/likes", h.Votes.Vote)
		authorized.POST("/subjects", h.Subjects.Create)
		authorized.DELETE("/subjects/:id", h.Subjects.Delete)
		authorized.POST("/subjects/:id/comments", h.Comments.Create)
		authorized.DELETE("/comments/:id", h.Comments.Delete)
	}
}

// useJSONFieldNames makes validation errors name fields the way clients send them.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}
