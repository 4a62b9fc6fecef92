package api

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/sunghyun0422/snf.semi/internal/api/handlers"
	"github.com/sunghyun0422/snf.semi/internal/api/middleware"
	"github.com/sunghyun0422/snf.semi/internal/service"
	"github.com/sunghyun0422/snf.semi/internal/session"
	"github.com/sunghyun0422/snf.semi/web"
)

// BodyLimit sits above the 20 MB attachment cap so oversize files reach the handler and
// the form can be shown again with the admin's input. Bodies past it are refused before
// any handler runs; errorHandler still answers offer form posts with the form.
const BodyLimit = 64 * 1024 * 1024

type Deps struct {
	SiteName   string
	Reconciler middleware.Reconciler
	Signer     *session.Signer
	Auth       service.AuthService
	OTP        service.OTPService
	Offers     service.OfferService
	Settings   service.SettingsService
	Inquiry    service.InquiryService
	Now        func() time.Time
	// AccessLog turns on the request logger.
	AccessLog bool
}

func NewApp(d Deps) (*fiber.App, error) {
	templates, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(templates), ".html")
	engine.AddFunc("inc", func(i int) int { return i + 1 })

	app := fiber.New(fiber.Config{
		Views:        engine,
		ViewsLayout:  "layout",
		AppName:      d.SiteName,
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		BodyLimit:    BodyLimit,
		ErrorHandler: errorHandler(d),
	})

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}

	Register(app, d)
	return app, nil
}

// errorHandler never puts internal error text on the wire. A refused body on an offer
// form post comes back as that form for admins.
func errorHandler(d Deps) fiber.ErrorHandler {
	auth := middleware.NewAuthMiddleware(d.Signer, d.Now)
	post := handlers.NewPostHandler(d.Offers, d.SiteName)

	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code == fiber.StatusRequestEntityTooLarge {
				if c.Method() == fiber.MethodPost && auth.StoreClaims(c).Admin {
					if handled, err := post.OversizeForm(c); handled {
						return err
					}
				}
				return c.Status(fe.Code).SendString("The upload is too large.")
			}
			return c.Status(fe.Code).SendString(fe.Message)
		}

		slog.Error("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error.")
	}
}

func Register(app *fiber.App, d Deps) {
	site := handlers.NewSiteHandler(d.Settings, d.Offers, d.Inquiry, d.SiteName)
	app.Get("/health", site.Health)

	auth := middleware.NewAuthMiddleware(d.Signer, d.Now)
	app.Use(middleware.Readiness(d.Reconciler))
	app.Use(auth.LoadClaims())

	login := handlers.NewAuthHandler(d.Auth, d.Signer, d.Now, d.SiteName)

	app.Get("/", site.Home)
	app.Get("/offers/login", login.OffersLoginPage)
	app.Post("/offers/login", login.OffersLogin)
	app.Post("/offers/logout", login.OffersLogout)

	offerGate := auth.OfferGate()
	app.Get("/offers", offerGate, site.Offers)
	app.Get("/post/:id", offerGate, site.Post)
	app.Post("/post/:id/buyer-submit", offerGate, site.BuyerSubmit)
	app.Get("/attachment/:id", offerGate, site.Attachment)

	app.Get("/admin/login", login.AdminLoginPage)
	app.Post("/admin/login", login.AdminLogin)
	app.Post("/admin/logout", login.AdminLogout)

	admin := app.Group("/admin", auth.AdminGate())

	post := handlers.NewPostHandler(d.Offers, d.SiteName)
	admin.Get("/", post.Dashboard)
	admin.Get("/new", post.NewPage)
	admin.Post("/new", post.CreatePost)
	admin.Get("/edit/:id", post.EditPage)
	admin.Post("/edit/:id", post.UpdatePost)
	admin.Post("/toggle/:id", post.TogglePost)
	admin.Post("/delete/:id", post.RemovePost)
	admin.Post("/attachment/delete/:id", post.RemoveAttachment)

	settings := handlers.NewSettingsHandler(d.Settings, d.Auth, d.SiteName)
	admin.Get("/home", settings.HomePage)
	admin.Post("/home", settings.UpdateHome)
	admin.Get("/offers-password", settings.OffersPasswordPage)
	admin.Post("/offers-password", settings.UpdateOffersPassword)

	account := handlers.NewAccountHandler(d.OTP, d.Auth, d.SiteName)
	admin.Get("/account", account.AccountPage)
	admin.Post("/account/send-code", account.SendCode)
	admin.Post("/account/update", account.UpdateAccount)
}
