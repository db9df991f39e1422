// @title           Legal Case Management API
// @version         1.0
// @description     Business-records API for a law office: cases, hearings, contacts, fixed-fee invoicing, and case reports.
// @contact.name    Vaibhav K Joshi
// @BasePath        /api
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     Format: Bearer <token>
package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/ImMortaLGuruji/legal-case-api/pkg/config"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/database"
	"github.com/ImMortaLGuruji/legal-case-api/pkg/models"

	// Docs
	_ "github.com/ImMortaLGuruji/legal-case-api/docs"
	"github.com/ImMortaLGuruji/legal-case-api/internal/attachments"
	"github.com/ImMortaLGuruji/legal-case-api/internal/auth"
	"github.com/ImMortaLGuruji/legal-case-api/internal/cases"
	"github.com/ImMortaLGuruji/legal-case-api/internal/hearings"
	"github.com/ImMortaLGuruji/legal-case-api/internal/invoices"
	"github.com/ImMortaLGuruji/legal-case-api/internal/partners"
	"github.com/ImMortaLGuruji/legal-case-api/internal/reports"
	"github.com/ImMortaLGuruji/legal-case-api/internal/sequence"
	"github.com/ImMortaLGuruji/legal-case-api/internal/storage"
	fiberSwagger "github.com/gofiber/swagger"
)

func main() {
	cfg := config.Load()
	if cfg.Environment == "development" {
		logrus.SetLevel(logrus.DebugLevel)
	}

	db := database.Init(cfg.DatabaseURL)
	if err := db.AutoMigrate(models.All()...); err != nil {
		logrus.WithError(err).Fatal("migration failed")
	}
	if err := sequence.Seed(db); err != nil {
		logrus.WithError(err).Fatal("sequence seed failed")
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: auth.ErrorHandler,
	})

	app.Get("/health", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	app.Get("/swagger/*", fiberSwagger.HandlerDefault)

	api := app.Group("/api")

	// Auth
	authH := auth.NewHandler(db)
	api.Post("/signup", authH.Signup)
	api.Post("/login", authH.Login)
	api.Get("/me", auth.RequireAuth(), authH.Me)

	// Storage helper (attachment blobs)
	var sb *storage.Supabase
	if cfg.SupabaseURL != "" {
		sb = storage.NewSupabase(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	}

	// Contacts (admin manages the address book)
	partnerH := partners.NewHandler(db)
	api.Post("/partners", auth.RequireAuth(), auth.RequireRole("admin"), partnerH.Create)
	api.Patch("/partners/:id", auth.RequireAuth(), auth.RequireRole("admin"), partnerH.Update)
	api.Get("/partners", auth.RequireAuth(), partnerH.List)
	api.Get("/partners/:id", auth.RequireAuth(), partnerH.Get)

	// Cases
	seq := sequence.NewStore()
	caseH := cases.NewHandler(db, seq, sb, cfg.Currency)
	api.Post("/cases", auth.RequireAuth(), caseH.Create)
	api.Get("/cases", auth.RequireAuth(), caseH.List)
	api.Get("/cases/:id", auth.RequireAuth(), caseH.Get)
	api.Patch("/cases/:id", auth.RequireAuth(), caseH.Update)
	api.Delete("/cases/:id", auth.RequireAuth(), auth.RequireRole("admin"), caseH.Delete)
	api.Get("/cases/:id/actions/hearings", auth.RequireAuth(), caseH.ViewHearings)
	api.Get("/cases/:id/actions/invoices", auth.RequireAuth(), caseH.ViewInvoices)
	api.Get("/cases/:id/actions/attachments", auth.RequireAuth(), caseH.ViewAttachments)

	// Hearings
	hearingH := hearings.NewHandler(db)
	api.Post("/hearings", auth.RequireAuth(), hearingH.Create)
	api.Get("/hearings/:id", auth.RequireAuth(), hearingH.Get)
	api.Patch("/hearings/:id", auth.RequireAuth(), hearingH.Update)
	api.Delete("/hearings/:id", auth.RequireAuth(), hearingH.Delete)
	api.Get("/cases/:id/hearings", auth.RequireAuth(), hearingH.ListByCase)

	// Invoices
	invH := invoices.NewHandler(db, invoices.NewService(db, seq))
	api.Post("/cases/:id/invoice", auth.RequireAuth(), invH.CreateForCase)
	api.Get("/cases/:id/invoices", auth.RequireAuth(), invH.ListByCase)
	api.Get("/invoices/:id", auth.RequireAuth(), invH.Get)
	api.Post("/invoices/:id/cancel", auth.RequireAuth(), invH.Cancel)

	// Reports
	reportH := reports.NewHandler(db)
	api.Get("/cases/:id/summary", auth.RequireAuth(), reportH.PrintCaseSummary)

	// Attachments
	attH := attachments.NewHandler(db, sb)
	api.Post("/cases/:id/attachments", auth.RequireAuth(), attH.UploadToCase)
	api.Get("/cases/:id/attachments", auth.RequireAuth(), attH.ListByCase)
	api.Get("/attachments/:id/signed-url", auth.RequireAuth(), attH.SignedDownloadURL)
	api.Delete("/attachments/:id", auth.RequireAuth(), auth.RequireRole("admin"), attH.Delete)

	logrus.WithField("port", cfg.Port).Info("server running")
	logrus.Fatal(app.Listen(":" + cfg.Port))
}
