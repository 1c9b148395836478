// Package router sets up all HTTP routes and middleware chains of the
// seller console. Routes fall into public auth pages, the onboarding steps
// and the console proper, each with its own middleware stack.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sellerconsole/internal/handlers"
	"sellerconsole/internal/middleware"
	"sellerconsole/internal/session"
)

// New creates the configured Chi router. limiter throttles the credential
// forms; static serves /static/.
func New(sessionStore *session.Store, console *handlers.Console, auth *handlers.Auth, limiter *middleware.RateLimiter, secureCookies bool, static fs.FS) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	// Health check and assets: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Handle("/static/*", http.StripPrefix("/static/", staticHandler(static)))

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRF(secureCookies))
		r.Use(middleware.LoadSession(sessionStore))

		// Auth pages, reachable without a session.
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Get("/sign-in", auth.SignInPage)
			r.Post("/sign-in", auth.SignIn)
			r.Get("/sign-up", auth.SignUpPage)
			r.Post("/sign-up", auth.SignUp)
			r.Get("/verify", auth.VerifyPage)
			r.Post("/verify", auth.Verify)
		})
		r.Get("/auth/google", auth.GoogleStart)
		r.Get("/auth/callback", auth.GoogleCallback)
		r.Post("/sign-out", auth.SignOut)

		// 2FA: requires auth but not a completed 2FA check.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(limiter.Middleware)
			r.Get(middleware.TwoFAPath, auth.TwoFAPage)
			r.Post(middleware.TwoFAPath, auth.TwoFAVerify)
		})

		// Onboarding: authenticated and 2FA-verified, not yet onboarded.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Get(middleware.AgreementPath, auth.AgreementPage)
			r.Post(middleware.AgreementPath, auth.AcceptAgreement)
			r.Get(middleware.BrandPath, auth.BrandPage)
			r.Post(middleware.BrandPath, auth.CreateBrand)
		})

		// The console proper.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)
			r.Use(middleware.RequireOnboarded)

			r.Get("/", console.Dashboard)

			r.Route("/products", func(r chi.Router) {
				r.Get("/", console.Products)
				r.Get("/new", console.NewProduct)

				r.Route("/drafts/{draftID}", func(r chi.Router) {
					r.Get("/", console.ShowDraft)
					r.Post("/fields", console.UpdateDraftFields)
					r.Post("/files", console.StageFiles)
					r.Post("/files/{fileID}/remove", console.UnstageFile)
					r.Get("/previews/{fileID}", console.DraftPreview)
					r.Post("/images/remove", console.RemoveDraftImage)
					r.Post("/upload", console.UploadDraftImages)
					r.Post("/axes", console.AddDraftAxis)
					r.Post("/axes/{axisID}", console.EditDraftAxis)
					r.Post("/axes/{axisID}/remove", console.RemoveDraftAxis)
					r.Post("/axes/{axisID}/values/{index}/remove", console.RemoveDraftAxisValue)
					r.Post("/submit", console.SubmitDraft)
					r.Post("/discard", console.DiscardDraft)
				})

				r.Route("/{productID}", func(r chi.Router) {
					r.Get("/edit", console.EditProduct)
					r.Post("/delete", console.DeleteProduct)

					r.Route("/options", func(r chi.Router) {
						r.Get("/", console.ShowOptions)
						r.Post("/axes", console.AddOption)
						r.Post("/axes/{axisID}", console.EditOption)
						r.Post("/axes/{axisID}/remove", console.RemoveOption)
						r.Post("/axes/{axisID}/values/{index}/remove", console.RemoveOptionValue)
						r.Post("/save", console.SaveOptions)
						r.Post("/cancel", console.CancelOptions)
					})

					r.Route("/variants", func(r chi.Router) {
						r.Get("/", console.Variants)
						r.Get("/new", console.NewVariant)
						r.Get("/{variantID}/edit", console.EditVariant)
						r.Route("/forms/{formID}", func(r chi.Router) {
							r.Get("/", console.ShowVariantForm)
							r.Post("/fields", console.UpdateVariantFields)
							r.Post("/images", console.UploadVariantImages)
							r.Post("/images/remove", console.RemoveVariantImage)
							r.Post("/save", console.SaveVariant)
						})
					})
				})
			})

			r.Route("/sub-categories", func(r chi.Router) {
				r.Get("/", console.SubCategories)
				r.Post("/", console.SaveSubCategory)
				r.Post("/{subCategoryID}", console.SaveSubCategory)
				r.Post("/{subCategoryID}/delete", console.DeleteSubCategory)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", console.Orders)
				r.Get("/{orderID}", console.Order)
			})

			r.Route("/videos", func(r chi.Router) {
				r.Get("/", console.Videos)
				r.Post("/", console.SaveVideo)
				r.Post("/{videoID}", console.SaveVideo)
			})

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", console.Settings)
				r.Post("/profile", console.UpdateProfile)
				r.Post("/2fa/setup", console.SetupTwoFA)
				r.Post("/2fa/confirm", console.ConfirmTwoFA)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// staticHandler serves embedded assets with a long cache lifetime.
func staticHandler(static fs.FS) http.Handler {
	files := http.FileServerFS(static)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	})
}
