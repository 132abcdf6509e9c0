// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router wires the HTTP handlers into the chi route tree.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"finwire/internal/handlers"
	"finwire/internal/middleware"
	"finwire/internal/session"
)

// Deps carries everything the route tree needs.
type Deps struct {
	Sessions *session.Store
	Auth     *handlers.Auth
	Admin    *handlers.Admin
	CMS      *handlers.CMS
}

// New builds the full route tree.
//
// Layout:
//
//	GET  /healthz                    liveness probe
//	     /api/auth/*                 login, logout, me, 2FA
//	     /api/admin/*                users, dashboard, imports, news sync
//	     /api/cms/*                  content and market data; GETs public,
//	                                 mutations admin-only
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.LoadSession(d.Sessions))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimiter.Middleware).Post("/login", d.Auth.Login)
		r.Post("/logout", d.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/me", d.Auth.Me)
			r.Post("/2fa/setup", d.Auth.TwoFASetup)
			r.Post("/2fa/verify", d.Auth.TwoFAVerify)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin)

		r.Get("/dashboard", d.Admin.Dashboard)

		r.Get("/users", d.Admin.UsersList)
		r.Post("/users", d.Admin.UserCreate)
		r.Put("/users/{id}/role", d.Admin.UserUpdateRole)
		r.Delete("/users/{id}", d.Admin.UserDelete)

		r.Post("/news/sync", d.Admin.NewsSync)
		r.Post("/import/market-lists", d.Admin.ImportMarketLists)
		r.Post("/import/bars", d.Admin.ImportBars)
	})

	r.Route("/api/cms", func(r chi.Router) {
		// Public reads.
		r.Get("/categories", d.CMS.CategoriesList)
		r.Get("/categories/{id}", d.CMS.CategoryGet)
		r.Get("/tags", d.CMS.TagsList)
		r.Get("/tags/{id}", d.CMS.TagGet)
		r.Get("/posts", d.CMS.PostsList)
		r.Get("/posts/{id}", d.CMS.PostGet)
		r.Get("/news", d.CMS.NewsList)
		r.Get("/news/{id}", d.CMS.NewsGet)
		r.Get("/nav-items", d.CMS.NavItemsList)
		r.Get("/market-lists", d.CMS.MarketListsList)
		r.Get("/market-lists/{slug}", d.CMS.MarketListGet)
		r.Get("/market-lists/{slug}/items", d.CMS.MarketListItems)
		r.Get("/instruments", d.CMS.InstrumentsList)
		r.Get("/instruments/{id}", d.CMS.InstrumentGet)
		r.Get("/indices", d.CMS.IndicesList)
		r.Get("/indices/{code}", d.CMS.IndexGet)

		// Admin-only mutations.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Post("/categories", d.CMS.CategoryCreate)
			r.Put("/categories/{id}", d.CMS.CategoryUpdate)
			r.Delete("/categories/{id}", d.CMS.CategoryDelete)

			r.Post("/tags", d.CMS.TagCreate)
			r.Put("/tags/{id}", d.CMS.TagUpdate)
			r.Delete("/tags/{id}", d.CMS.TagDelete)

			r.Post("/posts", d.CMS.PostCreate)
			r.Put("/posts/{id}", d.CMS.PostUpdate)
			r.Delete("/posts/{id}", d.CMS.PostDelete)

			r.Put("/news/{id}/active", d.CMS.NewsSetActive)
			r.Delete("/news/{id}", d.CMS.NewsDelete)

			r.Post("/nav-items", d.CMS.NavItemCreate)
			r.Put("/nav-items/{id}", d.CMS.NavItemUpdate)
			r.Delete("/nav-items/{id}", d.CMS.NavItemDelete)

			r.Post("/market-lists", d.CMS.MarketListCreate)
			r.Put("/market-lists/{slug}", d.CMS.MarketListUpdate)
			r.Delete("/market-lists/{slug}", d.CMS.MarketListDelete)

			r.Post("/instruments", d.CMS.InstrumentUpsert)
			r.Delete("/instruments/{id}", d.CMS.InstrumentDelete)

			r.Post("/indices", d.CMS.IndexCreate)
			r.Put("/indices/{code}", d.CMS.IndexUpdate)
			r.Delete("/indices/{code}", d.CMS.IndexDelete)
		})
	})

	return r
}
