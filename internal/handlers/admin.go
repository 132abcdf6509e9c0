// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finwire/internal/importer"
	"finwire/internal/middleware"
	"finwire/internal/models"
	"finwire/internal/newsfetch"
	"finwire/internal/store"
)

// maxUploadBytes caps CSV uploads at 16 MiB.
const maxUploadBytes = 16 << 20

// Admin groups the administrative handlers: user management, news sync
// and CSV imports. Every route here sits behind RequireAdmin.
type Admin struct {
	users       *store.UserStore
	posts       *store.PostStore
	news        *store.NewsStore
	bars        *store.BarStore
	newsClient  *newsfetch.Client
	listImports *importer.MarketListImporter
	barImports  *importer.BarImporter
}

// NewAdmin creates the Admin handler group.
func NewAdmin(
	users *store.UserStore,
	posts *store.PostStore,
	news *store.NewsStore,
	bars *store.BarStore,
	newsClient *newsfetch.Client,
	listImports *importer.MarketListImporter,
	barImports *importer.BarImporter,
) *Admin {
	return &Admin{
		users:       users,
		posts:       posts,
		news:        news,
		bars:        bars,
		newsClient:  newsClient,
		listImports: listImports,
		barImports:  barImports,
	}
}

// Dashboard returns headline counts for the admin landing page.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		serverError(w, "dashboard users", err)
		return
	}

	_, postTotal, err := a.posts.List(store.PostFilter{Limit: 1})
	if err != nil {
		serverError(w, "dashboard posts", err)
		return
	}

	_, publishedTotal, err := a.posts.List(store.PostFilter{Status: models.PostStatusPublished, Limit: 1})
	if err != nil {
		serverError(w, "dashboard published posts", err)
		return
	}

	_, newsTotal, err := a.news.List(store.NewsFilter{Limit: 1})
	if err != nil {
		serverError(w, "dashboard news", err)
		return
	}

	bars24h, err := a.bars.CountSince(time.Now().Add(-24 * time.Hour))
	if err != nil {
		serverError(w, "dashboard bars", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"users":           len(users),
		"posts":           postTotal,
		"posts_published": publishedTotal,
		"news":            newsTotal,
		"bars_24h":        bars24h,
	})
}

// UsersList returns all users.
func (a *Admin) UsersList(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.List()
	if err != nil {
		serverError(w, "list users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// userCreateRequest is the body for creating a user.
type userCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UserCreate adds a new user account.
func (a *Admin) UserCreate(w http.ResponseWriter, r *http.Request) {
	var req userCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}
	role := models.Role(req.Role)
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	exists, err := a.users.EmailExists(req.Email)
	if err != nil {
		serverError(w, "check user email", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "email is already in use")
		return
	}

	user, err := a.users.Create(req.Name, req.Email, req.Password, role)
	if err != nil {
		serverError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// userRoleRequest is the body for changing a user's role.
type userRoleRequest struct {
	Role string `json:"role"`
}

// UserUpdateRole changes a user's role. Admins cannot demote themselves.
func (a *Admin) UserUpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req userRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id && role != models.RoleAdmin {
		writeError(w, http.StatusBadRequest, "cannot remove your own admin role")
		return
	}

	user, err := a.users.FindByID(id)
	if err != nil {
		serverError(w, "find user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := a.users.UpdateRole(id, role); err != nil {
		serverError(w, "update user role", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UserDelete removes a user account. Self-deletion is refused.
func (a *Admin) UserDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	user, err := a.users.FindByID(id)
	if err != nil {
		serverError(w, "find user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := a.users.Delete(id); err != nil {
		serverError(w, "delete user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NewsSync triggers a synchronous feed fetch and reports how many
// snapshots were stored.
func (a *Admin) NewsSync(w http.ResponseWriter, r *http.Request) {
	stored, err := a.newsClient.Sync(r.Context())
	if err != nil {
		serverError(w, "news sync", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"stored": stored})
}

// ImportMarketLists accepts a multipart CSV upload in the "file" field and
// runs the all-or-nothing market-list import.
func (a *Admin) ImportMarketLists(w http.ResponseWriter, r *http.Request) {
	a.runImport(w, r, a.listImports.Import)
}

// ImportBars accepts a multipart CSV upload in the "file" field and runs
// the all-or-nothing price-bar import.
func (a *Admin) ImportBars(w http.ResponseWriter, r *http.Request) {
	a.runImport(w, r, a.barImports.Import)
}

// runImport extracts the uploaded file, runs the importer, and maps the
// outcome: structural failures and row errors are 400s with details,
// store failures are 500s.
func (a *Admin) runImport(w http.ResponseWriter, r *http.Request, run func(io.Reader) (*importer.Result, error)) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "multipart upload with a \"file\" field is required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart upload with a \"file\" field is required")
		return
	}
	defer file.Close()

	result, err := run(file)
	if err != nil {
		var fe *importer.FormatError
		if errors.As(err, &fe) {
			writeError(w, http.StatusBadRequest, fe.Error())
			return
		}
		serverError(w, "csv import", err)
		return
	}
	if result.TotalErrors > 0 {
		writeErrorDetails(w, http.StatusBadRequest, "import failed validation", result)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
