// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"finwire/internal/middleware"
	"finwire/internal/models"
	"finwire/internal/slug"
	"finwire/internal/store"
)

// isAdminRequest reports whether the request carries a fully
// authenticated admin session.
func isAdminRequest(r *http.Request) bool {
	sess := middleware.SessionFromCtx(r.Context())
	return sess != nil && sess.Role == string(models.RoleAdmin) && sess.TwoFADone
}

// PostsList returns a page of posts. Supported query parameters:
// search, status, category, tag, trending, page, limit. Requests without
// an admin session only ever see published posts.
func (c *CMS) PostsList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := pagination(r)

	filter := store.PostFilter{
		Search:   q.Get("search"),
		Status:   models.PostStatus(q.Get("status")),
		Trending: boolParam(r, "trending"),
		Page:     page,
		Limit:    limit,
	}

	if v := q.Get("category"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid category id")
			return
		}
		filter.CategoryID = &id
	}
	if v := q.Get("tag"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid tag id")
			return
		}
		filter.TagID = &id
	}

	if filter.Status != "" && !filter.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	// Drafts stay invisible without an admin session.
	if !isAdminRequest(r) {
		filter.Status = models.PostStatusPublished
	}

	items, total, err := c.posts.List(filter)
	if err != nil {
		serverError(w, "list posts", err)
		return
	}
	if items == nil {
		items = []models.Post{}
	}
	writePage(w, items, total, page, limit)
}

// PostGet returns one post by UUID or slug. Public reads of a published
// post bump the view counter.
func (c *CMS) PostGet(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "id")

	var post *models.Post
	var err error
	if id, parseErr := uuid.Parse(key); parseErr == nil {
		post, err = c.posts.FindByID(id)
	} else {
		post, err = c.posts.FindBySlug(key)
	}
	if err != nil {
		serverError(w, "find post", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	admin := isAdminRequest(r)
	if !post.IsPublished() && !admin {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	if post.IsPublished() && !admin {
		if err := c.posts.IncrementViews(post.ID); err != nil {
			serverError(w, "increment post views", err)
			return
		}
		post.Views++
	}
	writeJSON(w, http.StatusOK, post)
}

// postRequest is the create/update body for posts.
type postRequest struct {
	Title      string      `json:"title"`
	Slug       string      `json:"slug"`
	Content    string      `json:"content"`
	Excerpt    string      `json:"excerpt"`
	CoverImage *string     `json:"cover_image"`
	CategoryID *uuid.UUID  `json:"category_id"`
	Status     string      `json:"status"`
	SEO        models.SEO  `json:"seo"`
	Trending   bool        `json:"trending"`
	TagIDs     []uuid.UUID `json:"tag_ids"`
}

// validate normalizes the request and reports the first problem found.
func (req *postRequest) validate() string {
	if msg := validatePost(req.Title, req.Content, req.Excerpt); msg != "" {
		return msg
	}
	if msg := validateSEO(req.SEO.MetaTitle, req.SEO.MetaDescription); msg != "" {
		return msg
	}
	if req.Status == "" {
		req.Status = string(models.PostStatusDraft)
	}
	if !models.PostStatus(req.Status).Valid() {
		return "invalid status"
	}
	if req.Slug == "" {
		req.Slug = slug.Generate(req.Title)
	} else {
		req.Slug = slug.Generate(req.Slug)
	}
	if req.Slug == "" {
		return "title does not produce a valid slug"
	}
	return ""
}

// checkPostRefs verifies the referenced category and tags exist.
func (c *CMS) checkPostRefs(req *postRequest) (string, error) {
	if req.CategoryID != nil {
		cat, err := c.categories.FindByID(*req.CategoryID)
		if err != nil {
			return "", err
		}
		if cat == nil {
			return "category does not exist", nil
		}
	}
	for _, tagID := range req.TagIDs {
		tag, err := c.tags.FindByID(tagID)
		if err != nil {
			return "", err
		}
		if tag == nil {
			return "tag does not exist: " + tagID.String(), nil
		}
	}
	return "", nil
}

// PostCreate adds a new post authored by the session user.
func (c *CMS) PostCreate(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	msg, err := c.checkPostRefs(&req)
	if err != nil {
		serverError(w, "check post refs", err)
		return
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exists, err := c.posts.SlugExists(req.Slug, nil)
	if err != nil {
		serverError(w, "check post slug", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "a post with this slug already exists")
		return
	}

	post, err := c.posts.Create(&models.Post{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		CategoryID: req.CategoryID,
		AuthorID:   sess.UserID,
		Status:     models.PostStatus(req.Status),
		SEO:        req.SEO,
		Trending:   req.Trending,
		TagIDs:     req.TagIDs,
	})
	if err != nil {
		serverError(w, "create post", err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

// PostUpdate modifies an existing post. The first transition to published
// stamps published_at; later updates never move it.
func (c *CMS) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := c.posts.FindByID(id)
	if err != nil {
		serverError(w, "find post", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := req.validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	msg, err := c.checkPostRefs(&req)
	if err != nil {
		serverError(w, "check post refs", err)
		return
	}
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	exists, err := c.posts.SlugExists(req.Slug, &id)
	if err != nil {
		serverError(w, "check post slug", err)
		return
	}
	if exists {
		writeError(w, http.StatusBadRequest, "a post with this slug already exists")
		return
	}

	post.Title = req.Title
	post.Slug = req.Slug
	post.Content = req.Content
	post.Excerpt = req.Excerpt
	post.CoverImage = req.CoverImage
	post.CategoryID = req.CategoryID
	post.Status = models.PostStatus(req.Status)
	post.SEO = req.SEO
	post.Trending = req.Trending
	post.TagIDs = req.TagIDs

	if err := c.posts.Update(post); err != nil {
		serverError(w, "update post", err)
		return
	}

	// Reload to pick up published_at as the database decided it.
	updated, err := c.posts.FindByID(id)
	if err != nil {
		serverError(w, "reload post", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// PostDelete removes a post.
func (c *CMS) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := c.posts.FindByID(id)
	if err != nil {
		serverError(w, "find post", err)
		return
	}
	if post == nil {
		writeError(w, http.StatusNotFound, "post not found")
		return
	}

	if err := c.posts.Delete(id); err != nil {
		serverError(w, "delete post", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
