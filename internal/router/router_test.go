// router_test.go exercises the full route tree over HTTP: auth flow,
// admin gating, content lifecycle and CSV imports. Tests are skipped
// when PostgreSQL or Redis are unavailable.
package router

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"finwire/internal/cache"
	"finwire/internal/database"
	"finwire/internal/handlers"
	"finwire/internal/importer"
	"finwire/internal/markets"
	"finwire/internal/models"
	"finwire/internal/newsfetch"
	"finwire/internal/session"
	"finwire/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := "postgres://" + envOr("POSTGRES_USER", "finwire") + ":" +
		envOr("POSTGRES_PASSWORD", "changeme") + "@" +
		envOr("POSTGRES_HOST", "localhost") + ":" + envOr("POSTGRES_PORT", "5432") + "/" +
		envOr("POSTGRES_DB", "finwire") + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("REDIS_HOST", "localhost") + ":" + envOr("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       15,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Redis not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "marketlist:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})
	return client
}

// testEnv is a fully wired application over test databases.
type testEnv struct {
	db       *sql.DB
	handler  http.Handler
	sessions *session.Store
	users    *store.UserStore
	bars     *store.BarStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	rc := testRedis(t)

	sessions := session.NewStore(rc, false)

	users := store.NewUserStore(db)
	categories := store.NewCategoryStore(db)
	tags := store.NewTagStore(db)
	posts := store.NewPostStore(db)
	news := store.NewNewsStore(db)
	navItems := store.NewNavItemStore(db)
	marketLists := store.NewMarketListStore(db)
	instruments := store.NewInstrumentStore(db)
	indices := store.NewIndexStore(db)
	bars := store.NewBarStore(db)

	resolver := markets.NewResolver(marketLists, bars, cache.NewItemCache(rc))
	newsClient := newsfetch.New("", "", news)

	handler := New(Deps{
		Sessions: sessions,
		Auth:     handlers.NewAuth(sessions, users),
		Admin: handlers.NewAdmin(users, posts, news, bars, newsClient,
			importer.NewMarketListImporter(marketLists), importer.NewBarImporter(bars)),
		CMS: handlers.NewCMS(categories, tags, posts, news, navItems,
			marketLists, instruments, indices, resolver),
	})

	return &testEnv{db: db, handler: handler, sessions: sessions, users: users, bars: bars}
}

// adminCookie creates an admin account plus a fully authenticated session
// and returns the session cookie.
func (e *testEnv) adminCookie(t *testing.T, email string) *http.Cookie {
	t.Helper()

	e.db.Exec("DELETE FROM users WHERE email = $1", email)
	t.Cleanup(func() { e.db.Exec("DELETE FROM users WHERE email = $1", email) })

	user, err := e.users.Create("Router Test Admin", email, "router-test-pw", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create admin: %v", err)
	}

	rec := httptest.NewRecorder()
	if _, err := e.sessions.Create(context.Background(), rec, &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		TwoFADone: true,
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

// do runs one request through the route tree.
func (e *testEnv) do(method, path string, body io.Reader, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestAdminRoutesRejectNonAdmins(t *testing.T) {
	env := newTestEnv(t)

	// No session at all.
	rec := env.do(http.MethodGet, "/api/admin/dashboard", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", rec.Code)
	}

	// Admin session with 2FA still pending.
	email := "router-test-pending@finwire.test"
	env.db.Exec("DELETE FROM users WHERE email = $1", email)
	t.Cleanup(func() { env.db.Exec("DELETE FROM users WHERE email = $1", email) })
	user, err := env.users.Create("Pending", email, "pw", models.RoleAdmin)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	sessRec := httptest.NewRecorder()
	if _, err := env.sessions.Create(context.Background(), sessRec, &session.Data{
		UserID: user.ID, Email: email, Role: "admin", TwoFADone: false,
	}); err != nil {
		t.Fatalf("create session: %v", err)
	}
	var cookie *http.Cookie
	for _, c := range sessRec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}

	rec = env.do(http.MethodGet, "/api/admin/dashboard", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("2fa-pending status = %d", rec.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	email := "router-test-login@finwire.test"
	env.db.Exec("DELETE FROM users WHERE email = $1", email)
	t.Cleanup(func() { env.db.Exec("DELETE FROM users WHERE email = $1", email) })
	if _, err := env.users.Create("Login Test", email, "correct-horse", models.RoleUser); err != nil {
		t.Fatalf("create user: %v", err)
	}

	rec := env.do(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"`+email+`","password":"wrong"}`), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d", rec.Code)
	}

	rec = env.do(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"email":"`+email+`","password":"correct-horse"}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["two_fa_required"] != false {
		t.Errorf("two_fa_required = %v", body["two_fa_required"])
	}

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("login did not set a session cookie")
	}

	me := env.do(http.MethodGet, "/api/auth/me", nil, cookie)
	if me.Code != http.StatusOK {
		t.Fatalf("me status = %d", me.Code)
	}
	if decodeBody(t, me)["email"] != email {
		t.Errorf("me body = %s", me.Body.String())
	}

	out := env.do(http.MethodPost, "/api/auth/logout", nil, cookie)
	if out.Code != http.StatusOK {
		t.Fatalf("logout status = %d", out.Code)
	}
	me = env.do(http.MethodGet, "/api/auth/me", nil, cookie)
	if me.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d", me.Code)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.adminCookie(t, "router-test-cats@finwire.test")

	slugs := []string{"router-test-parent", "router-test-child"}
	clean := func() {
		for _, s := range slugs {
			env.db.Exec("DELETE FROM categories WHERE slug = $1", s)
		}
	}
	clean()
	t.Cleanup(clean)

	rec := env.do(http.MethodPost, "/api/cms/categories",
		strings.NewReader(`{"name":"Router Test Parent"}`), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create parent status = %d: %s", rec.Code, rec.Body.String())
	}
	parent := decodeBody(t, rec)
	parentID, _ := parent["id"].(string)
	if parent["slug"] != "router-test-parent" {
		t.Errorf("derived slug = %v", parent["slug"])
	}

	rec = env.do(http.MethodPost, "/api/cms/categories",
		strings.NewReader(`{"name":"Router Test Child","parent_id":"`+parentID+`"}`), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child status = %d: %s", rec.Code, rec.Body.String())
	}
	childID, _ := decodeBody(t, rec)["id"].(string)

	// Mutations without a session are rejected.
	rec = env.do(http.MethodDelete, "/api/cms/categories/"+parentID, nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous delete status = %d", rec.Code)
	}

	// A parent with children cannot be deleted.
	rec = env.do(http.MethodDelete, "/api/cms/categories/"+parentID, nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("delete parent status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodDelete, "/api/cms/categories/"+childID, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete child status = %d: %s", rec.Code, rec.Body.String())
	}
	rec = env.do(http.MethodDelete, "/api/cms/categories/"+parentID, nil, cookie)
	if rec.Code != http.StatusOK {
		t.Errorf("delete parent after child status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPostDraftVisibility(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.adminCookie(t, "router-test-posts@finwire.test")

	postSlug := "router-test-draft-post"
	env.db.Exec("DELETE FROM posts WHERE slug = $1", postSlug)
	t.Cleanup(func() { env.db.Exec("DELETE FROM posts WHERE slug = $1", postSlug) })

	rec := env.do(http.MethodPost, "/api/cms/posts",
		strings.NewReader(`{"title":"Router Test Draft Post","content":"body"}`), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody(t, rec)
	id, _ := created["id"].(string)
	if created["status"] != "draft" {
		t.Errorf("default status = %v", created["status"])
	}

	// Drafts are invisible without an admin session.
	if rec := env.do(http.MethodGet, "/api/cms/posts/"+postSlug, nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("public draft read status = %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/cms/posts/"+postSlug, nil, cookie); rec.Code != http.StatusOK {
		t.Errorf("admin draft read status = %d", rec.Code)
	}

	rec = env.do(http.MethodPut, "/api/cms/posts/"+id,
		strings.NewReader(`{"title":"Router Test Draft Post","content":"body","status":"published"}`), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("publish status = %d: %s", rec.Code, rec.Body.String())
	}
	if decodeBody(t, rec)["published_at"] == nil {
		t.Error("published_at not stamped on publish")
	}

	// Public reads now succeed and bump the view counter.
	rec = env.do(http.MethodGet, "/api/cms/posts/"+postSlug, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("public read status = %d", rec.Code)
	}
	if views, _ := decodeBody(t, rec)["views"].(float64); views != 1 {
		t.Errorf("views = %v, want 1", views)
	}
}

func TestMarketListItemsUnknownSlug(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/cms/market-lists/router-test-missing/items", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMarketListItemsPrivateVisibility(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.adminCookie(t, "router-test-private@finwire.test")

	listSlug := "router-test-private-list"
	env.db.Exec("DELETE FROM market_lists WHERE slug = $1", listSlug)
	t.Cleanup(func() { env.db.Exec("DELETE FROM market_lists WHERE slug = $1", listSlug) })

	rec := env.do(http.MethodPost, "/api/cms/market-lists",
		strings.NewReader(`{"title":"Router Test Private List","slug":"`+listSlug+
			`","visibility":"private","refresh_seconds":300,"static_items":["RTRTEST-PRIV.X"]}`), cookie)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	// Anonymous callers must not see the list, its metadata or its items.
	if rec := env.do(http.MethodGet, "/api/cms/market-lists/"+listSlug, nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("public get status = %d", rec.Code)
	}
	if rec := env.do(http.MethodGet, "/api/cms/market-lists/"+listSlug+"/items", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("public items status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = env.do(http.MethodGet, "/api/cms/market-lists/"+listSlug+"/items", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin items status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "RTRTEST-PRIV.X") {
		t.Errorf("admin items body = %s", rec.Body.String())
	}

	// The admin read populated the cache; the cached payload must not leak
	// to anonymous callers either.
	if rec := env.do(http.MethodGet, "/api/cms/market-lists/"+listSlug+"/items", nil, nil); rec.Code != http.StatusNotFound {
		t.Errorf("public items after admin read status = %d", rec.Code)
	}
}

// multipartCSV builds a multipart body with the CSV in a "file" field.
func multipartCSV(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(csv)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestImportBarsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	cookie := env.adminCookie(t, "router-test-import@finwire.test")

	symbol := "RTRTEST-IMP.X"
	env.db.Exec("DELETE FROM bars WHERE symbol = $1", symbol)
	t.Cleanup(func() { env.db.Exec("DELETE FROM bars WHERE symbol = $1", symbol) })

	ts := time.Now().UTC().Truncate(time.Minute).Format(time.RFC3339)
	csv := "symbol,ts,open,high,low,close,volume\n" +
		symbol + "," + ts + ",10,11,9,10.5,1000\n"

	body, contentType := multipartCSV(t, csv)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/import/bars", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body.String())
	}
	if inserted, _ := decodeBody(t, rec)["inserted"].(float64); inserted != 1 {
		t.Errorf("inserted = %v, want 1", inserted)
	}

	// A CSV with the wrong header is a structural 400.
	body, contentType = multipartCSV(t, "nope,columns\nx,y\n")
	req = httptest.NewRequest(http.MethodPost, "/api/admin/import/bars", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad header status = %d: %s", rec.Code, rec.Body.String())
	}

	// A plain JSON body instead of multipart is also a 400.
	rec = env.do(http.MethodPost, "/api/admin/import/bars",
		strings.NewReader(`{}`), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-multipart status = %d", rec.Code)
	}
}
