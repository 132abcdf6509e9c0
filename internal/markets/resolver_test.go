// resolver_test.go covers market-list resolution and caching. Tests are
// skipped when PostgreSQL or Redis are unavailable.
package markets

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"finwire/internal/cache"
	"finwire/internal/database"
	"finwire/internal/models"
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
		keys, _ := client.Keys(ctx, "marketlist:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

type resolverEnv struct {
	db       *sql.DB
	lists    *store.MarketListStore
	bars     *store.BarStore
	resolver *Resolver
}

func newResolverEnv(t *testing.T) *resolverEnv {
	t.Helper()
	db := testDB(t)
	rc := testRedis(t)

	lists := store.NewMarketListStore(db)
	bars := store.NewBarStore(db)
	return &resolverEnv{
		db:       db,
		lists:    lists,
		bars:     bars,
		resolver: NewResolver(lists, bars, cache.NewItemCache(rc)),
	}
}

func (e *resolverEnv) cleanList(t *testing.T, slug string) {
	t.Helper()
	e.db.Exec("DELETE FROM market_lists WHERE slug = $1", slug)
}

func TestResolveUnknownSlug(t *testing.T) {
	env := newResolverEnv(t)

	_, err := env.resolver.Resolve(context.Background(), "no-such-list")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveStaticList(t *testing.T) {
	env := newResolverEnv(t)
	slug := "resolver-test-static"
	env.cleanList(t, slug)
	t.Cleanup(func() { env.cleanList(t, slug) })

	if _, err := env.lists.Create(&models.MarketList{
		Slug: slug, Title: "Resolver Static",
		StaticItems:    []string{"AAPL.NASDAQ", "MSFT.NASDAQ"},
		ComputedType:   models.ComputedStatic,
		RefreshSeconds: 60,
		Visibility:     models.VisibilityPublic,
	}); err != nil {
		t.Fatalf("create list: %v", err)
	}

	payload, err := env.resolver.Resolve(context.Background(), slug)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var resolved ResolvedList
	if err := json.Unmarshal(payload, &resolved); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resolved.Slug != slug || len(resolved.Items) != 2 {
		t.Errorf("resolved = %+v", resolved)
	}
	if resolved.Items[0] != "AAPL.NASDAQ" {
		t.Errorf("items = %v", resolved.Items)
	}
}

func TestResolveServesStaleCacheAfterUpdate(t *testing.T) {
	env := newResolverEnv(t)
	slug := "resolver-test-stale"
	env.cleanList(t, slug)
	t.Cleanup(func() { env.cleanList(t, slug) })

	list, err := env.lists.Create(&models.MarketList{
		Slug: slug, Title: "Before",
		StaticItems:    []string{"AAPL.NASDAQ"},
		ComputedType:   models.ComputedStatic,
		RefreshSeconds: 300,
		Visibility:     models.VisibilityPublic,
	})
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	first, err := env.resolver.Resolve(context.Background(), slug)
	if err != nil {
		t.Fatalf("first Resolve: %v", err)
	}

	// Edit the list. The cache is not invalidated, so the next resolve
	// still serves the old payload.
	list.StaticItems = []string{"TSLA.NASDAQ"}
	if err := env.lists.Update(list); err != nil {
		t.Fatalf("update list: %v", err)
	}

	second, err := env.resolver.Resolve(context.Background(), slug)
	if err != nil {
		t.Fatalf("second Resolve: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected the stale cached payload after an update")
	}
}

func TestResolveEmptyStaticItemsIsArray(t *testing.T) {
	env := newResolverEnv(t)
	slug := "resolver-test-empty"
	env.cleanList(t, slug)
	t.Cleanup(func() { env.cleanList(t, slug) })

	if _, err := env.lists.Create(&models.MarketList{
		Slug: slug, Title: "Empty",
		ComputedType:   models.ComputedStatic,
		RefreshSeconds: 60,
		Visibility:     models.VisibilityPublic,
	}); err != nil {
		t.Fatalf("create list: %v", err)
	}

	payload, err := env.resolver.Resolve(context.Background(), slug)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["items"]) != "[]" {
		t.Errorf("items = %s, want []", raw["items"])
	}
}

func TestResolveTopMovers(t *testing.T) {
	env := newResolverEnv(t)
	env.cleanList(t, topMoversSlug)
	t.Cleanup(func() {
		env.cleanList(t, topMoversSlug)
		env.db.Exec("DELETE FROM bars WHERE symbol LIKE 'RESTEST-%'")
	})

	if _, err := env.lists.Create(&models.MarketList{
		Slug: topMoversSlug, Title: "Top Movers",
		StaticItems:    []string{"PINNED.X"},
		ComputedType:   models.ComputedDynamic,
		RefreshSeconds: 0, // recompute every request so the test sees fresh data
		Visibility:     models.VisibilityPublic,
	}); err != nil {
		t.Fatalf("create list: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Minute)
	bars := []models.Bar{
		{Symbol: "RESTEST-A.X", Ts: now.Add(-2 * time.Hour), Open: 100, High: 100, Low: 100, Close: 100, Volume: 1},
		{Symbol: "RESTEST-A.X", Ts: now, Open: 120, High: 120, Low: 120, Close: 120, Volume: 1},
		{Symbol: "RESTEST-B.X", Ts: now.Add(-2 * time.Hour), Open: 100, High: 100, Low: 100, Close: 100, Volume: 1},
		{Symbol: "RESTEST-B.X", Ts: now, Open: 90, High: 90, Low: 90, Close: 90, Volume: 1},
	}
	if _, err := env.bars.InsertBatch(bars); err != nil {
		t.Fatalf("insert bars: %v", err)
	}

	payload, err := env.resolver.Resolve(context.Background(), topMoversSlug)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var resolved ResolvedList
	if err := json.Unmarshal(payload, &resolved); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	// Pinned static items come first, then the computed ranking.
	if len(resolved.Items) < 2 || resolved.Items[0] != "PINNED.X" {
		t.Fatalf("items = %v", resolved.Items)
	}

	posA, posB := -1, -1
	for i, item := range resolved.Items {
		switch item {
		case "RESTEST-A.X":
			posA = i
		case "RESTEST-B.X":
			posB = i
		}
	}
	if posA == -1 {
		t.Fatal("gainer missing from ranking")
	}
	if posB != -1 && posA > posB {
		t.Errorf("gainer ranked below loser: %v", resolved.Items)
	}
}
