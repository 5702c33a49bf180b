package connectivity_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/hazyhaar/stylewatch/connectivity"
	_ "modernc.org/sqlite"
)

func Example() {
	// Open an in-memory SQLite database for the routes table.
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := connectivity.Init(db); err != nil {
		log.Fatal(err)
	}

	// Create the router and register the local interaction driver.
	router := connectivity.New()
	defer router.Close()

	router.RegisterLocal("styledriver", func(ctx context.Context, payload []byte) ([]byte, error) {
		return []byte("simulated:" + string(payload)), nil
	})

	// Route it locally.
	db.Exec(`INSERT INTO routes (service_name, strategy) VALUES ('styledriver', 'local')`)

	if err := router.Reload(context.Background(), db); err != nil {
		log.Fatal(err)
	}

	resp, err := router.Call(context.Background(), "styledriver", []byte("hover"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(resp))

	// Switch to noop: disable simulation with zero downtime.
	db.Exec(`UPDATE routes SET strategy='noop' WHERE service_name='styledriver'`)
	router.Reload(context.Background(), db)

	resp, err = router.Call(context.Background(), "styledriver", []byte("hover"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(resp == nil)

	// Output:
	// simulated:hover
	// true
}

func Example_middleware() {
	router := connectivity.New()
	defer router.Close()

	echo := func(ctx context.Context, payload []byte) ([]byte, error) {
		return payload, nil
	}

	// Wrap with a middleware chain: recovery, then timeout.
	wrapped := connectivity.Chain(
		connectivity.Recovery(slog.Default()),
		connectivity.Timeout(5*time.Second),
	)(echo)

	resp, err := wrapped(context.Background(), []byte("hover"))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(resp))
	// Output:
	// hover
}
