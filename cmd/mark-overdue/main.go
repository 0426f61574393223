// Command mark-overdue persists the overdue status on pending invoices
// whose due date has passed. The API already reports them as overdue
// dynamically; this keeps the stored status in sync for reporting.
//
// Usage:
//
//	mark-overdue
//
// Requires DATABASE_DSN environment variable to be set.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		log.Fatal("DATABASE_DSN environment variable is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}
	defer pool.Close()

	tag, err := pool.Exec(ctx,
		"UPDATE invoices SET status = 'overdue', updated_at = now() WHERE status = 'pending' AND due_date < now()",
	)
	if err != nil {
		log.Fatalf("mark overdue: %v", err)
	}

	fmt.Printf("Marked %d invoices as overdue.\n", tag.RowsAffected())
}
