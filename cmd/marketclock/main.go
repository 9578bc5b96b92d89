// marketclock reports US stock market holidays, trading sessions and
// open state.
//
// Usage:
//
//	go run ./cmd/marketclock status
//	go run ./cmd/marketclock next --from 2021-07-02 -n 5
package main

import (
	"github.com/joho/godotenv"

	"marketclock/internal/cli"
)

func main() {
	// A missing .env is fine; config and the environment still apply.
	_ = godotenv.Load()

	cli.Execute()
}
