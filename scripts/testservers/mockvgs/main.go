package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/vgs-kv/loadbench/internal/mocktarget"
)

func main() {
	port := flag.Int("port", 5100, "Listening port")
	minLatency := flag.Duration("min-latency", 1*time.Millisecond, "Lower bound of simulated processing delay")
	maxLatency := flag.Duration("max-latency", 5*time.Millisecond, "Upper bound of simulated processing delay")
	failureRate := flag.Float64("failure-rate", 0, "Fraction of transactions rejected, 0..1")
	seed := flag.Int64("seed", 0, "Random seed (0 seeds from the clock)")
	flag.Parse()

	if *port <= 0 {
		log.Fatalf("port must be > 0")
	}
	if *failureRate < 0 || *failureRate > 1 {
		log.Fatalf("failure-rate must be between 0 and 1")
	}

	srv := mocktarget.New(mocktarget.Options{
		MinLatency:  *minLatency,
		MaxLatency:  *maxLatency,
		FailureRate: *failureRate,
		Seed:        *seed,
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("mock VGS server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, srv))
}
