package tokenbucket_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/smalhotra/gatekeep/pkg/ratelimit/tokenbucket"
)

// Example demonstrates basic usage of the token bucket limiter
func Example() {
	// Capacity 10, refilled at 5 tokens per second
	limiter, err := tokenbucket.NewSafe(10, 5)
	if err != nil {
		log.Fatal(err)
	}

	// Check if a request is allowed (non-blocking)
	if limiter.Allow() {
		fmt.Println("Request allowed")
	} else {
		fmt.Println("Request denied")
	}

	// Output: Request allowed
}

// Example_burst demonstrates that a fresh bucket admits a full burst
func Example_burst() {
	limiter, err := tokenbucket.NewSafe(3, 1)
	if err != nil {
		log.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		if limiter.Allow() {
			fmt.Printf("request %d allowed\n", i)
		} else {
			fmt.Printf("request %d denied\n", i)
		}
	}

	// Output:
	// request 1 allowed
	// request 2 allowed
	// request 3 allowed
	// request 4 denied
	// request 5 denied
}

// Example_wait demonstrates blocking until a token is available
func Example_wait() {
	limiter, err := tokenbucket.NewSafe(1, 1)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// First request succeeds immediately on the full bucket
	if err := limiter.Wait(ctx); err != nil {
		log.Fatal(err)
	}
	fmt.Println("First request processed")

	// Second request would need a full second, so the timeout wins
	ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx); err != nil {
		fmt.Printf("Second request failed: %v\n", err)
	}

	// Output:
	// First request processed
	// Second request failed: context deadline exceeded
}
