package leakybucket_test

import (
	"fmt"
	"log"

	"github.com/smalhotra/gatekeep/pkg/ratelimit/leakybucket"
)

// Example demonstrates basic usage of the leaky bucket limiter
func Example() {
	// Queue capacity 2, drained once per second
	limiter, err := leakybucket.NewSafe(2, 1)
	if err != nil {
		log.Fatal(err)
	}
	defer limiter.Stop()

	for i := 1; i <= 3; i++ {
		if limiter.Allow() {
			fmt.Printf("request %d admitted\n", i)
		} else {
			fmt.Printf("request %d denied\n", i)
		}
	}

	// Output:
	// request 1 admitted
	// request 2 admitted
	// request 3 denied
}

// Example_inspection demonstrates queue state inspection
func Example_inspection() {
	limiter, err := leakybucket.NewSafe(5, 1)
	if err != nil {
		log.Fatal(err)
	}
	defer limiter.Stop()

	limiter.AllowN(3)
	fmt.Printf("queued: %d of %d\n", limiter.Len(), limiter.Capacity())

	// Output: queued: 3 of 5
}
