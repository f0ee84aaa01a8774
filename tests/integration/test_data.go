package integration

import (
	"fmt"
	"time"
)

// TestUsername generates a unique test username using a timestamp
func TestUsername(suffix string) string {
	return fmt.Sprintf("test-%d-%s", time.Now().UnixNano(), suffix)
}

// TestPassword is a fixed credential used by seeded accounts
const TestPassword = "TestPassword123!"
