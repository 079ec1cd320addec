package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("WORKSHOP_TEST_MODE") == "" {
			_ = os.Setenv("WORKSHOP_TEST_MODE", "1")
		}
	})
}
