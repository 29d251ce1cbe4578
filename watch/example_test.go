package watch_test

import (
	"fmt"

	"github.com/looplj/syncx/cell"
	"github.com/looplj/syncx/watch"
)

func ExampleWaitUntil() {
	ref := watch.NewRef(0)

	go func() {
		for i := 1; i <= 5; i++ {
			ref.Update(func(int) int { return i })
		}
	}()

	v := watch.WaitUntil(ref, func(v int) bool { return v >= 5 })
	fmt.Println(v)
	// Output: 5
}

func ExampleRef_AddWatcher() {
	ref := watch.NewRef(0)

	// A cell passes a single value out of a callback invoked by exactly
	// one goroutine.
	seen := cell.New(0, cell.Options[int]{})

	ref.AddWatcher("capture", func(key string, r *watch.Ref[int], _, updated int) {
		_ = seen.Write(updated)
		r.RemoveWatcher(key)
	})

	ref.Update(func(int) int { return 9 })

	fmt.Println(seen.Read())
	// Output: 9
}
