package inventory

import "sync"

// ingredientLocks serializes consume calls per ingredient. Two
// concurrent calls against the same ingredient would otherwise read the
// same lot quantities and both decrement them, double-allocating stock;
// calls against different ingredients stay independent.
type ingredientLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func newIngredientLocks() *ingredientLocks {
	return &ingredientLocks{locks: make(map[uint]*sync.Mutex)}
}

// acquire locks the mutex for one ingredient and returns it for the
// caller to unlock. Lock values are never removed from the map; the
// catalog of a single bakery stays small.
func (l *ingredientLocks) acquire(ingredientID uint) *sync.Mutex {
	l.mu.Lock()
	mu, ok := l.locks[ingredientID]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[ingredientID] = mu
	}
	l.mu.Unlock()

	mu.Lock()
	return mu
}
