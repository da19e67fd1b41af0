package driven

// IndexLock guards an index pass against concurrent writers in other processes.
type IndexLock interface {
	// TryLock acquires the lock without blocking.
	// Returns false if another holder has it.
	TryLock() (bool, error)

	// Unlock releases the lock.
	Unlock() error
}
