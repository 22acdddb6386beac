package store

// LayeredStore reads through a memory layer to a disk layer and writes both
type LayeredStore struct {
	memory Store
	disk   Store
}

// NewLayeredStore creates a memory-over-disk store rooted at dir
func NewLayeredStore(dir string) *LayeredStore {
	return &LayeredStore{
		memory: NewMemoryStore(),
		disk:   NewDiskStore(dir),
	}
}

// Get checks memory first, then disk, promoting disk hits
func (s *LayeredStore) Get(key string) ([]byte, bool) {
	if val, found := s.memory.Get(key); found {
		return val, true
	}

	if val, found := s.disk.Get(key); found {
		_ = s.memory.Set(key, val)
		return val, true
	}

	return nil, false
}

// Set writes disk first so memory never holds an unpersisted value
func (s *LayeredStore) Set(key string, value []byte) error {
	if err := s.disk.Set(key, value); err != nil {
		return err
	}
	return s.memory.Set(key, value)
}

func (s *LayeredStore) Delete(key string) error {
	_ = s.memory.Delete(key)
	return s.disk.Delete(key)
}

func (s *LayeredStore) Clear() error {
	_ = s.memory.Clear()
	return s.disk.Clear()
}
