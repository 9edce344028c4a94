package db

import (
	"github.com/fsdevblog/urlkeeper/internal/db/memory"
)

// MemoryStorage набор изолированных key/value хранилищ, по одному на сущность.
type MemoryStorage struct {
	Users    *memory.MStorage
	URLs     *memory.MStorage
	Sessions *memory.MStorage
}

func NewMemStorage() *MemoryStorage {
	return &MemoryStorage{
		Users:    memory.NewMemStorage(),
		URLs:     memory.NewMemStorage(),
		Sessions: memory.NewMemStorage(),
	}
}
