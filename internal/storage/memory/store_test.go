package memory_test

import (
	"testing"

	"github.com/bcnelson/yatube/internal/storage"
	"github.com/bcnelson/yatube/internal/storage/memory"
	"github.com/bcnelson/yatube/internal/storage/storagetest"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return memory.New()
	})
}
