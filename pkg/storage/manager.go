package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/churchcafe/config"
	"github.com/shashiranjanraj/churchcafe/pkg/logger"
)

// Manager holds the configured disks.
type Manager struct {
	mu          sync.RWMutex
	disks       map[string]Disk
	defaultDisk string
}

// NewManager returns a manager whose default disk is name.
func NewManager(name string) *Manager {
	return &Manager{disks: map[string]Disk{}, defaultDisk: name}
}

// Connect boots the local disk and, when S3_BUCKET is set, the s3 disk.
// An unusable default falls back to local.
func Connect(ctx context.Context) *Manager {
	m := NewManager(config.StorageDefault())
	m.Register("local", newLocalDiskFromConfig())

	if config.StorageS3Bucket() != "" {
		d, err := newS3Disk(ctx)
		if err != nil {
			logger.Warn("storage: s3 disk disabled", "error", err)
		} else {
			m.Register("s3", d)
		}
	}

	if _, err := m.Use(m.defaultDisk); err != nil {
		logger.Warn("storage: default disk unavailable, using local", "disk", m.defaultDisk)
		m.defaultDisk = "local"
	}
	return m
}

func (m *Manager) Register(name string, d Disk) {
	m.mu.Lock()
	m.disks[name] = d
	m.mu.Unlock()
}

func (m *Manager) Use(name string) (Disk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.disks[name]
	if !ok {
		return nil, fmt.Errorf("storage: disk %q is not configured", name)
	}
	return d, nil
}

// Default returns the disk named by STORAGE_DISK.
func (m *Manager) Default() Disk {
	d, err := m.Use(m.defaultDisk)
	if err != nil {
		panic(err)
	}
	return d
}
