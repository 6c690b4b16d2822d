package repository

import (
	"github.com/showlog/showlogbackend/ingest"
	"github.com/showlog/showlogbackend/models"
)

// AliasGroupStore defines the grouping operations on the band alias relation
type AliasGroupStore interface {
	CreateGroup(primaryID uint, aliasIDs []uint) error
	AddAlias(primaryID, aliasID uint) error
	RemoveAlias(aliasID uint) error
	DisbandGroup(primaryID uint) error
	ListStandalone() ([]models.Band, error)
	ListGroups() ([]BandGroup, error)
	Snapshot() (AliasGraph, error)
	EffectiveShowCount(bandID uint) (int, error)
}

// BandRepositoryInterface defines the methods for band data operations
type BandRepositoryInterface interface {
	GetByID(id uint) (*models.Band, error)
	GetByName(name string) (*models.Band, error)
	GetOrCreate(name string) (*models.Band, error)
	ListAll() ([]models.Band, error)
	Rename(id uint, newName string) error
	CleanupOrphans() (int64, error)
}

// ShowRepositoryInterface defines the methods for show data operations
type ShowRepositoryInterface interface {
	Create(rec ingest.ShowRecord) (*models.Show, error)
	Update(id uint, rec ingest.ShowRecord) (*models.Show, error)
	GetByID(id uint) (*models.Show, error)
	Delete(id uint) error
	Import(records []ingest.ShowRecord) (ImportResult, error)
}

var (
	_ AliasGroupStore         = (*AliasGroupRepository)(nil)
	_ BandRepositoryInterface = (*BandRepository)(nil)
	_ ShowRepositoryInterface = (*ShowRepository)(nil)
)
