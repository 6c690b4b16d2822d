package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/showlog/showlogbackend/database"
	"github.com/showlog/showlogbackend/models"
	"gorm.io/gorm"
)

// AliasGraph is a point-in-time view of the alias relation, held as two explicit sets
// instead of band pointers so it cannot be walked into a chain.
type AliasGraph struct {
	Primaries map[uint]struct{} // bands with at least one alias
	Aliases   map[uint]uint     // alias id -> primary id
}

// PrimaryOf returns the primary an alias folds into. ok is false for non-aliases.
func (g AliasGraph) PrimaryOf(bandID uint) (primaryID uint, ok bool) {
	primaryID, ok = g.Aliases[bandID]
	return primaryID, ok
}

// IsPrimary reports whether at least one band is aliased to bandID.
func (g AliasGraph) IsPrimary(bandID uint) bool {
	_, ok := g.Primaries[bandID]
	return ok
}

// Canonical returns the id bandID's statistics roll up into.
func (g AliasGraph) Canonical(bandID uint) uint {
	if p, ok := g.PrimaryOf(bandID); ok {
		return p
	}
	return bandID
}

// AliasesOf lists the aliases of primaryID in ascending id order.
func (g AliasGraph) AliasesOf(primaryID uint) []uint {
	var ids []uint
	for alias, primary := range g.Aliases {
		if primary == primaryID {
			ids = append(ids, alias)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GroupMember is a band inside a group listing with its own appearance count.
type GroupMember struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	ShowCount int    `json:"show_count"`
}

// BandGroup is a primary band with its aliases. EffectiveShowCount includes the
// primary's own appearances and every alias's.
type BandGroup struct {
	Primary            GroupMember   `json:"primary"`
	Aliases            []GroupMember `json:"aliases"`
	EffectiveShowCount int           `json:"effective_show_count"`
}

// AliasGroupRepository keeps the alias relation one level deep. Every mutation is a
// single transaction that validates before it writes.
type AliasGroupRepository struct {
	DB *gorm.DB
}

// NewAliasGroupRepository creates a new instance of AliasGroupRepository
func NewAliasGroupRepository(db *gorm.DB) *AliasGroupRepository {
	return &AliasGroupRepository{DB: db}
}

func loadBand(tx *gorm.DB, id uint) (*models.Band, error) {
	var band models.Band
	err := tx.First(&band, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "band", ID: id}
		}
		return nil, fmt.Errorf("failed to load band %d: %w", id, err)
	}
	return &band, nil
}

func hasAliases(tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := tx.Model(&models.Band{}).Where("primary_band_id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count aliases of band %d: %w", id, err)
	}
	return count > 0, nil
}

// checkPrimary verifies primaryID exists and is not itself an alias.
func checkPrimary(tx *gorm.DB, primaryID uint) error {
	primary, err := loadBand(tx, primaryID)
	if err != nil {
		return err
	}
	if primary.IsAlias() {
		return invalidGroup("band %d (%s) is an alias of band %d and cannot be a primary", primary.ID, primary.Name, *primary.PrimaryBandID)
	}
	return nil
}

// checkAlias verifies aliasID exists, differs from primaryID and has no aliases of its own.
func checkAlias(tx *gorm.DB, primaryID, aliasID uint) error {
	if aliasID == primaryID {
		return invalidGroup("band %d cannot be an alias of itself", aliasID)
	}
	alias, err := loadBand(tx, aliasID)
	if err != nil {
		return err
	}
	primaryOfOthers, err := hasAliases(tx, aliasID)
	if err != nil {
		return err
	}
	if primaryOfOthers {
		return invalidGroup("band %d (%s) is the primary of another group; disband it first", alias.ID, alias.Name)
	}
	if alias.IsAlias() && *alias.PrimaryBandID != primaryID {
		log.Printf("Moving band %d (%s) from group %d to group %d", alias.ID, alias.Name, *alias.PrimaryBandID, primaryID)
	}
	return nil
}

// setPrimary writes primary_band_id on the matching rows. primary is a band id or
// gorm.Expr("NULL").
func setPrimary(tx *gorm.DB, primary interface{}, where string, args ...interface{}) (int64, error) {
	result := tx.Model(&models.Band{}).Where(where, args...).Updates(map[string]interface{}{
		"primary_band_id": primary,
		"updated_at":      time.Now().Unix(),
	})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CreateGroup points every band in aliasIDs at primaryID. The primary must be
// standalone and no alias may be the primary itself or the primary of another group.
func (r *AliasGroupRepository) CreateGroup(primaryID uint, aliasIDs []uint) (err error) {
	defer func() { recordMutation("create_group", err) }()

	aliasIDs = uniqueIDs(aliasIDs)
	if len(aliasIDs) == 0 {
		return invalidGroup("a group needs at least one alias")
	}

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := checkPrimary(tx, primaryID); err != nil {
			return err
		}
		for _, aliasID := range aliasIDs {
			if err := checkAlias(tx, primaryID, aliasID); err != nil {
				return err
			}
		}
		n, err := setPrimary(tx, primaryID, "id IN ?", aliasIDs)
		if err != nil {
			return fmt.Errorf("failed to create group for band %d: %w", primaryID, err)
		}
		log.Printf("Created band group %d with %d aliases", primaryID, n)
		return nil
	})
}

// AddAlias adds a single band to primaryID's group, with the same rules as CreateGroup.
func (r *AliasGroupRepository) AddAlias(primaryID, aliasID uint) (err error) {
	defer func() { recordMutation("add_alias", err) }()

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := checkPrimary(tx, primaryID); err != nil {
			return err
		}
		if err := checkAlias(tx, primaryID, aliasID); err != nil {
			return err
		}
		if _, err := setPrimary(tx, primaryID, "id = ?", aliasID); err != nil {
			return fmt.Errorf("failed to add alias %d to band %d: %w", aliasID, primaryID, err)
		}
		return nil
	})
}

// RemoveAlias makes aliasID standalone again. It is a no-op for a band that is not an alias.
func (r *AliasGroupRepository) RemoveAlias(aliasID uint) (err error) {
	defer func() { recordMutation("remove_alias", err) }()

	return r.DB.Transaction(func(tx *gorm.DB) error {
		alias, err := loadBand(tx, aliasID)
		if err != nil {
			return err
		}
		if !alias.IsAlias() {
			return nil
		}
		if _, err := setPrimary(tx, gorm.Expr("NULL"), "id = ?", aliasID); err != nil {
			return fmt.Errorf("failed to remove alias %d: %w", aliasID, err)
		}
		return nil
	})
}

// DisbandGroup makes every alias of primaryID standalone. The primary row is not touched.
func (r *AliasGroupRepository) DisbandGroup(primaryID uint) (err error) {
	defer func() { recordMutation("disband_group", err) }()

	return r.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := loadBand(tx, primaryID); err != nil {
			return err
		}
		n, err := setPrimary(tx, gorm.Expr("NULL"), "primary_band_id = ?", primaryID)
		if err != nil {
			return fmt.Errorf("failed to disband group %d: %w", primaryID, err)
		}
		log.Printf("Disbanded band group %d (%d aliases released)", primaryID, n)
		return nil
	})
}

// ListStandalone returns every band that is not an alias, ordered by name. These are the
// only bands that may take either role in a new group.
func (r *AliasGroupRepository) ListStandalone() ([]models.Band, error) {
	var bands []models.Band
	err := r.DB.Where("primary_band_id IS NULL").Order("name ASC").Find(&bands).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list standalone bands: %w", err)
	}
	return bands, nil
}

// Snapshot reads the current alias relation.
func (r *AliasGroupRepository) Snapshot() (AliasGraph, error) {
	return snapshot(r.DB)
}

func snapshot(tx *gorm.DB) (AliasGraph, error) {
	var aliases []models.Band
	err := tx.Select("id", "primary_band_id").Where("primary_band_id IS NOT NULL").Find(&aliases).Error
	if err != nil {
		return AliasGraph{}, fmt.Errorf("failed to load alias graph: %w", err)
	}
	g := AliasGraph{
		Primaries: make(map[uint]struct{}),
		Aliases:   make(map[uint]uint, len(aliases)),
	}
	for _, a := range aliases {
		g.Aliases[a.ID] = *a.PrimaryBandID
		g.Primaries[*a.PrimaryBandID] = struct{}{}
	}
	return g, nil
}

// directShowCounts returns the appearance count of each band in ids. Bands with no
// appearances are absent from the map.
func directShowCounts(tx *gorm.DB, ids []uint) (map[uint]int, error) {
	var rows []struct {
		BandID uint
		Shows  int
	}
	err := tx.Model(&models.ShowBand{}).
		Select("band_id, COUNT(DISTINCT id) AS shows").
		Where("band_id IN ?", ids).
		Group("band_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count band appearances: %w", err)
	}
	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.BandID] = row.Shows
	}
	return counts, nil
}

// ListGroups returns every primary that has at least one alias, with each member's
// own appearance count. Groups are ordered by primary name and aliases by name. All
// reads share one transaction so the listing is a consistent view.
func (r *AliasGroupRepository) ListGroups() ([]BandGroup, error) {
	out := []BandGroup{}
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		graph, err := snapshot(tx)
		if err != nil {
			return err
		}
		if len(graph.Aliases) == 0 {
			return nil
		}

		ids := make([]uint, 0, len(graph.Aliases)+len(graph.Primaries))
		for id := range graph.Primaries {
			ids = append(ids, id)
		}
		for id := range graph.Aliases {
			ids = append(ids, id)
		}

		var bands []models.Band
		if err := tx.Where("id IN ?", ids).Order("name ASC").Find(&bands).Error; err != nil {
			return fmt.Errorf("failed to load grouped bands: %w", err)
		}
		counts, err := directShowCounts(tx, ids)
		if err != nil {
			return err
		}

		groups := make(map[uint]*BandGroup)
		var order []uint
		for _, b := range bands {
			if graph.IsPrimary(b.ID) {
				groups[b.ID] = &BandGroup{Primary: GroupMember{ID: b.ID, Name: b.Name, ShowCount: counts[b.ID]}, Aliases: []GroupMember{}}
				order = append(order, b.ID)
			}
		}
		for _, b := range bands {
			if primaryID, ok := graph.PrimaryOf(b.ID); ok {
				g := groups[primaryID]
				g.Aliases = append(g.Aliases, GroupMember{ID: b.ID, Name: b.Name, ShowCount: counts[b.ID]})
			}
		}

		for _, id := range order {
			g := groups[id]
			g.EffectiveShowCount = g.Primary.ShowCount
			for _, a := range g.Aliases {
				g.EffectiveShowCount += a.ShowCount
			}
			out = append(out, *g)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// EffectiveShowCount returns the rolled-up appearance count for bandID. For an alias
// this is its primary's count.
func (r *AliasGroupRepository) EffectiveShowCount(bandID uint) (int, error) {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return 0, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	count, err := database.EffectiveShowCount(sqlDB, int64(bandID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &NotFoundError{Entity: "band", ID: bandID}
		}
		return 0, err
	}
	return count, nil
}
