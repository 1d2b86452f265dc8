package service

import (
	"fmt"

	"gorm.io/gorm"
)

// relation describes one owner↔related link table. The descriptors are bound
// once below; syncLinks works against any of them.
type relation struct {
	joinTable  string
	ownerKey   string
	relatedKey string
}

var (
	postCategories = relation{joinTable: "post_categories", ownerKey: "post_id", relatedKey: "category_id"}
	postTags       = relation{joinTable: "post_tags", ownerKey: "post_id", relatedKey: "tag_id"}
	postFiles      = relation{joinTable: "post_files", ownerKey: "post_id", relatedKey: "file_id"}
)

// syncLinks makes the link table rows for (owner, relation) exactly equal the
// target set: missing links are added, surplus links removed, retained links
// untouched so their pivot columns survive. An empty target set detaches
// everything. Applying the same target set twice is a no-op the second time.
func syncLinks(tx *gorm.DB, rel relation, ownerID uint, targetIDs []uint) error {
	targets := make(map[uint]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		if id != 0 {
			targets[id] = struct{}{}
		}
	}

	var current []uint
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", rel.relatedKey, rel.joinTable, rel.ownerKey)
	if err := tx.Raw(query, ownerID).Scan(&current).Error; err != nil {
		return err
	}

	existing := make(map[uint]struct{}, len(current))
	var toRemove []uint
	for _, id := range current {
		existing[id] = struct{}{}
		if _, keep := targets[id]; !keep {
			toRemove = append(toRemove, id)
		}
	}

	var toAdd []uint
	for id := range targets {
		if _, have := existing[id]; !have {
			toAdd = append(toAdd, id)
		}
	}

	if len(toRemove) > 0 {
		stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ? AND %s IN ?", rel.joinTable, rel.ownerKey, rel.relatedKey)
		if err := tx.Exec(stmt, ownerID, toRemove).Error; err != nil {
			return err
		}
	}

	for _, id := range toAdd {
		stmt := fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (?, ?)", rel.joinTable, rel.ownerKey, rel.relatedKey)
		if err := tx.Exec(stmt, ownerID, id).Error; err != nil {
			return err
		}
	}

	return nil
}
