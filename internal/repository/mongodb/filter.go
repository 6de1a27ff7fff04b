package mongodb

import (
	"regexp"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"dossier/internal/domain/models"
	docsysRepo "dossier/internal/domain/repositories/docsystem"
)

func appendAccount(d bson.D, accountID string) bson.D {
	if accountID == "" {
		return d
	}
	return append(d, bson.E{Key: "account_id", Value: accountID})
}

// appendLocation renders a parent constraint; null matches a missing field too
func appendLocation(d bson.D, field string, loc docsysRepo.Location) bson.D {
	switch loc.Kind {
	case docsysRepo.AtRoot:
		return append(d, bson.E{Key: field, Value: nil})
	case docsysRepo.InFolder:
		return append(d, bson.E{Key: field, Value: loc.ID})
	case docsysRepo.Filed:
		return append(d, bson.E{Key: field, Value: bson.D{{Key: "$ne", Value: nil}}})
	}
	return d
}

// appendViewer matches the owner, or any record whose users array holds the
// viewer's email
func appendViewer(d bson.D, v *models.Identity) bson.D {
	if v == nil {
		return d
	}
	if v.Email == "" {
		return append(d, bson.E{Key: "owner_id", Value: v.OwnerID})
	}
	return append(d, bson.E{Key: "$or", Value: bson.A{
		bson.D{{Key: "owner_id", Value: v.OwnerID}},
		bson.D{{Key: "users", Value: v.Email}},
	}})
}

func folderFilter(f docsysRepo.FolderFilter) bson.D {
	d := bson.D{}
	d = appendAccount(d, f.AccountID)
	d = appendLocation(d, "parent_id", f.Parent)
	if f.Name != nil {
		d = append(d, bson.E{Key: "name", Value: *f.Name})
	}
	return appendViewer(d, f.Viewer)
}

func fileFilter(f docsysRepo.FileFilter) bson.D {
	d := bson.D{}
	d = appendAccount(d, f.AccountID)
	d = appendLocation(d, "folder_id", f.Folder)
	if len(f.Types) > 0 {
		d = append(d, bson.E{Key: "type", Value: bson.D{{Key: "$in", Value: f.Types}}})
	}
	if f.NameContains != "" {
		d = append(d, bson.E{Key: "name", Value: bson.D{
			{Key: "$regex", Value: regexp.QuoteMeta(f.NameContains)},
			{Key: "$options", Value: "i"},
		}})
	}
	return appendViewer(d, f.Viewer)
}

// sortSpec orders by the requested field with created_at and _id as
// tie-breakers
func sortSpec(s docsysRepo.Sort, hasSize bool) bson.D {
	dir := 1
	if s.Desc {
		dir = -1
	}

	field := "created_at"
	switch s.Field {
	case docsysRepo.SortName:
		field = "name"
	case docsysRepo.SortSize:
		if hasSize {
			field = "size"
		}
	}

	spec := bson.D{{Key: field, Value: dir}}
	if field != "created_at" {
		spec = append(spec, bson.E{Key: "created_at", Value: dir})
	}
	return append(spec, bson.E{Key: "_id", Value: dir})
}

func findOptions(s docsysRepo.Sort, limit int, hasSize bool) *options.FindOptionsBuilder {
	opts := options.Find().SetSort(sortSpec(s, hasSize))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
